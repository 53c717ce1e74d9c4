// Package enrich runs dataset records through ordered stages of independent
// steps before they are published.
package enrich

import "context"

// Step mutates a single item. Steps of the same stage may run concurrently on
// the same item and must not write the same fields.
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that are safe to execute in parallel for one item.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a named Stage from the provided steps.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}
