package enrich

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Pipeline runs a sequence of stages over every item it receives. Steps of
// one stage run in parallel; stages run in order. Step errors are logged and
// counted but never stop processing.
type Pipeline[T any] struct {
	stages []Stage[T]
	log    zerolog.Logger
}

func NewPipeline[T any](log zerolog.Logger, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, log: log}
}

// Process consumes items until in is closed or ctx is canceled and returns the
// number of failed steps.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) int64 {
	var failures atomic.Int64
	for {
		var item *T
		select {
		case <-ctx.Done():
			return failures.Load()
		case it, ok := <-in:
			if !ok {
				return failures.Load()
			}
			item = it
		}

		for _, stage := range p.stages {
			var wg sync.WaitGroup
			for _, step := range stage.steps {
				wg.Add(1)
				go func(step Step[T]) {
					defer wg.Done()
					if err := step(ctx, item); err != nil {
						failures.Add(1)
						p.log.Warn().Err(err).Str("stage", stage.name).Msg("Step failed")
					}
				}(step)
			}
			wg.Wait() // stage barrier
		}
	}
}

// ProcessAll feeds items through the pipeline and returns the failure count.
func (p *Pipeline[T]) ProcessAll(ctx context.Context, items []*T) int64 {
	in := make(chan *T)
	go func() {
		defer close(in)
		for _, item := range items {
			select {
			case in <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return p.Process(ctx, in)
}
