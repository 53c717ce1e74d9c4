package dataset

import "fmt"

// TransportError reports a non-success status from the dataset source.
type TransportError struct {
	Source     string
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.Source, e.StatusCode)
}

// ParseError reports a dataset document that is not a JSON array of objects.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
