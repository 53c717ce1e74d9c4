package page

import "fmt"

// State is the page lifecycle stage.
type State int

const (
	Loading State = iota
	Ready
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadFailed:
		return "load_failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event drives a State transition.
type Event int

const (
	LoadSucceeded Event = iota
	LoadErrored
	FilterChanged
)

func (e Event) String() string {
	switch e {
	case LoadSucceeded:
		return "load_succeeded"
	case LoadErrored:
		return "load_errored"
	case FilterChanged:
		return "filter_changed"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Next returns the state reached from s on e. LoadFailed is terminal.
func (s State) Next(e Event) (State, error) {
	switch {
	case s == Loading && e == LoadSucceeded:
		return Ready, nil
	case s == Loading && e == LoadErrored:
		return LoadFailed, nil
	case s == Ready && e == FilterChanged:
		return Ready, nil
	}
	return s, fmt.Errorf("invalid transition from %s on %s", s, e)
}
