package orchestrator

import "time"

// Clock abstracts timer creation so tests can fire expirations
// deterministically.
type Clock interface {
	// After returns a channel that delivers once after d.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
