package mission

import "time"

// Clock abstracts wall-clock time so the mission timer can be tested.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns a Clock backed by time.Now.
func NewClock() Clock { return realClock{} }
