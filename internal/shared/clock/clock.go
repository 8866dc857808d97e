package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns t. Used by tests and replays.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
