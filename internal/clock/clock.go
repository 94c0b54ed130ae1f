package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystem() Clock { return systemClock{} }

// Now is truncated to microseconds to match timestamptz precision.
func (systemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

type fixedClock struct {
	now time.Time
}

func NewFixed(t time.Time) Clock { return fixedClock{now: t.UTC()} }

func (f fixedClock) Now() time.Time { return f.now }
