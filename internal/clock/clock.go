package clock

import "time"

// Clock provides the current instant; reports take their date and period from it
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using system time in UTC
type RealClock struct{}

// Now returns the current system time in UTC
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function to Clock
type Func func() time.Time

// Now calls f
func (f Func) Now() time.Time {
	return f()
}
