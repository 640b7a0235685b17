package cache

import "time"

// Clock supplies the time used for sync timestamps and cache age.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock always reports FixedTime, so staleness can be tested without
// waiting.
type TestClock struct {
	FixedTime time.Time
}

func (c TestClock) Now() time.Time {
	return c.FixedTime
}
