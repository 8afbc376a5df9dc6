package use_cases

import "time"

// Clock supplies the reference time for expiry, confirmation and
// finalization stamps. Implementations must return UTC.
type Clock interface {
	NowUTC() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) NowUTC() time.Time {
	return f().UTC()
}

func NewSystemClock() Clock {
	return ClockFunc(time.Now)
}
