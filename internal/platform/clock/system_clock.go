package clock

import "time"

// Precision is the resolution timestamps are kept at. Postgres timestamptz
// stores microseconds, so every backend sees the same value that was written.
const Precision = time.Microsecond

// SystemClock reads the wall clock in UTC at Precision.
type SystemClock struct {
	now func() time.Time
}

func NewSystemClock() SystemClock { return SystemClock{now: time.Now} }

func (c SystemClock) Now() time.Time {
	now := c.now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(Precision)
}
