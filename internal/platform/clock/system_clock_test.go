package clock

import (
	"testing"
	"time"
)

func TestSystemClock_UTCAtMicrosecondPrecision(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	c := SystemClock{now: func() time.Time {
		return time.Date(2024, 5, 12, 20, 30, 0, 123456789, loc)
	}}

	got := c.Now()
	want := time.Date(2024, 5, 12, 18, 30, 0, 123456000, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("Now()=%v, want %v", got, want)
	}
}

func TestSystemClock_ZeroValueUsesWallClock(t *testing.T) {
	t.Parallel()

	var c SystemClock
	before := time.Now().Add(-time.Second)
	if got := c.Now(); got.Before(before) || got.Nanosecond()%1000 != 0 {
		t.Fatalf("Now()=%v", got)
	}
}
