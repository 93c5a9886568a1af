package domain

import (
	"fmt"
	"strings"
	"time"
)

// MealDateLayout is the only accepted wire format for meal dates (HTML date input).
const MealDateLayout = "2006-01-02"

// MealDate is a calendar date without a time zone.
type MealDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseMealDate parses a YYYY-MM-DD string.
func ParseMealDate(s string) (MealDate, error) {
	t, err := time.Parse(MealDateLayout, strings.TrimSpace(s))
	if err != nil {
		return MealDate{}, fmt.Errorf("invalid meal date %q: must be YYYY-MM-DD", s)
	}
	return MealDateOf(t), nil
}

// MealDateOf returns the calendar date of t in t's location.
func MealDateOf(t time.Time) MealDate {
	y, m, d := t.Date()
	return MealDate{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date. It is the storage representation.
func (d MealDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d MealDate) String() string {
	return d.Time().Format(MealDateLayout)
}

func (d MealDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d is strictly earlier than o.
func (d MealDate) Before(o MealDate) bool {
	return d.Time().Before(o.Time())
}

// MealBooking is a member's reservation of a named meal on a given date.
type MealBooking struct {
	ID       BookingID
	MemberID MemberID

	MealName string
	MealDate MealDate

	// BookedOn is set when the booking is inserted.
	BookedOn time.Time
}
