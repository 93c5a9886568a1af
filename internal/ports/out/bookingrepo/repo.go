package bookingrepo

import (
	"context"
	"time"

	"github.com/unique-meal/member-portal/internal/domain"
)

// Booking is the persistence shape used by the booking repository.
type Booking struct {
	ID       domain.BookingID
	MemberID domain.MemberID

	MealName string
	MealDate domain.MealDate

	BookedOn time.Time
}

// Repository provides access to persisted meal bookings.
//
// Bookings are insert-only. Result ordering expectations:
// - ListByMember returns bookings ordered by MealDate, then BookedOn, then ID (all ascending).
type Repository interface {
	// Create inserts a booking. It returns ErrMemberNotFound when MemberID does not
	// reference an existing member.
	Create(ctx context.Context, b Booking) error

	ListByMember(ctx context.Context, memberID domain.MemberID) ([]Booking, error)
	CountByMember(ctx context.Context, memberID domain.MemberID) (int, error)
}
