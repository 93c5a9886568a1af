package notifier

import (
	"context"

	"github.com/unique-meal/member-portal/internal/domain"
)

// Notifier delivers member-facing notifications.
type Notifier interface {
	// BookingConfirmed tells the member a meal booking was recorded.
	BookingConfirmed(ctx context.Context, m domain.Member, b domain.MealBooking) error
}
