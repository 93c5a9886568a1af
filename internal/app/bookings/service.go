package bookings

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/platform/validation"
	"github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
	clockport "github.com/unique-meal/member-portal/internal/ports/out/clock"
	"github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
	"github.com/unique-meal/member-portal/internal/ports/out/notifier"
)

type Service struct {
	bookings bookingrepo.Repository
	members  memberrepo.Repository
	notifier notifier.Notifier
	clk      clockport.Clock
	log      *logrus.Logger

	newBookingID func() domain.BookingID
}

func NewService(bookingsRepo bookingrepo.Repository, membersRepo memberrepo.Repository, n notifier.Notifier, clk clockport.Clock, log *logrus.Logger) *Service {
	return &Service{
		bookings: bookingsRepo,
		members:  membersRepo,
		notifier: n,
		clk:      clk,
		log:      log,
		newBookingID: func() domain.BookingID {
			return domain.BookingID(uuid.NewString())
		},
	}
}

// SetNewBookingIDForTest overrides booking ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewBookingIDForTest(fn func() domain.BookingID) {
	if fn != nil {
		s.newBookingID = fn
	}
}

// BookMeal records a booking for caller and asks the notifier to confirm it.
// A failed confirmation is logged; the booking stands.
func (s *Service) BookMeal(ctx context.Context, caller domain.MemberID, in BookMealInput) (domain.MealBooking, error) {
	form := bookMealForm{
		MealName: domain.NormalizeMealName(in.MealName),
		MealDate: in.MealDate,
	}
	if details := validation.Struct(form); len(details) > 0 {
		return domain.MealBooking{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "Please correct the highlighted fields.",
			Details: details,
		}
	}
	mealDate, err := domain.ParseMealDate(form.MealDate)
	if err != nil {
		return domain.MealBooking{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "Please correct the highlighted fields.",
			Details: map[string]any{"meal_date": "must be a date in YYYY-MM-DD format"},
		}
	}

	member, err := s.members.GetByID(ctx, caller)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.MealBooking{}, errMemberNotFound()
		}
		return domain.MealBooking{}, err
	}

	b := bookingrepo.Booking{
		ID:       s.newBookingID(),
		MemberID: member.ID,
		MealName: form.MealName,
		MealDate: mealDate,
		BookedOn: s.clk.Now(),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, bookingrepo.ErrMemberNotFound) {
			return domain.MealBooking{}, errMemberNotFound()
		}
		return domain.MealBooking{}, err
	}

	out := toDomain(b)
	entry := s.log.WithFields(logrus.Fields{
		"member_id":  string(member.ID),
		"booking_id": string(b.ID),
	})
	entry.Info("meal booked")

	if s.notifier != nil {
		dm := domain.Member{
			ID:             member.ID,
			Username:       member.Username,
			Email:          member.Email,
			MembershipTier: member.MembershipTier,
			CreatedAt:      member.CreatedAt,
			UpdatedAt:      member.UpdatedAt,
		}
		if err := s.notifier.BookingConfirmed(ctx, dm, out); err != nil {
			entry.WithError(err).Warn("booking confirmation not delivered")
		}
	}
	return out, nil
}

// ListMyBookings returns caller's bookings ordered by meal date, then booking time.
func (s *Service) ListMyBookings(ctx context.Context, caller domain.MemberID) ([]domain.MealBooking, error) {
	bs, err := s.bookings.ListByMember(ctx, caller)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MealBooking, 0, len(bs))
	for _, b := range bs {
		out = append(out, toDomain(b))
	}
	// Stores already order; this keeps the contract when one does not.
	sortBookings(out)
	return out, nil
}

func (s *Service) CountMyBookings(ctx context.Context, caller domain.MemberID) (int, error) {
	return s.bookings.CountByMember(ctx, caller)
}

func errMemberNotFound() *Error {
	return &Error{
		Status:  404,
		Code:    "MEMBER_NOT_FOUND",
		Message: "No member exists for this session.",
	}
}

func toDomain(b bookingrepo.Booking) domain.MealBooking {
	return domain.MealBooking{
		ID:       b.ID,
		MemberID: b.MemberID,
		MealName: b.MealName,
		MealDate: b.MealDate,
		BookedOn: b.BookedOn,
	}
}

func sortBookings(bs []domain.MealBooking) {
	sort.SliceStable(bs, func(i, j int) bool {
		a, b := bs[i], bs[j]
		if a.MealDate != b.MealDate {
			return a.MealDate.Before(b.MealDate)
		}
		if !a.BookedOn.Equal(b.BookedOn) {
			return a.BookedOn.Before(b.BookedOn)
		}
		return a.ID < b.ID
	})
}
