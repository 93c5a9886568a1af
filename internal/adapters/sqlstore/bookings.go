package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
)

// BookingRepo is a gorm implementation of bookingrepo.Repository.
type BookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Create(ctx context.Context, b bookingrepo.Booking) error {
	row := bookingFromPort(b)
	err := r.db.WithContext(ctx).Omit("Member").Create(&row).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return bookingrepo.ErrMemberNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return bookingrepo.ErrAlreadyExists
	default:
		return fmt.Errorf("insert meal booking: %w", err)
	}
}

func (r *BookingRepo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]bookingrepo.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("member_id = ?", string(memberID)).
		Order("meal_date ASC").
		Order("booked_on ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list meal bookings: %w", err)
	}

	out := make([]bookingrepo.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.toPort()
		if err != nil {
			return nil, fmt.Errorf("meal booking %s: %w", row.ID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BookingRepo) CountByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&bookingModel{}).Where("member_id = ?", string(memberID)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count meal bookings: %w", err)
	}
	return int(n), nil
}
