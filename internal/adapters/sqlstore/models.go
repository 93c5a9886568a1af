package sqlstore

import (
	"time"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
	"github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
	"github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

type memberModel struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	Username       string `gorm:"not null;uniqueIndex:members_username_unique"`
	Email          string `gorm:"not null;uniqueIndex:members_email_unique"`
	PasswordHash   string `gorm:"not null"`
	MembershipTier string `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (memberModel) TableName() string { return "members" }

func memberFromPort(m memberrepo.Member) memberModel {
	return memberModel{
		ID:             string(m.ID),
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		MembershipTier: m.MembershipTier,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func (m memberModel) toPort() memberrepo.Member {
	return memberrepo.Member{
		ID:             domain.MemberID(m.ID),
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		MembershipTier: m.MembershipTier,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

// bookingModel stores MealDate as YYYY-MM-DD text, which sorts chronologically.
type bookingModel struct {
	ID       string       `gorm:"primaryKey;type:varchar(36)"`
	MemberID string       `gorm:"not null;type:varchar(36);index:meal_bookings_member_idx"`
	Member   *memberModel `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT"`
	MealName string       `gorm:"not null"`
	MealDate string       `gorm:"not null;type:varchar(10)"`
	BookedOn time.Time    `gorm:"not null"`
}

func (bookingModel) TableName() string { return "meal_bookings" }

func bookingFromPort(b bookingrepo.Booking) bookingModel {
	return bookingModel{
		ID:       string(b.ID),
		MemberID: string(b.MemberID),
		MealName: b.MealName,
		MealDate: b.MealDate.String(),
		BookedOn: b.BookedOn.UTC(),
	}
}

func (b bookingModel) toPort() (bookingrepo.Booking, error) {
	d, err := domain.ParseMealDate(b.MealDate)
	if err != nil {
		return bookingrepo.Booking{}, err
	}
	return bookingrepo.Booking{
		ID:       domain.BookingID(b.ID),
		MemberID: domain.MemberID(b.MemberID),
		MealName: b.MealName,
		MealDate: d,
		BookedOn: b.BookedOn.UTC(),
	}, nil
}

type sessionModel struct {
	ID        string       `gorm:"primaryKey;type:varchar(36)"`
	MemberID  string       `gorm:"not null;type:varchar(36);index"`
	Member    *memberModel `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
}

func (sessionModel) TableName() string { return "sessions" }

func (s sessionModel) toPort() sessionstore.Session {
	return sessionstore.Session{
		ID:        domain.SessionID(s.ID),
		MemberID:  domain.MemberID(s.MemberID),
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}
}
