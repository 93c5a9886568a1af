package memberrepo

import (
	"context"
	"time"

	"github.com/unique-meal/member-portal/internal/domain"
)

// Member is the persistence shape used by the member repository.
// It is an internal record, not an HTTP view model.
type Member struct {
	ID domain.MemberID

	// Username is unique across members (exact match).
	Username string
	// Email is stored normalized (lower-case) and is unique across members.
	Email string
	// PasswordHash is a bcrypt hash. Repositories never see plaintext passwords.
	PasswordHash string

	MembershipTier string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted members.
//
// Create must reject duplicates atomically: a concurrent registration racing the
// application-level pre-check still fails with ErrUsernameTaken, ErrEmailTaken or
// ErrAlreadyExists rather than producing a second row.
type Repository interface {
	Create(ctx context.Context, m Member) error

	GetByID(ctx context.Context, id domain.MemberID) (Member, error)
	GetByUsername(ctx context.Context, username string) (Member, error)
	// GetByEmail expects a normalized (lower-case) email.
	GetByEmail(ctx context.Context, email string) (Member, error)

	Count(ctx context.Context) (int, error)
}
