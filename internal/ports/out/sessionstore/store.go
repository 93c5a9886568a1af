package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/unique-meal/member-portal/internal/domain"
)

// ErrNotFound indicates no session exists for the requested ID.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record behind a login cookie.
type Session struct {
	ID       domain.SessionID
	MemberID domain.MemberID

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists login sessions.
//
// Delete is idempotent: deleting a missing session is not an error.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, id domain.SessionID) (Session, error)
	Delete(ctx context.Context, id domain.SessionID) error
}
