// Package sessions manages the lifecycle of login sessions: a server-side
// record plus the signed cookie value that points at it.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/platform/auth/sessiontoken"
	clockport "github.com/unique-meal/member-portal/internal/ports/out/clock"
	"github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

// ErrNoSession means the cookie value does not name a live session.
var ErrNoSession = errors.New("no active session")

// TokenCodec signs and verifies cookie values.
type TokenCodec interface {
	Sign(sessionID domain.SessionID, memberID domain.MemberID, expiresAt time.Time) (string, error)
	Parse(token string) (sessiontoken.Claims, error)
}

type Session struct {
	ID        domain.SessionID
	MemberID  domain.MemberID
	ExpiresAt time.Time
}

type Service struct {
	store sessionstore.Store
	codec TokenCodec
	clk   clockport.Clock
	ttl   time.Duration
	log   *logrus.Logger

	newSessionID func() domain.SessionID
}

func NewService(store sessionstore.Store, codec TokenCodec, clk clockport.Clock, ttl time.Duration, log *logrus.Logger) *Service {
	return &Service{
		store: store,
		codec: codec,
		clk:   clk,
		ttl:   ttl,
		log:   log,
		newSessionID: func() domain.SessionID {
			return domain.SessionID(uuid.NewString())
		},
	}
}

// TTL is how long a new session lives.
func (s *Service) TTL() time.Duration { return s.ttl }

// Start opens a session for memberID and returns the cookie value for it.
func (s *Service) Start(ctx context.Context, memberID domain.MemberID) (string, Session, error) {
	if memberID == "" {
		return "", Session{}, errors.New("member id is required")
	}
	now := s.clk.Now()
	rec := sessionstore.Session{
		ID:        s.newSessionID(),
		MemberID:  memberID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return "", Session{}, fmt.Errorf("store session: %w", err)
	}
	token, err := s.codec.Sign(rec.ID, rec.MemberID, rec.ExpiresAt)
	if err != nil {
		if derr := s.store.Delete(ctx, rec.ID); derr != nil {
			s.log.WithError(derr).Warn("failed to delete unsigned session")
		}
		return "", Session{}, err
	}
	s.log.WithField("member_id", string(memberID)).Debug("session started")
	return token, toSession(rec), nil
}

// Resolve returns the live session behind cookieValue, or ErrNoSession.
// Expired records found along the way are deleted.
func (s *Service) Resolve(ctx context.Context, cookieValue string) (Session, error) {
	claims, err := s.codec.Parse(cookieValue)
	if err != nil {
		if errors.Is(err, sessiontoken.ErrExpired) {
			s.discard(ctx, claims.SessionID)
		}
		return Session{}, ErrNoSession
	}

	rec, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	if rec.MemberID != claims.MemberID {
		return Session{}, ErrNoSession
	}
	if rec.Expired(s.clk.Now()) {
		s.discard(ctx, rec.ID)
		return Session{}, ErrNoSession
	}
	return toSession(rec), nil
}

// End deletes the session behind cookieValue. Ending an unknown, expired or
// already ended session is not an error.
func (s *Service) End(ctx context.Context, cookieValue string) error {
	claims, err := s.codec.Parse(cookieValue)
	if err != nil && !errors.Is(err, sessiontoken.ErrExpired) {
		return nil
	}
	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.WithField("member_id", string(claims.MemberID)).Debug("session ended")
	return nil
}

func (s *Service) discard(ctx context.Context, id domain.SessionID) {
	if id == "" {
		return
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.log.WithError(err).Warn("failed to delete expired session")
	}
}

func toSession(rec sessionstore.Session) Session {
	return Session{
		ID:        rec.ID,
		MemberID:  rec.MemberID,
		ExpiresAt: rec.ExpiresAt,
	}
}
