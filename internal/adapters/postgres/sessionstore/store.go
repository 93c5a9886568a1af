package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/unique-meal/member-portal/internal/adapters/postgres"
	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

// Store is a Postgres implementation of sessionstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Put(ctx context.Context, sess sessionstore.Session) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(sess.ID))
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	memberID, err := uuid.Parse(string(sess.MemberID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, member_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
	`,
		id,
		memberID,
		sess.CreatedAt.UTC(),
		sess.ExpiresAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.ForeignKeyViolationCode {
			return fmt.Errorf("session for unknown member %s: %w", sess.MemberID, err)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.SessionID) (sessionstore.Session, error) {
	if s.pool == nil {
		return sessionstore.Session{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return sessionstore.Session{}, sessionstore.ErrNotFound
	}

	var (
		memberID  uuid.UUID
		createdAt time.Time
		expiresAt time.Time
	)
	err = s.pool.QueryRow(ctx, `
		SELECT member_id, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`, uid).Scan(&memberID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionstore.Session{}, sessionstore.ErrNotFound
		}
		return sessionstore.Session{}, err
	}
	return sessionstore.Session{
		ID:        id,
		MemberID:  domain.MemberID(memberID.String()),
		CreatedAt: createdAt.UTC(),
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, id domain.SessionID) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, uid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
