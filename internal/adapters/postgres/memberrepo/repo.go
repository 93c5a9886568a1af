package memberrepo

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
	"github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
)

// Repo is a Postgres implementation of memberrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectMember = `
	SELECT
		id,
		username,
		email,
		password_hash,
		membership_tier,
		created_at,
		updated_at
	FROM members
`

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(m.ID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO members (
			id,
			username,
			email,
			password_hash,
			membership_tier,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		id,
		m.Username,
		m.Email,
		m.PasswordHash,
		m.MembershipTier,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			// Determine which unique constraint was violated.
			switch pe.ConstraintName {
			case postgres.MembersUsernameUnique:
				return memberrepo.ErrUsernameTaken
			case postgres.MembersEmailUnique:
				return memberrepo.ErrEmailTaken
			default:
				return memberrepo.ErrAlreadyExists
			}
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return scanMember(r.pool.QueryRow(ctx, selectMember+` WHERE id = $1`, uid))
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}
	return scanMember(r.pool.QueryRow(ctx, selectMember+` WHERE username = $1`, username))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}
	return scanMember(r.pool.QueryRow(ctx, selectMember+` WHERE email = $1`, email))
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func scanMember(row pgx.Row) (memberrepo.Member, error) {
	var (
		id             uuid.UUID
		username       string
		email          string
		passwordHash   string
		membershipTier string
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := row.Scan(
		&id,
		&username,
		&email,
		&passwordHash,
		&membershipTier,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return memberrepo.Member{}, memberrepo.ErrNotFound
		}
		return memberrepo.Member{}, err
	}
	return memberrepo.Member{
		ID:             domain.MemberID(id.String()),
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		MembershipTier: membershipTier,
		CreatedAt:      createdAt.UTC(),
		UpdatedAt:      updatedAt.UTC(),
	}, nil
}
