package bookingrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/unique-meal/member-portal/internal/adapters/postgres"
	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
)

// Repo is a Postgres implementation of bookingrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, b bookingrepo.Booking) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	bookingUUID, err := uuid.Parse(string(b.ID))
	if err != nil {
		return fmt.Errorf("invalid booking id: %w", err)
	}
	memberUUID, err := uuid.Parse(string(b.MemberID))
	if err != nil {
		// Not a key any member could have.
		return bookingrepo.ErrMemberNotFound
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO meal_bookings (
			id,
			member_id,
			meal_name,
			meal_date,
			booked_on
		) VALUES ($1, $2, $3, $4, $5)
	`,
		bookingUUID,
		memberUUID,
		b.MealName,
		dateForDB(b.MealDate),
		b.BookedOn.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok {
			switch {
			case pe.Code == postgres.ForeignKeyViolationCode:
				return bookingrepo.ErrMemberNotFound
			case pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == postgres.MealBookingsPkey:
				return bookingrepo.ErrAlreadyExists
			}
		}
		return fmt.Errorf("insert meal booking: %w", err)
	}
	return nil
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]bookingrepo.Booking, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return []bookingrepo.Booking{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, member_id, meal_name, meal_date, booked_on
		FROM meal_bookings
		WHERE member_id = $1
		ORDER BY meal_date ASC, booked_on ASC, id::text ASC
	`, memberUUID)
	if err != nil {
		return nil, fmt.Errorf("list meal bookings: %w", err)
	}
	defer rows.Close()

	out := make([]bookingrepo.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return 0, nil
	}
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM meal_bookings WHERE member_id = $1`, memberUUID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count meal bookings: %w", err)
	}
	return n, nil
}

func scanBooking(row pgx.Row) (bookingrepo.Booking, error) {
	var (
		id       uuid.UUID
		memberID uuid.UUID
		mealName string
		mealDate pgtype.Date
		bookedOn time.Time
	)
	if err := row.Scan(&id, &memberID, &mealName, &mealDate, &bookedOn); err != nil {
		return bookingrepo.Booking{}, err
	}
	return bookingrepo.Booking{
		ID:       domain.BookingID(id.String()),
		MemberID: domain.MemberID(memberID.String()),
		MealName: mealName,
		MealDate: domain.MealDateOf(mealDate.Time),
		BookedOn: bookedOn.UTC(),
	}, nil
}

func dateForDB(d domain.MealDate) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}
