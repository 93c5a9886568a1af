package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the adapters translate into port errors.
const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"
)

// Constraint names declared in schema.sql.
const (
	MembersUsernameUnique  = "members_username_unique"
	MembersEmailUnique     = "members_email_unique"
	MembersPkey            = "members_pkey"
	MealBookingsPkey       = "meal_bookings_pkey"
	MealBookingsMemberFkey = "meal_bookings_member_id_fkey"
	SessionsMemberFkey     = "sessions_member_id_fkey"
)

func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
