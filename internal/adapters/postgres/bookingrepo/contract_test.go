package bookingrepo

import (
	"testing"

	"github.com/unique-meal/member-portal/internal/adapters/contracttest"
	pgmemberrepo "github.com/unique-meal/member-portal/internal/adapters/postgres/memberrepo"
	"github.com/unique-meal/member-portal/internal/adapters/postgres/testutil"
	bookingrepoport "github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
	memberrepoport "github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
)

func TestContract_PostgresBookingRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunBookingRepo(t, func(t *testing.T) (memberrepoport.Repository, bookingrepoport.Repository, func()) {
		t.Helper()
		return pgmemberrepo.NewRepo(pool), NewRepo(pool), nil
	})
}
