package sessionstore

import (
	"testing"

	"github.com/unique-meal/member-portal/internal/adapters/contracttest"
	pgmemberrepo "github.com/unique-meal/member-portal/internal/adapters/postgres/memberrepo"
	"github.com/unique-meal/member-portal/internal/adapters/postgres/testutil"
	memberrepoport "github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
	sessionstoreport "github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

func TestContract_PostgresSessionStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunSessionStore(t, func(t *testing.T) (memberrepoport.Repository, sessionstoreport.Store, func()) {
		t.Helper()
		return pgmemberrepo.NewRepo(pool), NewStore(pool), nil
	})
}
