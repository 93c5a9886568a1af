// Package bootstrap wires storage adapters from configuration for the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	membookingrepo "github.com/unique-meal/member-portal/internal/adapters/memory/bookingrepo"
	memmemberrepo "github.com/unique-meal/member-portal/internal/adapters/memory/memberrepo"
	memsessionstore "github.com/unique-meal/member-portal/internal/adapters/memory/sessionstore"
	"github.com/unique-meal/member-portal/internal/adapters/postgres"
	pgbookingrepo "github.com/unique-meal/member-portal/internal/adapters/postgres/bookingrepo"
	pgmemberrepo "github.com/unique-meal/member-portal/internal/adapters/postgres/memberrepo"
	pgsessionstore "github.com/unique-meal/member-portal/internal/adapters/postgres/sessionstore"
	"github.com/unique-meal/member-portal/internal/adapters/sqlstore"
	"github.com/unique-meal/member-portal/internal/platform/config"
	bookingrepoport "github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
	memberrepoport "github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
	sessionstoreport "github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

// Stores are the repositories behind one storage backend.
type Stores struct {
	Members  memberrepoport.Repository
	Bookings bookingrepoport.Repository
	Sessions sessionstoreport.Store

	close func()
}

// Close releases the backend's connections. It is safe to call on the zero value.
func (s Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to the configured backend and makes sure its schema exists.
func OpenStores(ctx context.Context, cfg config.Config, log *logrus.Logger) (Stores, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return Stores{}, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return Stores{}, fmt.Errorf("postgres: %w", err)
		}
		return Stores{
			Members:  pgmemberrepo.NewRepo(pool),
			Bookings: pgbookingrepo.NewRepo(pool),
			Sessions: pgsessionstore.NewStore(pool),
			close:    pool.Close,
		}, nil

	case config.BackendSQLite:
		db, err := sqlstore.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return Stores{}, fmt.Errorf("sqlite: %w", err)
		}
		return gormStores(db), nil

	case config.BackendGormPostgres:
		db, err := sqlstore.OpenPostgres(cfg.DatabaseURL, log)
		if err != nil {
			return Stores{}, fmt.Errorf("gorm postgres: %w", err)
		}
		return gormStores(db), nil

	case config.BackendMemory, "":
		members := memmemberrepo.NewRepo()
		return Stores{
			Members:  members,
			Bookings: membookingrepo.NewRepo(members),
			Sessions: memsessionstore.NewStore(),
		}, nil

	default:
		return Stores{}, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func gormStores(db *gorm.DB) Stores {
	return Stores{
		Members:  sqlstore.NewMemberRepo(db),
		Bookings: sqlstore.NewBookingRepo(db),
		Sessions: sqlstore.NewSessionStore(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
}
