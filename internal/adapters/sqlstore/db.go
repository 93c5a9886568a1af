// Package sqlstore implements the repository ports on top of gorm, so the
// portal can run on a local sqlite file or on postgres through database/sql.
package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects through dialector and migrates the portal tables.
// Driver errors are translated so adapters can match gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
func Open(dialector gorm.Dialector, log *logrus.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if log != nil {
		cfg.Logger = logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	} else {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens (or creates) the sqlite database at path with foreign keys enforced.
// A path of ":memory:" gives a private in-memory database.
func OpenSQLite(path string, log *logrus.Logger) (*gorm.DB, error) {
	dsn := sqliteDSN(path)
	sqlDB, err := sql.Open(sqlite.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// sqlite serializes writers; one connection also keeps an in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	db, err := Open(&sqlite.Dialector{DriverName: sqlite.DriverName, DSN: dsn, Conn: sqlDB}, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// OpenPostgres opens a gorm connection to postgres using dsn.
func OpenPostgres(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := Open(postgres.Open(dsn), log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the portal tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&memberModel{}, &bookingModel{}, &sessionModel{}); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=1"
	}
	return "file:" + path + "?_foreign_keys=1&_busy_timeout=5000"
}
