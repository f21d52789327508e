// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"github.com/treadlinehq/treadline-backend/internal/config"
)

// DB wraps the connection pool with a semaphore so a burst of per-candidate
// history fetches cannot overwhelm the database.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates the shared database handle for the server process.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		dbInstance = wrap(db, cfg.MaxConcurrentQueries)
	})

	return dbInstance, err
}

// NewDBFromURL opens a handle from a connection URL, for CLI tools. The driver
// name lets callers pick the pgx stdlib driver.
func NewDBFromURL(driver, url string, maxConcurrent int64) (*DB, error) {
	db, err := sqlx.Connect(driver, url)
	if err != nil {
		return nil, err
	}
	return wrap(db, maxConcurrent), nil
}

func wrap(db *sqlx.DB, maxConcurrent int64) *DB {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// Acquire blocks until a query slot is free or the context expires.
func (db *DB) Acquire(ctx context.Context) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire query slot: %w", err)
	}
	return nil
}

// Release frees a query slot taken with Acquire.
func (db *DB) Release() {
	db.sem.Release(1)
}
