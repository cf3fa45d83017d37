package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Options tunes the connection pool
type Options struct {
	MaxOpenConns int
	// ConnectRetry bounds how long NewDB keeps pinging a database that is still starting
	ConnectRetry time.Duration
	Logger       zerolog.Logger
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=ledger sslmode=disable"
func NewDB(ctx context.Context, connectionString string, opts Options) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	deadline := time.Now().Add(opts.ConnectRetry)
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to ping database")
		}
		opts.Logger.Warn().Err(err).Int("attempt", attempt).Msg("database not ready, retrying")
		select {
		case <-ctx.Done():
		case <-time.After(500 * time.Millisecond):
		}
	}

	return &DB{DB: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS ledger_accounts (
	id                  UUID PRIMARY KEY,
	investor_id         TEXT NOT NULL,
	initial_investment  NUMERIC NOT NULL,
	monthly_return_rate NUMERIC NOT NULL,
	monthly_additions   NUMERIC NOT NULL,
	current_balance     NUMERIC NOT NULL,
	total_deposits      NUMERIC NOT NULL,
	total_withdrawals   NUMERIC NOT NULL,
	records             JSONB NOT NULL DEFAULT '[]'::jsonb,
	version             BIGINT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_accounts_investor ON ledger_accounts (investor_id);
`

// Migrate creates the ledger tables when they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
