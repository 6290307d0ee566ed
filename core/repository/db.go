package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_events (
	id            BIGSERIAL PRIMARY KEY,
	resource_type TEXT        NOT NULL,
	resource_name TEXT        NOT NULL,
	status        TEXT        NOT NULL,
	reason        TEXT        NOT NULL DEFAULT '',
	meta_json     JSONB,
	at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS pipeline_events_resource_idx
	ON pipeline_events (resource_type, resource_name, at DESC);
`

// DB wraps the run history connection pool
type DB struct {
	*sql.DB
}

// NewDB opens a Postgres connection pool and makes sure the schema exists
func NewDB(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(5)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn}
	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the run history tables if they are missing
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
