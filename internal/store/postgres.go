package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS high_scores (
	board      TEXT        NOT NULL,
	version    TEXT        NOT NULL,
	level      TEXT        NOT NULL,
	records    JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (board, version, level)
)`

	selectRecordsSQL = `SELECT records FROM high_scores WHERE board = $1 AND version = $2 AND level = $3`

	upsertRecordsSQL = `INSERT INTO high_scores (board, version, level, records, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (board, version, level) DO UPDATE SET records = EXCLUDED.records, updated_at = EXCLUDED.updated_at`
)

// PostgresBackend keeps one row per scope in the high_scores table. The
// board column holds the configured base path so several boards can share
// a database.
type PostgresBackend struct {
	db    *sqlx.DB
	board string
}

// OpenPostgresBackend connects with dsn and creates the table if needed.
func OpenPostgresBackend(ctx context.Context, dsn, board string) (*PostgresBackend, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	b := NewPostgresBackend(db, board)
	if err := b.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return b, nil
}

// NewPostgresBackend wraps an existing connection pool.
func NewPostgresBackend(db *sqlx.DB, board string) *PostgresBackend {
	return &PostgresBackend{db: db, board: board}
}

// EnsureSchema creates the high_scores table if it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create high_scores table: %w", err)
	}

	return nil
}

func (b *PostgresBackend) Read(ctx context.Context, key scores.ScopeKey) ([]byte, error) {
	var records []byte
	err := b.db.GetContext(ctx, &records, selectRecordsSQL, b.board, key.Version, key.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}

	return records, err
}

// The upsert is a single statement, so readers see the old row or the new one.
func (b *PostgresBackend) Write(ctx context.Context, key scores.ScopeKey, data []byte) error {
	_, err := b.db.ExecContext(ctx, upsertRecordsSQL, b.board, key.Version, key.Level, string(data))
	return err
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
