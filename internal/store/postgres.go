package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool for the vessel table.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pgxPool is the slice of pgxpool.Pool the store needs; narrow so tests can
// substitute a mock.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore persists vessel records as one row per identifier with the
// full record as jsonb.
type PostgresStore struct {
	pool  pgxPool
	table string
}

// NewPostgresStore connects a pool from config.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresStoreWithPool(pool, cfg.Table)
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxPool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "vessels"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Exists implements RecordStore.
func (s *PostgresStore) Exists(ctx context.Context, imo int) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE imo = $1)`, s.table)
	var exists bool
	if err := s.pool.QueryRow(ctx, query, imo).Scan(&exists); err != nil {
		return false, fmt.Errorf("check vessel %d: %w", imo, err)
	}
	return exists, nil
}

// Save implements RecordStore. ON CONFLICT DO NOTHING keeps the first
// capture authoritative across overlapping runs.
func (s *PostgresStore) Save(ctx context.Context, rec *vessel.Record) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", rec.IMO, err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (imo, source_url, extracted_at, record)
VALUES ($1, $2, $3, $4)
ON CONFLICT (imo) DO NOTHING`, s.table)

	if _, err := s.pool.Exec(ctx, query, rec.IMO, rec.SourceURL, rec.ExtractedAt, doc); err != nil {
		return fmt.Errorf("insert vessel %d: %w", rec.IMO, err)
	}
	return nil
}
