package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akhielesh/secure-chat/internal/config"
)

//go:embed schema.sql
var schemaSQL string

const (
	defaultMaxConns    = 4
	defaultIdleTime    = 5 * time.Minute
	defaultLifetime    = time.Hour
	defaultHealthCheck = time.Minute
)

// driverSuffixes are SQLAlchemy-style scheme decorations pgx does not understand.
var driverSuffixes = []string{"+asyncpg", "+pgx"}

// Connect parses dsn, applies opts over the pool defaults and pings before returning.
func Connect(ctx context.Context, dsn string, opts ...func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	applyPoolDefaults(pcfg)
	for _, opt := range opts {
		if opt != nil {
			opt(pcfg)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

func applyPoolDefaults(c *pgxpool.Config) {
	c.MaxConns = defaultMaxConns
	c.MaxConnIdleTime = defaultIdleTime
	c.MaxConnLifetime = defaultLifetime
	c.HealthCheckPeriod = defaultHealthCheck
}

// NewPool connects using the postgres section of the config and, when enabled,
// applies the embedded schema.
func NewPool(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres: dsn is not set")
	}
	pool, err := Connect(ctx, dsn, func(c *pgxpool.Config) {
		if cfg.MaxConns > 0 {
			c.MaxConns = cfg.MaxConns
		}
	})
	if err != nil {
		return nil, err
	}
	if cfg.EnsureSchema {
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

// EnsureSchema creates missing tables and indexes. Every statement is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// normalizeDSN strips driver suffixes such as postgresql+asyncpg:// from the scheme.
func normalizeDSN(dsn string) string {
	s := strings.TrimSpace(dsn)
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return s
	}
	for _, suffix := range driverSuffixes {
		scheme = strings.TrimSuffix(scheme, suffix)
	}
	return scheme + "://" + rest
}
