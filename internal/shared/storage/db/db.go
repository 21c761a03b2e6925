// Package db owns the PostgreSQL pool for the API: pgx wired through
// database/sql, pool sizing tuned per runtime (Lambda execution environment
// vs long-lived server), and the embedded goose migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx as a database/sql driver
)

// Options tunes the connection pool and the startup connectivity probe.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// DefaultLambdaOptions keeps the pool tiny. Every Lambda execution
// environment holds its own pool, and Postgres connection slots are the
// scarce resource across concurrent environments.
func DefaultLambdaOptions() Options {
	return Options{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 30 * time.Second,
		ConnMaxLifetime: 15 * time.Minute,
		PingTimeout:     3 * time.Second,
	}
}

// DefaultServerOptions sizes the pool for a single long-running process.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions uses a single connection; migrations run serially.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// OptionsFromEnv layers DB_* environment overrides on top of defaults.
// Unset or malformed values leave the default in place.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	if n, ok := envInt("DB_MAX_OPEN_CONNS"); ok {
		opts.MaxOpenConns = n
	}
	if n, ok := envInt("DB_MAX_IDLE_CONNS"); ok {
		opts.MaxIdleConns = n
	}
	if d, ok := envDuration("DB_CONN_MAX_LIFETIME"); ok {
		opts.ConnMaxLifetime = d
	}
	if d, ok := envDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		opts.ConnMaxIdleTime = d
	}
	if d, ok := envDuration("DB_PING_TIMEOUT"); ok {
		opts.PingTimeout = d
	}
	return opts
}

// IsLambdaRuntime reports whether the process runs inside AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// sqlOpen is swapped in tests so pool behavior can be exercised without a
// live Postgres.
var sqlOpen = sql.Open

// Connect opens a pgx-backed pool for databaseURL, applies opts, and
// verifies the database answers a ping before returning the handle. The
// returned *sql.DB is safe for concurrent use and meant to be shared.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	conn, err := sqlOpen("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	tunePool(conn, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Printf("db ready: max_open=%d max_idle=%d lifetime=%s",
		conn.Stats().MaxOpenConnections, opts.MaxIdleConns, opts.ConnMaxLifetime)
	return conn, nil
}

var (
	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// GetSingleton hands out one process-wide pool. Lambda re-invokes the same
// execution environment, so a pool from a previous invocation is reused; an
// init failure is returned to the caller and retried on the next call
// instead of being cached.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedDB != nil {
		log.Printf("db singleton reused")
		return sharedDB, nil
	}
	conn, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	sharedDB = conn
	log.Printf("db singleton initialized")
	return sharedDB, nil
}

func tunePool(conn *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("%s is not an integer, ignoring: %v", key, err)
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("%s is not a duration, ignoring: %v", key, err)
		return 0, false
	}
	return d, true
}
