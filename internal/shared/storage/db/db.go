// Package db opens the Postgres pool behind the resume record store and applies its migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

// Profile selects pool sizing for the kind of process that owns the pool.
type Profile int

const (
	// Server is a long-running API process.
	Server Profile = iota
	// Lambda is one execution environment; its pool is shared by every invocation it serves.
	Lambda
	// Migrate is a one-shot migration run.
	Migrate
)

// Pool sizes a *sql.DB.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
	PingTimeout time.Duration
}

var (
	openDB = sql.Open

	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// IsLambdaRuntime reports whether the current process is running in AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// RuntimeProfile is Lambda inside AWS Lambda and Server everywhere else.
func RuntimeProfile() Profile {
	if IsLambdaRuntime() {
		return Lambda
	}
	return Server
}

// PoolFor returns the sizing for p. A positive maxConns (DB_MAX_CONNS) caps open and idle connections.
func PoolFor(p Profile, maxConns int) Pool {
	var pool Pool
	switch p {
	case Lambda:
		pool = Pool{MaxOpen: 2, MaxIdle: 1, MaxIdleTime: 30 * time.Second, MaxLifetime: 15 * time.Minute, PingTimeout: 3 * time.Second}
	case Migrate:
		pool = Pool{MaxOpen: 1, MaxIdle: 1, MaxIdleTime: 2 * time.Minute, MaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
	default:
		pool = Pool{MaxOpen: 10, MaxIdle: 5, MaxIdleTime: 2 * time.Minute, MaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
	}
	if maxConns > 0 {
		pool.MaxOpen = maxConns
		pool.MaxIdle = min(pool.MaxIdle, maxConns)
	}
	return pool
}

// Connect opens the pool, verifies it with a ping and exposes its statistics on /metrics.
func Connect(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxIdleTime(pool.MaxIdleTime)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	pingTimeout := pool.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	metrics.RegisterDBStats(db)
	telemetry.Info("db.connected", map[string]any{"max_open": pool.MaxOpen, "max_idle": pool.MaxIdle})
	return db, nil
}

// Shared returns the pool of this execution environment, connecting on first use.
// A failed connect is not remembered, so the next invocation tries again.
func Shared(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDB != nil {
		return sharedDB, nil
	}
	db, err := Connect(ctx, databaseURL, pool)
	if err != nil {
		return nil, err
	}
	sharedDB = db
	return db, nil
}
