package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/kelseyhightower/envconfig"

	"resumeflow/internal/shared/telemetry"
)

// Profile selects pool defaults for a kind of process.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// Options controls pool sizing and the connectivity check.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// overrides are read from DB_* variables; unset fields keep the profile default.
type overrides struct {
	MaxOpenConns    *int           `envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    *int           `envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime *time.Duration `envconfig:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime *time.Duration `envconfig:"CONN_MAX_IDLE_TIME"`
	PingTimeout     *time.Duration `envconfig:"PING_TIMEOUT"`
}

var (
	openDB = sql.Open

	singletonMu sync.Mutex
	singletonDB *sql.DB
)

// IsLambdaRuntime reports whether the process runs inside AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DefaultOptions returns pool defaults for p. Lambda keeps the pool tiny
// because every concurrent execution environment holds its own.
func DefaultOptions(p Profile) Options {
	switch p {
	case ProfileLambda:
		return Options{MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxIdleTime: 30 * time.Second, ConnMaxLifetime: 15 * time.Minute, PingTimeout: 3 * time.Second}
	case ProfileMigrate:
		return Options{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxIdleTime: 2 * time.Minute, ConnMaxLifetime: time.Hour, PingTimeout: 10 * time.Second}
	default:
		return Options{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxIdleTime: 2 * time.Minute, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
	}
}

// OptionsFromEnv applies DB_* overrides to the defaults for p.
func OptionsFromEnv(p Profile) Options {
	opts := DefaultOptions(p)
	var o overrides
	if err := envconfig.Process("DB", &o); err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"error": err.Error()})
		return opts
	}
	if o.MaxOpenConns != nil {
		opts.MaxOpenConns = *o.MaxOpenConns
	}
	if o.MaxIdleConns != nil {
		opts.MaxIdleConns = *o.MaxIdleConns
	}
	if o.ConnMaxLifetime != nil {
		opts.ConnMaxLifetime = *o.ConnMaxLifetime
	}
	if o.ConnMaxIdleTime != nil {
		opts.ConnMaxIdleTime = *o.ConnMaxIdleTime
	}
	if o.PingTimeout != nil {
		opts.PingTimeout = *o.PingTimeout
	}
	return opts
}

// Connect opens a pgx-backed pool and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", Redact(databaseURL), err)
	}

	telemetry.Info("db.pool_ready", map[string]any{
		"target":   Redact(databaseURL),
		"max_open": db.Stats().MaxOpenConnections,
		"max_idle": opts.MaxIdleConns,
	})
	return db, nil
}

// GetSingleton returns the process-wide pool for warm Lambda invocations.
// A failed connect is not cached; the next call tries again.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonDB != nil {
		return singletonDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	singletonDB = db
	return db, nil
}

// Redact strips credentials from a connection URL for logging.
func Redact(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil || u.Host == "" {
		return "postgres"
	}
	return u.Host + u.Path
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 || opts.MaxIdleConns > opts.MaxOpenConns {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
