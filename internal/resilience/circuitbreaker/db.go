package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sony/gobreaker"

	"blog-platform/internal/observability/metrics"
)

// DBCircuitBreaker guards a *sql.DB. Repositories run their statements
// through it, so an unreachable database fails fast instead of piling up
// requests waiting on the pool.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens the circuit once at least five requests were counted in the
// current one minute interval and every one of them failed.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
		IsSuccessful:     healthyDBError,
	}
}

// healthyDBError keeps errors that prove the database answered from
// counting against it: missing rows, canceled requests, constraint
// violations (class 23) and bad input (class 22).
func healthyDBError(err error) bool {
	if err == nil || errors.Is(err, sql.ErrNoRows) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 {
		class := pgErr.Code[:2]
		return class == "23" || class == "22"
	}
	return false
}

func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

// QueryContext returns gobreaker.ErrOpenState without touching the pool
// while the circuit is open.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer observe("query", time.Now())
	return Do(dcb.cb, func() (*sql.Rows, error) {
		return dcb.db.QueryContext(ctx, query, args...)
	})
}

func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer observe("exec", time.Now())
	return Do(dcb.cb, func() (sql.Result, error) {
		return dcb.db.ExecContext(ctx, query, args...)
	})
}

// QueryRowContext bypasses the breaker: *sql.Row defers its error to Scan.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer observe("query_row", time.Now())
	return dcb.db.QueryRowContext(ctx, query, args...)
}

// BeginTx goes through the breaker; statements on the returned *sql.Tx do not.
func (dcb *DBCircuitBreaker) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return Do(dcb.cb, func() (*sql.Tx, error) {
		return dcb.db.BeginTx(ctx, opts)
	})
}

func (dcb *DBCircuitBreaker) PingContext(ctx context.Context) error {
	return dcb.cb.Run(func() error {
		return dcb.db.PingContext(ctx)
	})
}

func (dcb *DBCircuitBreaker) State() gobreaker.State { return dcb.cb.State() }

func (dcb *DBCircuitBreaker) IsOpen() bool { return dcb.cb.IsOpen() }

// DB returns the unguarded pool, for migrations and tests.
func (dcb *DBCircuitBreaker) DB() *sql.DB { return dcb.db }

// Stats also publishes the pool gauges.
func (dcb *DBCircuitBreaker) Stats() sql.DBStats {
	stats := dcb.db.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	return stats
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}
