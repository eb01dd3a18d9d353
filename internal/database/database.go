// Package database turns a resolved config.Descriptor into live connection
// pools.  Two flavours are offered:
//
//	OpenPool(ctx, d)  – pgxpool, the primary pool manager.
//	Open(ctx, d)      – *sqlx.DB over the pgx stdlib driver, for callers
//	                    written against database/sql.
//
// Both apply the descriptor's pool bounds and ping the database before
// returning so callers can fail fast during bootstrap.  The ping, like every
// acquisition through Acquire, waits at most d.AcquireTimeout().  A zero
// timeout means "bounded by ctx only".
package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/dbconf/internal/config"
)

// DriverName is the database/sql driver registered by pgx/v5/stdlib.
const DriverName = "pgx"

// connMaxLifetime caps how long database/sql reuses one connection.
const connMaxLifetime = 30 * time.Minute

var (
	// ErrAcquireTimeout reports that no connection became available within
	// the descriptor's acquire timeout.
	ErrAcquireTimeout = errors.New("timed out acquiring a pooled connection")

	// ErrEmptyPool rejects descriptors whose upper bound cannot hold a
	// single connection.
	ErrEmptyPool = errors.New("pool max must be at least 1")

	// ErrPoolTooLarge rejects bounds that do not fit pgxpool's int32 sizes.
	ErrPoolTooLarge = errors.New("pool bounds exceed int32")
)

// ConnString renders d as a postgres:// URL with escaped credentials and
// the sslmode derived from the TLS policy.  Pool bounds are applied on the
// pool objects, not in the URL.
func ConnString(d config.Descriptor) string {
	c := d.Connection
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode())
	u.RawQuery = q.Encode()
	return u.String()
}

//
// pgxpool
//

// PoolConfig builds the pgxpool configuration without connecting.
func PoolConfig(d config.Descriptor) (*pgxpool.Config, error) {
	if d.Pool.Max < 1 {
		return nil, ErrEmptyPool
	}
	if d.Pool.Max > math.MaxInt32 || d.Pool.Min > math.MaxInt32 {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrPoolTooLarge, d.Pool.Min, d.Pool.Max)
	}
	cfg, err := pgxpool.ParseConfig(ConnString(d))
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	cfg.MinConns = int32(d.Pool.Min)
	cfg.MaxConns = int32(d.Pool.Max)

	if d.Debug {
		cfg.ConnConfig.Tracer = newTracer(zap.S())
	}
	return cfg, nil
}

// OpenPool creates the pool and verifies connectivity.
func OpenPool(ctx context.Context, d config.Descriptor) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(d)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := Ping(ctx, pool, d); err != nil {
		pool.Close()
		return nil, err
	}

	zap.S().Infow("database pool online",
		"host", d.Connection.Host,
		"database", d.Connection.Database,
		"pool_min", d.Pool.Min,
		"pool_max", d.Pool.Max,
	)
	return pool, nil
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks connectivity within the acquire timeout.
func Ping(ctx context.Context, p Pinger, d config.Descriptor) error {
	_, err := withAcquireTimeout(ctx, d.AcquireTimeout(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.Ping(ctx)
	})
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Acquirer is satisfied by *pgxpool.Pool.
type Acquirer interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
}

// Acquire checks a connection out of pool, waiting at most
// d.AcquireTimeout().  Callers must Release the returned connection.
func Acquire(ctx context.Context, pool Acquirer, d config.Descriptor) (*pgxpool.Conn, error) {
	return withAcquireTimeout(ctx, d.AcquireTimeout(), pool.Acquire)
}

//
// database/sql + sqlx
//

// Open returns a *sqlx.DB sized by the descriptor's pool bounds.
func Open(ctx context.Context, d config.Descriptor) (*sqlx.DB, error) {
	if d.Pool.Max < 1 {
		return nil, ErrEmptyPool
	}
	db, err := sqlx.Open(DriverName, ConnString(d))
	if err != nil {
		return nil, err
	}
	return configure(ctx, db, d)
}

// configure applies pool bounds and pings.  The handle is closed on error.
func configure(ctx context.Context, db *sqlx.DB, d config.Descriptor) (*sqlx.DB, error) {
	db.SetMaxOpenConns(d.Pool.Max)
	db.SetMaxIdleConns(d.Pool.Min)
	db.SetConnMaxLifetime(connMaxLifetime)

	_, err := withAcquireTimeout(ctx, d.AcquireTimeout(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

//
// helpers
//

// withAcquireTimeout runs fn under a deadline of timeout (none when zero)
// and maps an elapsed deadline to ErrAcquireTimeout.  Cancellation of the
// parent ctx is reported as-is.
func withAcquireTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	actx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		actx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	v, err := fn(actx)
	if err != nil && ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		var zero T
		return zero, fmt.Errorf("%w after %s: %v", ErrAcquireTimeout, timeout, err)
	}
	return v, err
}
