// internal/config/model.go
//
// Typed connection descriptor.
//
// Context
// -------
// These structs are the single output of the resolver.  `Build` fills every
// field from an environment snapshot, `Validate` enforces the invariants, and
// the result is handed by value to the pool layer (`internal/database`).
// Nothing mutates a Descriptor after construction; helpers that "change" a
// field return a copy.
//
// Notes
// -----
//   • Validation rules live in `validate` struct tags and are interpreted by
//     go-playground/validator in validator.go.
//   • The password is redacted from String() and Fields() so descriptors can
//     be logged safely.

package config

import (
	"fmt"
	"time"
)

// ClientKind identifies the database engine variant.
type ClientKind string

// ClientPostgres is the only engine this resolver describes.
const ClientPostgres ClientKind = "postgres"

// redacted replaces non-empty secrets in logs and String().
const redacted = "******"

//
// Connection section
//

// SSL holds the TLS policy.
type SSL struct {
	// RejectUnauthorized refuses server certificates that cannot be verified.
	RejectUnauthorized bool
}

// Connection holds endpoint and credentials.
type Connection struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Database string `validate:"required"`
	User     string `validate:"required"`
	Password string // may be empty
	SSL      SSL
}

//
// Pool section
//

// Pool holds the bounds handed to the pool manager.  pgxpool sizes are
// int32, hence the upper limit.
type Pool struct {
	Min int `validate:"gte=0,lte=2147483647"`
	Max int `validate:"gtefield=Min,lte=2147483647"`
}

//
// Root aggregate
//

// Descriptor is the immutable result of resolving all DATABASE_* keys.
type Descriptor struct {
	Client     ClientKind
	Connection Connection
	Pool       Pool

	// AcquireConnectionTimeout is in milliseconds.
	AcquireConnectionTimeout int `validate:"gte=0"`

	// Debug is always false; no variable backs it.
	Debug bool
}

// AcquireTimeout converts AcquireConnectionTimeout to a Duration.
func (d Descriptor) AcquireTimeout() time.Duration {
	return time.Duration(d.AcquireConnectionTimeout) * time.Millisecond
}

// SSLMode maps the TLS policy to a libpq sslmode.  TLS is always used;
// only certificate verification depends on RejectUnauthorized.
func (d Descriptor) SSLMode() string {
	if d.Connection.SSL.RejectUnauthorized {
		return "verify-full"
	}
	return "require"
}

// WithPassword returns a copy of d carrying pw.
func (d Descriptor) WithPassword(pw string) Descriptor {
	d.Connection.Password = pw
	return d
}

// String renders d with the password redacted.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s://%s@%s:%d/%s?sslmode=%s&pool=%d..%d&acquire_timeout=%s&password=%s",
		d.Client, d.Connection.User, d.Connection.Host, d.Connection.Port,
		d.Connection.Database, d.SSLMode(), d.Pool.Min, d.Pool.Max,
		d.AcquireTimeout(), redact(d.Connection.Password))
}

// Fields returns zap sugared key/value pairs, password redacted.
func (d Descriptor) Fields() []any {
	return []any{
		"client", string(d.Client),
		"host", d.Connection.Host,
		"port", d.Connection.Port,
		"database", d.Connection.Database,
		"user", d.Connection.User,
		"password", redact(d.Connection.Password),
		"ssl_reject_unauthorized", d.Connection.SSL.RejectUnauthorized,
		"pool_min", d.Pool.Min,
		"pool_max", d.Pool.Max,
		"acquire_timeout_ms", d.AcquireConnectionTimeout,
		"debug", d.Debug,
	}
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
