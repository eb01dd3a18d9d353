// internal/config/builder.go
//
// Snapshot → Descriptor.
//
// Context
// -------
// `Build` is a single pure transformation: one accessor call per field and
// nothing else.  It never fails; malformed integers fall back to their
// defaults inside the accessor.  `Resolve` adds the fail-fast invariant
// check from validator.go on top.

package config

import "github.com/yanizio/dbconf/internal/env"

// Option tunes Build, Validate, and Resolve.
type Option func(*options)

type options struct {
	requireCredentials bool
	onFallback         env.FallbackFunc
}

// RequireCredentials makes an empty DATABASE_PASSWORD a validation error.
func RequireCredentials() Option {
	return func(o *options) { o.requireCredentials = true }
}

// OnFallback observes malformed values replaced by their defaults.
func OnFallback(fn env.FallbackFunc) Option {
	return func(o *options) { o.onFallback = fn }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build assembles a Descriptor from src without validating it.
func Build(src env.Source, opts ...Option) Descriptor {
	o := collect(opts)

	var envOpts []env.Option
	if o.onFallback != nil {
		envOpts = append(envOpts, env.WithFallbackHook(o.onFallback))
	}
	e := env.New(src, envOpts...)

	return Descriptor{
		Client: ClientPostgres,
		Connection: Connection{
			Host:     e.String(KeyHost, DefaultHost),
			Port:     e.Int(KeyPort, DefaultPort),
			Database: e.String(KeyName, DefaultName),
			User:     e.String(KeyUsername, DefaultUsername),
			Password: e.String(KeyPassword, DefaultPassword),
			SSL: SSL{
				RejectUnauthorized: e.Bool(KeySSLRejectUnauth, DefaultSSLRejectUnauthorized),
			},
		},
		Pool: Pool{
			Min: e.Int(KeyPoolMin, DefaultPoolMin),
			Max: e.Int(KeyPoolMax, DefaultPoolMax),
		},
		AcquireConnectionTimeout: e.Int(KeyConnectionTimeout, DefaultAcquireConnectionTimeout),
		Debug:                    false,
	}
}

// Resolve builds and validates a Descriptor.  The Descriptor is returned
// even on error so callers can log what was rejected.
func Resolve(src env.Source, opts ...Option) (Descriptor, error) {
	d := Build(src, opts...)
	return d, Validate(d, opts...)
}
