// internal/config/loader.go
//
// Environment snapshot loader.
//
/*
Context
--------
`Load()` builds one immutable `Descriptor` from three layers (highest
precedence last):

  1. Optional dotenv file, read with `godotenv.Read` so the process
     environment is never mutated.
  2. Optional YAML file with flat `DATABASE_*` keys.  Scalars keep their
     source text (see rawYAML).
  3. Process variables prefixed `DATABASE_` (or `LoadOptions.Environ` when
     a caller supplies its own list, as tests do).

Only `DATABASE_*` keys survive the merge.  The snapshot is resolved and
validated, then cached in an `atomic.Pointer` for lock-free reads.  There
is no reload; the descriptor lives for the whole process.

Instrumentation
---------------
  • WARN  span  – one per malformed value that fell back to its default.
  • ERROR spans – dotenv read, YAML parse, env overlay, validation failures.
  • INFO  span  – final "config loaded" with every field, password redacted.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	kenv "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/dbconf/internal/env"
	"github.com/yanizio/dbconf/internal/metrics"
)

var current atomic.Pointer[Descriptor]

// LoadOptions selects the snapshot layers.  Empty paths skip a layer.
type LoadOptions struct {
	EnvFile  string
	YAMLFile string

	// Environ replaces the process environment when non-nil.
	Environ []string

	RequireCredentials bool
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load snapshots the layers, resolves, validates, and caches a Descriptor.
func Load(opts LoadOptions) (Descriptor, error) {
	src, err := Snapshot(opts)
	if err != nil {
		metrics.ConfigLoadErrorsTotal.Inc()
		zap.S().Errorw("config snapshot failed", "err", err)
		return Descriptor{}, err
	}

	ropts := []Option{OnFallback(func(key, raw string, kind env.Kind) {
		metrics.ConfigFallbackTotal.WithLabelValues(key).Inc()
		zap.S().Warnw("config value malformed, using default",
			"key", key, "value", raw, "kind", kind.String())
	})}
	if opts.RequireCredentials {
		ropts = append(ropts, RequireCredentials())
	}

	d, err := Resolve(src, ropts...)
	if err != nil {
		metrics.ConfigLoadErrorsTotal.Inc()
		zap.S().Errorw("config validation failed", "err", err)
		return d, err
	}

	current.Store(&d)
	zap.S().Infow("config loaded", d.Fields()...)
	return d, nil
}

// Get returns the cached Descriptor and whether Load has succeeded.
func Get() (Descriptor, bool) {
	p := current.Load()
	if p == nil {
		return Descriptor{}, false
	}
	return *p, true
}

/*──────────────────────────── snapshot layers ─────────────────────────────*/

// Snapshot merges the configured layers into one Source.
func Snapshot(opts LoadOptions) (env.Source, error) {
	dotenv, err := readDotenv(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	yml, err := readYAML(opts.YAMLFile)
	if err != nil {
		return nil, err
	}

	var proc env.Source
	if opts.Environ != nil {
		proc = withPrefix(env.FromEnviron(opts.Environ))
	} else if proc, err = readProcess(); err != nil {
		return nil, err
	}

	return env.Merge(dotenv, yml, proc), nil
}

func readDotenv(path string) (env.Source, error) {
	if path == "" {
		return nil, nil
	}
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.S().Debugw("config dotenv absent", "file", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dotenv %s: %w", path, err)
	}
	zap.S().Debugw("config dotenv loaded", "file", path, "keys", len(vals))
	return withPrefix(vals), nil
}

func readYAML(path string) (env.Source, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		zap.S().Debugw("config yaml absent", "file", path)
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), rawYAMLParser()); err != nil {
		return nil, fmt.Errorf("load yaml %s: %w", path, err)
	}
	zap.S().Debugw("config yaml loaded", "file", path)
	return withPrefix(flatten(k)), nil
}

func readProcess() (env.Source, error) {
	k := koanf.New(".")
	if err := k.Load(kenv.Provider(KeyPrefix, ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}
	return flatten(k), nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// flatten renders every koanf leaf as a string, the same shape a process
// environment has.
func flatten(k *koanf.Koanf) env.Source {
	src := make(env.Source)
	for _, key := range k.Keys() {
		src[key] = k.String(key)
	}
	return src
}

func withPrefix(m map[string]string) env.Source {
	src := make(env.Source, len(m))
	for k, v := range m {
		if strings.HasPrefix(k, KeyPrefix) {
			src[k] = v
		}
	}
	return src
}
