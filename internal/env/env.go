// internal/env/env.go
//
// Typed reads over an explicit environment snapshot.
//
// Context
// -------
// The connection resolver never touches `os.Getenv` directly.  Callers take
// one snapshot (a plain map) at startup and hand it to an Accessor, so tests
// can build a Source literal instead of mutating the process environment.
//
// Parsing rules
// -------------
//   - String  present → raw value (an empty string is still "present").
//   - Int     present and base-10 parsable → value, otherwise the default.
//   - Bool    present → raw == "true", absent → default.  Nothing else is
//     truthy, not even "TRUE" or "1".
//
// Malformed input is never an error.  An optional hook lets the caller count
// or log the fallback.
package env

import (
	"os"
	"strconv"
	"strings"
)

// TrueLiteral is the only value Bool treats as true.
const TrueLiteral = "true"

// Kind names the semantic type requested from an Accessor.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Source is an environment snapshot keyed by variable name.
type Source map[string]string

// FromEnviron parses KEY=VALUE pairs as returned by os.Environ.  Entries
// without '=' are skipped; a later duplicate replaces an earlier one.
func FromEnviron(environ []string) Source {
	src := make(Source, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		src[k] = v
	}
	return src
}

// FromProcess snapshots the current process environment.
func FromProcess() Source { return FromEnviron(os.Environ()) }

// Merge returns a new Source with later layers overriding earlier ones.
func Merge(layers ...Source) Source {
	out := make(Source)
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// FallbackFunc observes a present value that failed to parse.
type FallbackFunc func(key, raw string, kind Kind)

// Option configures an Accessor.
type Option func(*Accessor)

// WithFallbackHook installs fn as the malformed-value observer.
func WithFallbackHook(fn FallbackFunc) Option {
	return func(a *Accessor) { a.onFallback = fn }
}

// Accessor reads typed values from a Source.  It holds no mutable state
// beyond the snapshot reference and is safe for concurrent reads.
type Accessor struct {
	src        Source
	onFallback FallbackFunc
}

// New returns an Accessor over src.  A nil src behaves as empty.
func New(src Source, opts ...Option) *Accessor {
	a := &Accessor{src: src}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lookup returns the raw value and whether the key is present.
func (a *Accessor) Lookup(key string) (string, bool) {
	v, ok := a.src[key]
	return v, ok
}

// String returns the raw value, or def when key is absent.
func (a *Accessor) String(key, def string) string {
	if v, ok := a.Lookup(key); ok {
		return v
	}
	return def
}

// Int returns the base-10 value of key, or def when absent or malformed.
func (a *Accessor) Int(key string, def int) int {
	raw, ok := a.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		a.fallback(key, raw, KindInt)
		return def
	}
	return n
}

// Bool reports raw == "true" when key is present, or def when absent.
func (a *Accessor) Bool(key string, def bool) bool {
	raw, ok := a.Lookup(key)
	if !ok {
		return def
	}
	return raw == TrueLiteral
}

func (a *Accessor) fallback(key, raw string, kind Kind) {
	if a.onFallback != nil {
		a.onFallback(key, raw, kind)
	}
}
