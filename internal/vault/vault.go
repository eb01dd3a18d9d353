// internal/vault/vault.go
//
// Vault client wrapper for secret references.
//
// Context
// -------
//   - A configuration value of the form `vault:<mount>/<path>#<key>` names a
//     key inside a KV-v2 secret.  ParseRef splits it; Client.Resolve fetches
//     the plain value.
//   - Resolution happens once during boot, so there is no token-renewal loop
//     and no value cache.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(nil, log.Printf)          // during boot.
//  2. pw,  err := cli.Resolve(ctx, "vault:secret/db#password")
//
// Build tags: none.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// Prefix marks a value as a Vault reference.
const Prefix = "vault:"

// ErrInvalidRef is returned for references that do not match
// vault:<mount>/<path>#<key>.
var ErrInvalidRef = errors.New("invalid vault reference")

//
// SECTION 1.  References
//

// Ref is a parsed secret reference.
type Ref struct {
	Mount string
	Path  string
	Key   string
}

func (r Ref) String() string { return Prefix + r.Mount + "/" + r.Path + "#" + r.Key }

// IsRef reports whether s carries the vault: prefix.
func IsRef(s string) bool { return strings.HasPrefix(s, Prefix) }

// ParseRef splits vault:<mount>/<path>#<key>.  Every part is required.
func ParseRef(s string) (Ref, error) {
	if !IsRef(s) {
		return Ref{}, fmt.Errorf("%w: missing %q prefix", ErrInvalidRef, Prefix)
	}
	body := strings.TrimPrefix(s, Prefix)

	secretPath, key, ok := strings.Cut(body, "#")
	if !ok || key == "" {
		return Ref{}, fmt.Errorf("%w: missing #key", ErrInvalidRef)
	}

	mount, rel := splitMount(secretPath)
	if mount == "" || rel == "" {
		return Ref{}, fmt.Errorf("%w: want <mount>/<path>", ErrInvalidRef)
	}
	return Ref{Mount: mount, Path: rel, Key: key}, nil
}

//
// SECTION 2.  Client
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)
}

// New constructs a Vault client.  A nil cfg means vault.DefaultConfig()
// plus the standard environment.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token used for every read.
func New(cfg *vault.Config, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	if cfg == nil {
		cfg = vault.DefaultConfig()
		if err := cfg.ReadEnvironment(); err != nil {
			return nil, fmt.Errorf("vault env cfg: %w", err)
		}
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	return &Client{api: apiCli, logFn: logFn}, nil
}

// SetToken overrides the token picked up from the environment.
func (c *Client) SetToken(tok string) { c.api.SetToken(tok) }

// Resolve returns the plain string behind a vault: reference.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	sec, err := c.api.KVv2(r.Mount).Get(ctx, r.Path)
	if err != nil {
		return "", fmt.Errorf("vault get %s/%s: %w", r.Mount, r.Path, err)
	}

	raw, ok := sec.Data[r.Key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %s/%s", r.Key, r.Mount, r.Path)
	}

	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", r)
	}

	c.logFn("vault: resolved %s (version %d)", r, version(sec))
	return sval, nil
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	p = strings.Trim(p, "/")
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

func version(sec *vault.KVSecret) int {
	if sec == nil || sec.VersionMetadata == nil {
		return 0
	}
	return sec.VersionMetadata.Version
}
