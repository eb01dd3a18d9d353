package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanizio/dbconf/internal/vault"
)

// ErrNoSecretResolver is returned when the password is a vault: reference
// but no resolver was configured.
var ErrNoSecretResolver = errors.New("password is a vault reference but no resolver is configured")

// SecretResolver turns a reference such as vault:secret/db#password into
// its plain value.  *vault.Client implements it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// HasSecretRef reports whether d's password must be resolved first.
func HasSecretRef(d Descriptor) bool { return vault.IsRef(d.Connection.Password) }

// ResolveSecrets returns a copy of d whose password reference has been
// replaced by the secret value.  Plain passwords pass through untouched.
func ResolveSecrets(ctx context.Context, d Descriptor, r SecretResolver) (Descriptor, error) {
	if !HasSecretRef(d) {
		return d, nil
	}
	if r == nil {
		return d, ErrNoSecretResolver
	}

	pw, err := r.Resolve(ctx, d.Connection.Password)
	if err != nil {
		return d, fmt.Errorf("resolve %s: %w", KeyPassword, err)
	}
	return d.WithPassword(pw), nil
}
