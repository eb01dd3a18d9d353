// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Resolve` calls `Validate` right after `Build`.  Any violation aborts
// startup with a *ConfigError per offending variable, so a bad pool bound
// surfaces here instead of as a confusing pool-manager failure later.
//
// Rules come from the `validate` tags in model.go:
//
//   • host, database, user       required,
//   • port                       1..65535,
//   • pool min                   ≥ 0,
//   • pool max                   ≥ pool min,
//   • acquire timeout            ≥ 0.
//
// `RequireCredentials()` adds a non-empty password check.

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// error type
//

// ConfigError describes one rejected variable.
type ConfigError struct {
	Key   string // environment variable, e.g. DATABASE_POOL_MAX
	Value any
	Rule  string // human-readable constraint
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Key, e.Value, e.Rule)
}

//
// public API
//

// Validate returns nil or the joined *ConfigError values for d.
func Validate(d Descriptor, opts ...Option) error {
	o := collect(opts)

	var errs []error
	if err := v.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate descriptor: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, toConfigError(d, fe))
		}
	}

	if o.requireCredentials && d.Connection.Password == "" {
		errs = append(errs, &ConfigError{
			Key:  KeyPassword,
			Rule: "must not be empty when credentials are required",
		})
	}
	return errors.Join(errs...)
}

func toConfigError(d Descriptor, fe validator.FieldError) *ConfigError {
	key, ok := fieldKeys[fe.StructNamespace()]
	if !ok {
		key = fe.StructNamespace()
	}
	return &ConfigError{Key: key, Value: fe.Value(), Rule: ruleText(d, fe)}
}

func ruleText(d Descriptor, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min", "max":
		return "must be between 1 and 65535"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "gtefield":
		return fmt.Sprintf("must be >= %s (%d)", KeyPoolMin, d.Pool.Min)
	default:
		return "fails " + fe.Tag()
	}
}
