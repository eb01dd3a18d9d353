package config

// Recognised environment variables.
const (
	KeyHost              = "DATABASE_HOST"
	KeyPort              = "DATABASE_PORT"
	KeyName              = "DATABASE_NAME"
	KeyUsername          = "DATABASE_USERNAME"
	KeyPassword          = "DATABASE_PASSWORD"
	KeySSLRejectUnauth   = "DATABASE_SSL_REJECT_UNAUTHORIZED"
	KeyPoolMin           = "DATABASE_POOL_MIN"
	KeyPoolMax           = "DATABASE_POOL_MAX"
	KeyConnectionTimeout = "DATABASE_CONNECTION_TIMEOUT"

	// KeyPrefix selects the process variables the loader snapshots.
	KeyPrefix = "DATABASE_"
)

// Fallbacks used when a variable is absent (or, for integers, malformed).
const (
	DefaultHost                     = "db.[YOUR-PROJECT-REF].supabase.co"
	DefaultPort                     = 6543
	DefaultName                     = "postgres"
	DefaultUsername                 = "postgres"
	DefaultPassword                 = ""
	DefaultSSLRejectUnauthorized    = false
	DefaultPoolMin                  = 2
	DefaultPoolMax                  = 10
	DefaultAcquireConnectionTimeout = 60000
)

// fieldKeys maps validator struct namespaces back to the variable that
// feeds each field, so errors name what an operator can actually change.
var fieldKeys = map[string]string{
	"Descriptor.Connection.Host":          KeyHost,
	"Descriptor.Connection.Port":          KeyPort,
	"Descriptor.Connection.Database":      KeyName,
	"Descriptor.Connection.User":          KeyUsername,
	"Descriptor.Connection.Password":      KeyPassword,
	"Descriptor.Pool.Min":                 KeyPoolMin,
	"Descriptor.Pool.Max":                 KeyPoolMax,
	"Descriptor.AcquireConnectionTimeout": KeyConnectionTimeout,
}
