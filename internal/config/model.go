// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the tree that `loader.go` builds from
// four overlay layers:
//
//   • optional `.env`                      – dotenv values exported to the env,
//   • `conf/defaults.yaml`                 – mandatory base, every key present,
//   • `conf/<env>.yaml`                    – optional partial override,
//   • `APP__`, `DATABASE__`, `LOGGING__`   – environment, highest precedence.
//
// A `database.password` that begins with `vault:` is resolved through a
// SecretResolver before validation, so the model never hands a Vault URI to
// the driver.
//
// Validation happens immediately after unmarshal; the process fails fast if
// a required field is missing or out of range.  No field has a code default.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// App section
//

// App holds listener and build metadata.
type App struct {
	Host            string        `koanf:"host"             validate:"required,ip|hostname"`
	Version         string        `koanf:"version"          validate:"required"`
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,gt=0"`
}

//
// Database section
//

// Supported values for Database.Driver.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Database holds connection parameters for the primary store.
//
// `Password` may be a literal or a `vault:<mount>/<path>#<key>` reference.
// Use ConnectionURL to dial and MaskedConnectionURL to log.
type Database struct {
	Driver         string `koanf:"driver"          validate:"required,oneof=postgres mysql"`
	Host           string `koanf:"host"            validate:"required"`
	Port           int    `koanf:"port"            validate:"required,min=1,max=65535"`
	Name           string `koanf:"name"            validate:"required"`
	User           string `koanf:"user"            validate:"required"`
	Password       string `koanf:"password"        validate:"required"`
	MaxConnections int    `koanf:"max_connections" validate:"required,min=1"`
}

//
// Logging section
//

// Logging selects verbosity and encoder.  Level and Format are free strings;
// LevelFilter and IsStructuredFormat interpret them leniently.
type Logging struct {
	Level  string `koanf:"level"  validate:"required"`
	Format string `koanf:"format" validate:"required"`
	File   string `koanf:"file"` // optional rotating file sink
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // APP_ROOT or discovered parent
	Env  string // override layer name, e.g. "development"
}

//
// Root aggregate
//

// Config is the aggregate returned by Load.  It is built once at startup and
// passed by pointer to every consumer, which must treat it as read-only.
type Config struct {
	App      App      `koanf:"app"`
	Database Database `koanf:"database"`
	Logging  Logging  `koanf:"logging"`
	Paths    Paths    `koanf:"-"`
}
