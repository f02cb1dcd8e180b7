// internal/config/loader.go
//
// Layered configuration loader.
//
/*
Context
--------
`Load()` builds one `Config` from these layers (highest precedence last):

  1. Optional `<root>/.env`, exported to the process environment.  Values
     already present in the environment win over the file.
  2. `conf/defaults.yaml`, mandatory.  A missing base file is fatal.
  3. `conf/<env>.yaml`, optional.  Silently skipped when absent.  `<env>`
     comes from Options.Env, then APP_ENV, then "development".
  4. Environment variables prefixed `APP__`, `DATABASE__`, and `LOGGING__`.
     `__` is the nested-key separator and names are lower-cased, so
     `DATABASE__MAX_CONNECTIONS → database.max_connections`.

Later layers replace identical leaf keys.  YAML maps overlay key-by-key, so
an override file may carry a single `database.host` and keep the rest.

After merging, the tree is unmarshalled into strongly-typed structs, secret
references are resolved, and the result is validated.  The loader runs once
at startup; there is no package-level cache and no reload.

Instrumentation
---------------
  • DEBUG spans  – root discovery, each layer read or skipped.
  • ERROR spans  – every failure, with the failing stage.
  • INFO  span   – final "config loaded" with non-secret highlights.
  • Logs use the global sugared logger (`zap.S()`); cmd/web installs a
    bootstrap console logger before calling Load.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/defaults.yaml`,
    so `go run ./cmd/web` works from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	baseFile   = "defaults.yaml"
	defaultEnv = "development"
	vaultRef   = "vault:"
)

// envPrefixes are the three sections that may be overridden from the
// environment.  Each prefix ends with the nested-key separator.
var envPrefixes = []string{"APP__", "DATABASE__", "LOGGING__"}

/*──────────────────────────── public types ─────────────────────────────────*/

// Options tunes Load.  The zero value discovers the root, reads APP_ENV, and
// refuses `vault:` references.
type Options struct {
	Root    string         // directory holding conf/; discovered when empty
	Env     string         // override layer name; APP_ENV or "development" when empty
	Secrets SecretResolver // optional; required only for `vault:` values
}

// SecretResolver turns a `vault:` reference into a plain value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Error reports which stage of Load failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "config: " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves APP_ROOT or climbs directories until conf/defaults.yaml
// is found.  Falls back to the executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("APP_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", baseFile)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges every layer, resolves secrets, validates, and returns Config.
func Load(ctx context.Context, opts Options) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = rootDir()
	}

	// .env (optional, no error if missing).  Loaded first so it may set
	// APP_ENV.
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil {
		zap.S().Debugw("config .env skipped", "err", err)
	}

	envName := opts.Env
	if envName == "" {
		envName = os.Getenv("APP_ENV")
	}
	if envName == "" {
		envName = defaultEnv
	}
	zap.S().Debugw("config root resolved", "root", root, "env", envName)

	k := koanf.New(".")

	basePath := filepath.Join(root, "conf", baseFile)
	if err := k.Load(file.Provider(basePath), yaml.Parser()); err != nil {
		return nil, fail("read base", err, "file", basePath)
	}
	zap.S().Debugw("config base loaded", "file", basePath)

	overridePath := filepath.Join(root, "conf", envName+".yaml")
	switch _, err := os.Stat(overridePath); {
	case err == nil:
		if err := k.Load(file.Provider(overridePath), yaml.Parser()); err != nil {
			return nil, fail("read override", err, "file", overridePath)
		}
		zap.S().Debugw("config override loaded", "file", overridePath)
	case errors.Is(err, fs.ErrNotExist):
		zap.S().Debugw("config override absent", "file", overridePath)
	default:
		return nil, fail("stat override", err, "file", overridePath)
	}

	// Env overrides: DATABASE__MAX_CONNECTIONS → database.max_connections
	for _, prefix := range envPrefixes {
		if err := k.Load(env.Provider(prefix, ".", envKey), nil); err != nil {
			return nil, fail("env overlay", err, "prefix", prefix)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fail("unmarshal", err)
	}
	cfg.Paths = Paths{Root: root, Env: envName}

	if err := resolveSecrets(ctx, &cfg, opts.Secrets); err != nil {
		return nil, fail("resolve secrets", err)
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, fail("validate", err)
	}

	zap.S().Infow("config loaded",
		"env", envName,
		"version", cfg.App.Version,
		"listen", cfg.App.Host,
		"port", cfg.App.Port,
		"driver", cfg.Database.Driver,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// envKey maps an environment variable name onto a koanf path.
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// resolveSecrets swaps `vault:` references for their values.
func resolveSecrets(ctx context.Context, cfg *Config, r SecretResolver) error {
	ref := cfg.Database.Password
	if !strings.HasPrefix(ref, vaultRef) {
		return nil
	}
	if r == nil {
		return errors.New("database.password is a vault reference but no secret resolver is configured")
	}
	val, err := r.Resolve(ctx, strings.TrimPrefix(ref, vaultRef))
	if err != nil {
		return err
	}
	cfg.Database.Password = val
	return nil
}

func fail(op string, err error, kv ...any) *Error {
	zap.S().Errorw("config "+op+" failed", append(kv, "err", err)...)
	return &Error{Op: op, Err: err}
}
