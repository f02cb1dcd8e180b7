// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `loader.go` calls `validateStruct` after it unmarshals the merged Koanf
// tree and resolves secrets.  Any failure aborts startup, so the binary never
// runs with partial, malformed, or missing configuration.
//
// Validation errors are flattened into one line naming every offending key
// in its koanf spelling (`database.max_connections`), which is what an
// operator greps for in the YAML.

package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return val
}

//
// public API
//

// validateStruct returns nil or an error listing every failed field.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "Config.database.port"; drop the root type name.
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, key+" failed "+rule)
	}
	return errors.New(strings.Join(parts, "; "))
}
