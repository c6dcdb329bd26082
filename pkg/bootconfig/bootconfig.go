// Package bootconfig turns the embedded catalog TOML into a
// types.Config. It is the one place in the module that knows TOML is
// the wire format; everything downstream only ever sees types.Config.
package bootconfig

import (
	"embed"

	"github.com/BurntSushi/toml"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/types"
)

//go:embed config.toml
var embedded embed.FS

// ConfigFileName is the embedded catalog's filename within this package.
const ConfigFileName = "config.toml"

// Load decodes the embedded config.toml into a types.Config.
func Load() (types.Config, error) {
	data, err := embedded.ReadFile(ConfigFileName)
	if err != nil {
		return types.Config{}, &errs.ConfigError{Field: ConfigFileName, Err: err}
	}
	return Decode(data)
}

// Decode parses raw TOML bytes into a types.Config; exported so tests and
// alternate entry points (e.g. an --config override) can bypass the
// embed.FS and feed arbitrary bytes.
func Decode(data []byte) (types.Config, error) {
	var config types.Config
	if _, err := toml.Decode(string(data), &config); err != nil {
		return types.Config{}, &errs.ConfigError{Field: ConfigFileName, Err: err}
	}
	return config, nil
}
