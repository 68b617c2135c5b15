// Package config loads optional compiler-wide settings from a TOML
// file: a handful of tunables layered on top of hard-coded defaults,
// rather than a required configuration system.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Settings holds the tunables a deployment of the pipeline may want to
// override: optimizer participation, the legacy scope-resolution
// fallback, and the parameter stack bound.
type Settings struct {
	// Optimize enables the peephole optimizer pass before printing
	// optimized TAC / target code and before interpretation.
	Optimize bool `toml:"optimize"`

	// PreserveDynamicScopeFallback keeps the interpreter's legacy
	// newest-to-oldest frame search for unresolved names. On by
	// default.
	PreserveDynamicScopeFallback bool `toml:"preserve_dynamic_scope_fallback"`

	// MaxParamStackDepth bounds the process-wide parameter stack as a
	// guard against runaway argument pushes in malformed hand-built
	// TAC; 0 means unbounded.
	MaxParamStackDepth int `toml:"max_param_stack_depth"`
}

// Default returns the settings the CLI uses when no config file is
// given: optimizer on, legacy dynamic-scope fallback preserved, no
// param stack bound.
func Default() Settings {
	return Settings{
		Optimize:                     true,
		PreserveDynamicScopeFallback: true,
	}
}

// Load reads Settings from a TOML file at path, starting from Default
// and overriding only the keys present in the file.
func Load(path string) (Settings, error) {
	s := Default()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, errors.Wrapf(err, "loading config %q", path)
	}
	return s, nil
}
