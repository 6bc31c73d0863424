// Package config loads an optional linotype.toml (SPEC_FULL.md §1.2) via
// BurntSushi/toml, overlaying documented defaults. No config file is
// required: a missing path simply yields Default().
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables the core needs that spec.md leaves as
// implementation-defined: default line height, tab stop width, wrap mode,
// and the async updater's quantum/tick parameters (§4.7).
type Config struct {
	DefaultLineHeight int    `toml:"default_line_height"`
	TabStopWidth      int    `toml:"tab_stop_width"`
	WrapMode          string `toml:"wrap_mode"` // "char" | "word" | "none"
	Justify           string `toml:"justify"`   // "left" | "right" | "center"
	QuantumUnits      int    `toml:"quantum_units"`
	TickIntervalMS    int    `toml:"tick_interval_ms"`
	LogPath           string `toml:"log_path"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		DefaultLineHeight: 1,
		TabStopWidth:      8,
		WrapMode:          "word",
		Justify:           "left",
		QuantumUnits:      256,
		TickIntervalMS:    1,
		LogPath:           "linotype.log",
	}
}

// Load reads path, overlaying any fields it sets onto Default(). A path
// that does not exist is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
