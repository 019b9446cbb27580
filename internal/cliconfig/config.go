// Package cliconfig loads the optional witchql.toml configuration file
// via viper (which decodes the file with its own TOML codec), and decodes
// inline TOML strings with BurntSushi/toml.
package cliconfig

import (
	"fmt"

	toml "github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config holds the CLI's configurable defaults.
type Config struct {
	SeedPath       string `mapstructure:"seed_path" toml:"seed_path"`
	ReplStyle      string `mapstructure:"repl_style" toml:"repl_style"`
	DefaultStorage string `mapstructure:"default_storage" toml:"default_storage"`
}

// Default returns the built-in defaults used when no config file is
// present.
func Default() *Config {
	return &Config{
		ReplStyle:      "color",
		DefaultStorage: "main",
	}
}

// Load reads path as TOML into a Config, falling back to Default() for
// any field the file doesn't set. An absent path is not an error: the
// caller gets Default() back.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeTOMLString decodes an inline TOML string directly via
// BurntSushi/toml, falling back to Default() for any field the string
// doesn't set. The CLI itself only reads config from a file (Load).
func DecodeTOMLString(s string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(s, cfg); err != nil {
		return nil, fmt.Errorf("decoding inline config: %w", err)
	}
	return cfg, nil
}
