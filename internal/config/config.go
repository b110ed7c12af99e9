// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

// Package config loads server configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the telnet listener address.
	ListenAddr string `koanf:"listen-addr"`
	// MetricsAddr is the observability HTTP address. Empty disables it.
	MetricsAddr string `koanf:"metrics-addr"`
	// DataFile is the world snapshot path.
	DataFile string `koanf:"data-file"`
	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log-format"`
	// LogFile, when set, routes logs to a rotated file instead of stderr.
	LogFile string `koanf:"log-file"`
	// AutosaveInterval is how often the world is snapshotted to disk.
	AutosaveInterval time.Duration `koanf:"autosave-interval"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		ListenAddr:       ":4201",
		MetricsAddr:      "127.0.0.1:9100",
		DataFile:         "world.json",
		LogFormat:        "json",
		AutosaveInterval: time.Minute,
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (if non-empty), then any changed flags in flags (if non-nil).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.With("path", path).Wrapf(err, "load config file")
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Wrapf(err, "load flags")
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Wrapf(err, "unmarshal config")
	}
	return cfg, nil
}
