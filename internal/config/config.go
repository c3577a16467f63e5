package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"code.selman.me/uniqname/locale"
)

type Config struct {
	Naming    NamingConfig   `toml:"naming"`
	Templates []locale.Entry `toml:"templates"`
}

type NamingConfig struct {
	// Locale selects the template; empty means detect from the environment.
	Locale string `toml:"locale"`
	Start  int    `toml:"start"`
	// AlwaysNumber forces a serial number for this name; empty disables it.
	AlwaysNumber string `toml:"always_number"`
}

func Default() *Config {
	return &Config{
		Naming: NamingConfig{
			Start: 1,
		},
	}
}

func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("config: unknown key", "path", path, "key", key.String())
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Naming.Start < 0 {
		cfg.Naming.Start = 0
	}
}

func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "uniqname", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "uniqname", "config.toml"), nil
}
