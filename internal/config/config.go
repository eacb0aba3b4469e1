package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appName = "smartbill"

// Config holds process-level settings. User-facing tunables such as the
// default hourly rate live in the store's settings table instead.
type Config struct {
	DB       DBConfig  `yaml:"db"`
	Log      LogConfig `yaml:"log"`
	Timezone string    `yaml:"timezone"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		DB: DBConfig{
			Path: filepath.Join(xdg.DataHome, appName, appName+".db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, then a YAML file, then
// environment variables. An explicit path must exist; otherwise
// SMARTBILL_CONFIG or the XDG config file is used when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SMARTBILL_CONFIG")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	} else if found, err := xdg.SearchConfigFile(filepath.Join(appName, "config.yaml")); err == nil {
		if err := loadFromFile(found, &cfg); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("SMARTBILL_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("SMARTBILL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SMARTBILL_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("SMARTBILL_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location is the zone used for calendar-day bucketing. Empty means the
// process's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
