package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"promptstudio/internal/client"
)

const defaultServerURL = "http://localhost:8080"

// studioConfig is read from ~/.config/promptstudio/config.toml when present.
type studioConfig struct {
	Server              string `toml:"server"`
	OutputDir           string `toml:"output_dir"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
}

func defaultConfig() studioConfig {
	return studioConfig{
		Server:              defaultServerURL,
		OutputDir:           ".",
		PollIntervalSeconds: int(client.DefaultPollInterval / time.Second),
	}
}

func defaultConfigPath() (string, error) {
	return expandPath("~/.config/promptstudio/config.toml")
}

// loadConfig layers defaults, the TOML file and STUDIO_* environment
// variables. An explicit path must exist; the default one is optional.
func loadConfig(path string) (studioConfig, error) {
	cfg := defaultConfig()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return cfg, err
		}
	}
	resolved, err := expandPath(path)
	if err != nil {
		return cfg, err
	}

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("open config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv("STUDIO_SERVER")); v != "" {
		cfg.Server = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDIO_OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}

	return cfg, cfg.normalize()
}

func (c *studioConfig) normalize() error {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	if c.Server == "" {
		c.Server = defaultServerURL
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = "."
	}
	dir, err := expandPath(c.OutputDir)
	if err != nil {
		return err
	}
	c.OutputDir = dir
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("poll_interval_seconds must not be negative, got %d", c.PollIntervalSeconds)
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = int(client.DefaultPollInterval / time.Second)
	}
	return nil
}

func (c studioConfig) pollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
