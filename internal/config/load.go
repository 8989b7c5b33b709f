package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwangiiharun/hermes/internal/platform"
)

// Load reads and parses the config at path. A missing file yields the
// defaults.
func Load(ctx context.Context, path string, detector platform.Detector) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return NewParser(detector).ParseString(ctx, string(data))
}

// ResolvePath picks the config file: an explicit flag value, then
// $HERMES_CONFIG, then $XDG_CONFIG_HOME/hermes/hermes.lua, then
// ~/.config/hermes/hermes.lua.
func ResolvePath(flagValue string) (string, error) {
	if flagValue != "" {
		return ExpandHome(flagValue)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return ExpandHome(env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hermes", "hermes.lua"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hermes", "hermes.lua"), nil
}

// StateDir returns the directory for the lock and install receipts:
// $XDG_STATE_HOME/hermes, else ~/.local/state/hermes.
func StateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "hermes"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "hermes"), nil
}

// DefaultInstallDir is ~/.local/bin.
func DefaultInstallDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "bin"), nil
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
