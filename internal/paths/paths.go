// Package paths resolves where rentals keeps its configuration, session and
// server data.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "rentals"

// File names inside the config directory.
const (
	ConfigFileName  = "config.yaml"
	SessionFileName = "session.yaml"
	EnvFileName     = ".env"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "RENTALS_CONFIG_DIR"
	EnvDataDir   = "RENTALS_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/rentals (fallback ~/.config/rentals)
// macOS:   ~/Library/Application Support/rentals
// Windows: %APPDATA%/rentals
func DefaultConfigDir() (string, error) {
	return xdgOr("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory used by the reference
// server.
//
// Linux:   $XDG_DATA_HOME/rentals (fallback ~/.local/share/rentals)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	return xdgOr("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgOr(env, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", fmt.Errorf("locating user config dir: %w", err)
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", fmt.Errorf("locating home dir: %w", err)
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// RENTALS_CONFIG_DIR, then the platform default.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the server data directory: flag, then the
// config file value, then RENTALS_DATA_DIR, then the platform default.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string { return filepath.Join(configDir, ConfigFileName) }

// SessionFile returns the session.yaml path inside configDir.
func SessionFile(configDir string) string { return filepath.Join(configDir, SessionFileName) }

// EnvFile returns the .env path inside configDir.
func EnvFile(configDir string) string { return filepath.Join(configDir, EnvFileName) }
