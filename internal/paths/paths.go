// Package paths resolves configuration, data and snapshot directory
// locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "assistant"

// Environment variable names for directory overrides.
const (
	EnvConfigDir   = "ASSISTANT_CONFIG_DIR"
	EnvDataDir     = "ASSISTANT_DATA_DIR"
	EnvContactsDir = "ASSISTANT_CONTACTS_DIR"
	EnvNotesDir    = "ASSISTANT_NOTES_DIR"
)

// SnapshotDirName is the data-dir subdirectory holding snapshots when no
// override is set.
const SnapshotDirName = "snapshots"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/assistant (fallback ~/.config/assistant)
// macOS:   ~/Library/Application Support/assistant
// Windows: %APPDATA%/assistant
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	return userDir()
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/assistant (fallback ~/.local/share/assistant)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	return userDir()
}

func xdgDir(env, fallback string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

func userDir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > ASSISTANT_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > ASSISTANT_DATA_DIR env > configYAMLValue > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if dir, ok, err := firstAbs(flag, os.Getenv(EnvDataDir), configYAMLValue); ok || err != nil {
		return dir, err
	}
	return DefaultDataDir()
}

// ResolveSnapshotDir returns the snapshot directory for a table:
// ASSISTANT_CONTACTS_DIR or ASSISTANT_NOTES_DIR env > configYAMLValue >
// <dataDir>/snapshots/<table>.
func ResolveSnapshotDir(table, configYAMLValue, dataDir string) (string, error) {
	env := ""
	switch table {
	case "contacts":
		env = os.Getenv(EnvContactsDir)
	case "notes":
		env = os.Getenv(EnvNotesDir)
	}
	if dir, ok, err := firstAbs(env, configYAMLValue); ok || err != nil {
		return dir, err
	}
	return filepath.Join(dataDir, SnapshotDirName, table), nil
}

func firstAbs(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		return abs, true, err
	}
	return "", false, nil
}
