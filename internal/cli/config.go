// Config loading for the assistant CLI.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/assistant/internal/paths"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Environment variables read by viper are ASSISTANT_<KEY>.
	envPrefix = "ASSISTANT"

	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyContactsDir    = "contacts_dir"
	cfgKeyNotesDir       = "notes_dir"
	cfgKeyPhoneRegion    = "phone_region"
	cfgKeyBirthdayWindow = "birthday_window"
	cfgKeyLogLevel       = "log_level"

	defaultPhoneRegion = types.RegionUA
)

const configHeader = `# Assistant configuration.
# data_dir, contacts_dir and notes_dir may be left empty to use the
# platform defaults. phone_region is one of UA, US, INTL.
`

// defaultConfig is written to config.yaml on first run.
func defaultConfig() types.Config {
	return types.Config{
		Backend:        types.BackendSQLite,
		PhoneRegion:    defaultPhoneRegion,
		BirthdayWindow: types.DefaultBirthdayWindow,
		LogLevel:       types.DefaultLogLevel,
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyContactsDir, "")
	v.SetDefault(cfgKeyNotesDir, "")
	v.SetDefault(cfgKeyPhoneRegion, def.PhoneRegion)
	v.SetDefault(cfgKeyBirthdayWindow, def.BirthdayWindow)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes a default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	data, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// loadSettings resolves directories and returns the validated configuration
// with flags applied on top of config.yaml.
func (a *app) loadSettings() (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, "", err
	}

	cfg := types.Config{
		Backend:        v.GetString(cfgKeyBackend),
		PhoneRegion:    strings.ToUpper(v.GetString(cfgKeyPhoneRegion)),
		BirthdayWindow: v.GetInt(cfgKeyBirthdayWindow),
		LogLevel:       strings.ToLower(v.GetString(cfgKeyLogLevel)),
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.flags.logLevel)
	}
	if cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir)); err != nil {
		return types.Config{}, "", fmt.Errorf("resolve data dir: %w", err)
	}
	if cfg.ContactsDir, err = paths.ResolveSnapshotDir(types.ContactsTable, v.GetString(cfgKeyContactsDir), cfg.DataDir); err != nil {
		return types.Config{}, "", fmt.Errorf("resolve contacts dir: %w", err)
	}
	if cfg.NotesDir, err = paths.ResolveSnapshotDir(types.NotesTable, v.GetString(cfgKeyNotesDir), cfg.DataDir); err != nil {
		return types.Config{}, "", fmt.Errorf("resolve notes dir: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, "", fmt.Errorf("invalid configuration in %s: %w", filepath.Join(configDir, configFileExt), err)
	}
	return cfg, configDir, nil
}

// newLogger returns a text logger on w at level, which defaults to warn.
func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
