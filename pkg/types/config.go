package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and application settings.
type Config struct {
	Backend        string `json:"backend" yaml:"backend"`
	DataDir        string `json:"data_dir" yaml:"data_dir"`
	ContactsDir    string `json:"contacts_dir" yaml:"contacts_dir"`
	NotesDir       string `json:"notes_dir" yaml:"notes_dir"`
	PhoneRegion    string `json:"phone_region" yaml:"phone_region"`
	BirthdayWindow int    `json:"birthday_window" yaml:"birthday_window"`
	LogLevel       string `json:"log_level" yaml:"log_level"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by the CLI when a key is absent.
const (
	DefaultBirthdayWindow = 7
	DefaultLogLevel       = "warn"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrWindowInvalid  = errors.New("birthday window must be positive")
	ErrLogLevel       = errors.New("unknown log level")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownLogLevels = map[string]bool{
	"":      true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.PhoneRegion != "" {
		if _, err := NewPhonePolicy(c.PhoneRegion); err != nil {
			return err
		}
	}
	if c.BirthdayWindow < 0 {
		return ErrWindowInvalid
	}
	if !knownLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: %q", ErrLogLevel, c.LogLevel)
	}
	return nil
}
