package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/looper/internal/logging"
)

// Config holds every setting of the demo.
type Config struct {
	Demo       DemoConfig       `toml:"demo"`
	Dispatcher DispatcherConfig `toml:"dispatcher"`
	Log        LogConfig        `toml:"log"`
}

// DemoConfig configures the hand-off demo.
type DemoConfig struct {
	// SleepMS is how long the worker sleeps before waking the UI.
	SleepMS int `toml:"sleep_ms"`

	// Mode is the hand-off style selected at startup. Empty means none.
	Mode string `toml:"mode"`

	// AutoRun lists modes to run unattended, in order, before quitting.
	AutoRun []string `toml:"auto_run"`
}

// DispatcherConfig configures the UI dispatcher.
type DispatcherConfig struct {
	// DrainOnQuit makes the quit key let pending UI work finish.
	DrainOnQuit bool `toml:"drain_on_quit"`

	// LockOSThread pins the UI goroutine to its OS thread.
	LockOSThread bool `toml:"lock_os_thread"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Demo: DemoConfig{
			SleepMS: 5000,
		},
		Dispatcher: DispatcherConfig{
			DrainOnQuit: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Sleep returns the demo sleep as a duration.
func (c *Config) Sleep() time.Duration {
	return time.Duration(c.Demo.SleepMS) * time.Millisecond
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Demo.AutoRun = append([]string(nil), c.Demo.AutoRun...)
	return &out
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Demo.SleepMS < 0 {
		return &ValidationError{Path: "demo.sleep_ms", Value: c.Demo.SleepMS, Message: "must not be negative"}
	}
	if !logging.ValidLevel(c.Log.Level) {
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be one of debug, info, warn, error"}
	}
	return nil
}

// Load reads the TOML file at path over the defaults and validates the
// result. A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return parse(path, data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	return parse("<data>", data)
}

func parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}
