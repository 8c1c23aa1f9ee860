// Package config loads the inventory tool's settings.
//
// SOURCES, IN ORDER OF PRECEDENCE:
//  1. command-line flags      --db-path=stock.db
//  2. environment variables   INVENTORY_DB_PATH=stock.db
//  3. a .env file in the working directory (loaded into the environment first)
//  4. the defaults in the struct tags below
//
// Whatever is left on the command line after the flags becomes Args, the
// CLI subcommand. No Args means the terminal UI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "INVENTORY"

// StderrLog as LogFile sends logs to standard error instead of a file.
const StderrLog = "-"

// Config holds all configuration for the application.
type Config struct {
	// Storage
	DBPath string `conf:"default:inventory.db,help:path of the SQLite database file"`

	// Logging. The terminal UI owns the screen, so logs go to a file by default.
	LogFile  string `conf:"default:inventory.log,help:log file path or - for stderr"`
	LogLevel string `conf:"default:info,help:debug|info|warn|error" validate:"oneof=debug info warn error"`

	// Presentation
	Sort string `conf:"default:name-asc,help:initial sort order name-asc|name-desc|newest" validate:"oneof=name-asc name-desc newest"`

	Args conf.Args
}

// HelpError is returned by Load when --help was requested.
// Usage holds the text to print.
type HelpError struct {
	Usage string
}

func (e *HelpError) Error() string { return "help requested" }

func (e *HelpError) Unwrap() error { return conf.ErrHelpWanted }

// InvalidError is returned by Load when a setting parsed but holds a value
// outside its allowed set.
type InvalidError struct {
	Field string
	Value string
	Rule  string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: must be one of %s", e.Value, e.Field, e.Rule)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// check applies the validate tags. conf only understands its own tag keys,
// so allowed-value sets are enforced here.
func (c *Config) check() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Errorf("validating config: %w", err)
	}
	fe := ve[0]
	return &InvalidError{
		Field: fe.Field(),
		Value: fmt.Sprint(fe.Value()),
		Rule:  strings.ReplaceAll(fe.Param(), " ", ", "),
	}
}

// Load reads configuration from flags, environment variables and .env,
// falling back to the defaults above.
func Load() (*Config, error) {
	var cfg Config

	// A missing .env file is the normal case, not an error.
	_ = godotenv.Load()

	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, &HelpError{Usage: help}
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Level converts LogLevel into a slog.Level. Load rejects unknown values,
// so the Info fallback only applies to a Config built by hand.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String renders the effective configuration for a debug log line.
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return fmt.Sprintf("config unavailable: %v", err)
	}
	return out
}
