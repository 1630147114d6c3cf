// Package config loads eventplanner settings from the environment.
//
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all client configuration.
type Config struct {
	Store    StoreConfig
	Log      LogConfig
	Calendar CalendarConfig
}

// StoreConfig describes how to reach the remote record store.
type StoreConfig struct {
	BaseURL     string        `validate:"required,url" env:"EVENTS_API_URL"`
	Timeout     time.Duration `validate:"gt=0" env:"EVENTS_HTTP_TIMEOUT"`
	SessionFile string        `validate:"required" env:"EVENTS_SESSION_FILE"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error" env:"LOG_LEVEL"`
}

// CalendarConfig holds the optional calendar publishing targets.
type CalendarConfig struct {
	TimeZone         string `validate:"required" env:"PRIMARY_TIMEZONE"`
	StateFile        string `validate:"required" env:"PUBLISH_STATE_FILE"`
	CalDAVEndpoint   string `validate:"omitempty,url" env:"CALDAV_ENDPOINT"`
	CalDAVUsername   string `validate:"required_with=CalDAVEndpoint" env:"CALDAV_USERNAME"`
	CalDAVPassword   string `validate:"required_with=CalDAVEndpoint" env:"CALDAV_PASSWORD"`
	CalDAVCalendar   string `validate:"required_with=CalDAVEndpoint" env:"CALDAV_CALENDAR_NAME"`
	GoogleClientID   string `env:"GOOGLE_CLIENT_ID"`
	GoogleSecret     string `validate:"required_with=GoogleClientID" env:"GOOGLE_CLIENT_SECRET"`
	GoogleCalendarID string `env:"GOOGLE_CALENDAR_ID"`
	GoogleTokenDir   string `validate:"required" env:"GOOGLE_TOKEN_DIR"`
}

// CalDAVEnabled reports whether a CalDAV target is configured.
func (c CalendarConfig) CalDAVEnabled() bool {
	return c.CalDAVEndpoint != ""
}

// GoogleEnabled reports whether a Google Calendar target is configured.
func (c CalendarConfig) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// Load reads .env (if any) and the environment, applying defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	timeout, err := getDurationEnv("EVENTS_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Store: StoreConfig{
			BaseURL:     strings.TrimSuffix(getEnv("EVENTS_API_URL", "http://127.0.0.1:8090/api"), "/"),
			Timeout:     timeout,
			SessionFile: getEnv("EVENTS_SESSION_FILE", "session.json"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Calendar: CalendarConfig{
			TimeZone:         getEnv("PRIMARY_TIMEZONE", "UTC"),
			StateFile:        getEnv("PUBLISH_STATE_FILE", "publish-state.json"),
			CalDAVEndpoint:   getEnv("CALDAV_ENDPOINT", ""),
			CalDAVUsername:   getEnv("CALDAV_USERNAME", ""),
			CalDAVPassword:   getEnv("CALDAV_PASSWORD", ""),
			CalDAVCalendar:   getEnv("CALDAV_CALENDAR_NAME", ""),
			GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleCalendarID: getEnv("GOOGLE_CALENDAR_ID", "primary"),
			GoogleTokenDir:   getEnv("GOOGLE_TOKEN_DIR", "."),
		},
	}, nil
}

// Validate checks every section and reports all failures at once, naming the
// environment variable behind each bad field.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	var errs []error
	for _, section := range []any{c.Store, c.Log, c.Calendar} {
		err := validate.Struct(section)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fmt.Errorf("%s is invalid (rule %q, value %v)", envName(section, fe.StructField()), fe.Tag(), fe.Value()))
		}
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", key, value, err)
	}
	return d, nil
}
