package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrMissingDatabaseURL  = errors.New("database url is required (DATABASE_URL)")
	ErrUnknownDriver       = errors.New("database driver must be postgres, sqlite or duckdb")
	ErrInvalidTimeZone     = errors.New("invalid history time zone")
	ErrInvalidPlatformRule = errors.New("platform rule needs a non-empty contains and label")
	ErrInvalidLogFormat    = errors.New("log format must be json or console")
	ErrInvalidRate         = errors.New("spotify requests_per_second must not be negative")
	ErrMissingCredentials  = errors.New("set SPOTIFY_ACCESS_TOKEN, or SPOTIFY_ID and SPOTIFY_SECRET")
)

// Validate checks settings needed by every command.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	switch c.Database.DriverName() {
	case "postgres", "sqlite", "duckdb":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Database.Driver)
	}

	if _, err := time.LoadLocation(c.History.TimeZone); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidTimeZone, c.History.TimeZone, err)
	}
	for i, r := range c.History.PlatformRules {
		if r.Contains == "" || r.Label == "" {
			return fmt.Errorf("%w: rule %d", ErrInvalidPlatformRule, i)
		}
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}

	if c.Spotify.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	return nil
}

// ValidateSpotify checks that catalog requests can be authorized.
func (c *Config) ValidateSpotify() error {
	if c.Spotify.AccessToken != "" {
		return nil
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// DriverName returns the configured driver, or infers one from the URL:
// postgres:// and postgresql:// select postgres, a .duckdb file selects
// duckdb, anything else is a SQLite file.
func (d DatabaseConfig) DriverName() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "duckdb":
		return "duckdb"
	case "":
	default:
		return d.Driver
	}

	switch {
	case strings.HasPrefix(d.URL, "postgres://"), strings.HasPrefix(d.URL, "postgresql://"):
		return "postgres"
	case strings.HasSuffix(d.URL, ".duckdb"):
		return "duckdb"
	default:
		return "sqlite"
	}
}
