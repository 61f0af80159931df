// Package config loads warehouse configuration from defaults, an optional
// YAML file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names a config file to load.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched when no path is given.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// DotEnvPath is loaded into the environment when present. Variables already
// set are never overwritten.
var DotEnvPath = ".env"

// Config is the complete warehouse configuration.
type Config struct {
	History  HistoryConfig  `koanf:"history"`
	Spotify  SpotifyConfig  `koanf:"spotify"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Server   ServerConfig   `koanf:"server"`
}

// HistoryConfig locates and interprets the streaming history export.
type HistoryConfig struct {
	Glob     string `koanf:"glob"`
	TimeZone string `koanf:"time_zone"`

	// PlatformRules replace the built-in platform rules when non-empty.
	PlatformRules []PlatformRule `koanf:"platform_rules"`
}

// PlatformRule maps platforms containing Contains to Label.
type PlatformRule struct {
	Contains string `koanf:"contains"`
	Label    string `koanf:"label"`
}

// SpotifyConfig holds Web API credentials and client settings.
type SpotifyConfig struct {
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	AccessToken       string        `koanf:"access_token"`
	BaseURL           string        `koanf:"base_url"`
	TokenURL          string        `koanf:"token_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// DatabaseConfig selects the sink.
type DatabaseConfig struct {
	// Driver is postgres, sqlite or duckdb. Empty infers it from URL.
	Driver string `koanf:"driver"`
	URL    string `koanf:"url"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Glob:     "data/Streaming_History_Audio_*.json",
			TimeZone: "America/New_York",
		},
		Spotify: SpotifyConfig{
			BaseURL: "https://api.spotify.com",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL: "warehouse.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration. path names a YAML file; empty searches
// CONFIG_PATH and DefaultConfigPaths. The result is validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(DotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DotEnvPath, err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to config paths.
// SPOTIFY_ID and SPOTIFY_SECRET follow the spotify auth package convention;
// CLIENT_ID and CLIENT_SECRET are accepted as aliases.
var envMappings = map[string]string{
	"spotify_id":                  "spotify.client_id",
	"spotify_secret":              "spotify.client_secret",
	"client_id":                   "spotify.client_id",
	"client_secret":               "spotify.client_secret",
	"spotify_access_token":        "spotify.access_token",
	"spotify_base_url":            "spotify.base_url",
	"spotify_token_url":           "spotify.token_url",
	"spotify_timeout":             "spotify.timeout",
	"spotify_requests_per_second": "spotify.requests_per_second",
	"database_url":                "database.url",
	"database_driver":             "database.driver",
	"history_glob":                "history.glob",
	"history_time_zone":           "history.time_zone",
	"log_level":                   "log.level",
	"log_format":                  "log.format",
	"server_addr":                 "server.addr",
	"server_shutdown_timeout":     "server.shutdown_timeout",
}

// envTransformFunc maps an environment variable to its config path.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
