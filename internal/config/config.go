// Package config provides configuration loading and validation for the
// ProaJob server and command-line clients.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// ServerConfig holds the settings of the API server, read from the environment.
type ServerConfig struct {
	DatabaseURL       string
	Port              int
	CORSAllowedOrigin string
	LogLevel          string
	LogFormat         string
	// AutoMigrate applies the embedded schema on start.
	AutoMigrate bool
}

// LoadServerConfig reads DATABASE_URL (required), PORT (default 8080),
// CORS_ALLOWED_ORIGIN (default *), LOG_LEVEL (default info), LOG_FORMAT
// (text or json, default text) and AUTO_MIGRATE (default true).
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              8080,
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		AutoMigrate:       true,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE: %v", err)
		}
		cfg.AutoMigrate = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *ServerConfig) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got: %s", c.LogFormat)
	}
	return nil
}

// ClientConfig holds the settings of the interactive form commands. It can be
// loaded from a JSON file; every field is optional and flags override it.
type ClientConfig struct {
	APIURL  string `json:"api_url,omitempty"`  // Base URL of the ProaJob API
	Token   string `json:"token,omitempty"`    // Bearer token returned by POST /login
	Email   string `json:"email,omitempty"`    // Login e-mail used when no token is set
	UserID  int    `json:"id_usuario,omitempty"`
	LogFile string `json:"log_file,omitempty"` // Where client logs go while the TUI owns the terminal
}

// DefaultAPIURL is used when neither flags, file nor environment set one.
const DefaultAPIURL = "http://localhost:8080"

// LoadClientConfig loads client configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadClientConfig(path string) (*ClientConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg ClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *ClientConfig) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: invalid api_url: %s", c.APIURL)
		}
	}
	if c.UserID < 0 {
		return fmt.Errorf("config error: 'id_usuario' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new ClientConfig with empty fields filled from
// defaults and then from PROAJOB_API_URL / PROAJOB_TOKEN.
func (c *ClientConfig) MergeWithDefaults(defaults ClientConfig) ClientConfig {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Token == "" {
		result.Token = defaults.Token
	}
	if result.Email == "" {
		result.Email = defaults.Email
	}
	if result.UserID == 0 {
		result.UserID = defaults.UserID
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}

	if result.APIURL == "" {
		result.APIURL = getEnv("PROAJOB_API_URL", DefaultAPIURL)
	}
	if result.Token == "" {
		result.Token = os.Getenv("PROAJOB_TOKEN")
	}

	return result
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
