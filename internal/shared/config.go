package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override secrets from the config file.
const (
	EnvWhoopClientID     = "WHOOP_CLIENT_ID"
	EnvWhoopClientSecret = "WHOOP_CLIENT_SECRET"
	EnvWhoopRedirectURI  = "WHOOP_REDIRECT_URI"
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvDatabasePath      = "HEALTHART_DB"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Whoop    WhoopConfig    `toml:"whoop"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// WhoopConfig contains the OAuth client and API endpoints for the metrics provider.
type WhoopConfig struct {
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	RedirectURI    string   `toml:"redirect_uri"`
	AuthURL        string   `toml:"auth_url"`
	TokenURL       string   `toml:"token_url"`
	RevokeURL      string   `toml:"revoke_url"`
	APIBaseURL     string   `toml:"api_base_url"`
	Scopes         []string `toml:"scopes"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Timeout returns the provider request timeout.
func (w WhoopConfig) Timeout() time.Duration {
	if w.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// OpenAIConfig contains image generator settings.
type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Size           string `toml:"size"`
	Quality        string `toml:"quality"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the image generation request timeout.
func (o OpenAIConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string  `toml:"host"`
	Port              int     `toml:"port"`
	LogLevel          string  `toml:"log_level"`
	SessionTTLMinutes int     `toml:"session_ttl_minutes"`
	MaxSessions       int     `toml:"max_sessions"`
	SecureCookies     bool    `toml:"secure_cookies"`
	ArtRatePerMinute  float64 `toml:"art_rate_per_minute"`
	ArtBurst          int     `toml:"art_burst"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionTTL returns how long an idle session is kept.
func (s ServerConfig) SessionTTL() time.Duration {
	if s.SessionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.SessionTTLMinutes) * time.Minute
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// LoadEnv loads the given dotenv files into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides secrets and paths with values from the environment when present.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		EnvWhoopClientID:     &c.Whoop.ClientID,
		EnvWhoopClientSecret: &c.Whoop.ClientSecret,
		EnvWhoopRedirectURI:  &c.Whoop.RedirectURI,
		EnvOpenAIKey:         &c.OpenAI.APIKey,
		EnvDatabasePath:      &c.Database.Path,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

// Validate reports missing settings required to run the OAuth flow and art generation.
func (c *Config) Validate() error {
	switch {
	case c.Whoop.ClientID == "" || c.Whoop.ClientSecret == "":
		return fmt.Errorf("%w: whoop client_id and client_secret must be set", ErrMissingCredentials)
	case c.Whoop.RedirectURI == "":
		return fmt.Errorf("%w: whoop redirect_uri must be set", ErrInvalidConfig)
	case c.Whoop.AuthURL == "" || c.Whoop.TokenURL == "":
		return fmt.Errorf("%w: whoop auth_url and token_url must be set", ErrInvalidConfig)
	case c.OpenAI.APIKey == "":
		return fmt.Errorf("%w: openai api_key must be set", ErrMissingCredentials)
	}
	return nil
}
