package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// MaxBatchSize is the largest number of track IDs the playlist endpoints accept per call.
const MaxBatchSize = 100

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Rewrite     RewriteConfig     `toml:"rewrite"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// AuthConfig controls the token cache and the authorization-code flow.
type AuthConfig struct {
	CachePath      string `toml:"cache_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	OpenBrowser    bool   `toml:"open_browser"`
}

// DatabaseConfig contains database connection settings for the rewrite journal.
//
// An empty path disables the journal.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local callback listener.
type ServerConfig struct {
	Host string `toml:"host"`
}

// RewriteConfig controls batching and pacing of playlist rewrites.
type RewriteConfig struct {
	BatchSize int `toml:"batch_size"`
	PacingMS  int `toml:"pacing_ms"`
}

// envBinding maps an environment variable (and its legacy spelling) onto a config field.
type envBinding struct {
	keys   []string
	target func(*Config) *string
}

var envBindings = []envBinding{
	{[]string{"SPOTIFY_CLIENT_ID", "SPOTIPY_CLIENT_ID"}, func(c *Config) *string { return &c.Credentials.Spotify.ClientID }},
	{[]string{"SPOTIFY_CLIENT_SECRET", "SPOTIPY_CLIENT_SECRET"}, func(c *Config) *string { return &c.Credentials.Spotify.ClientSecret }},
	{[]string{"SPOTIFY_REDIRECT_URI", "SPOTIPY_REDIRECT_URI"}, func(c *Config) *string { return &c.Credentials.Spotify.RedirectURI }},
	{[]string{"SPOTIFY_TOKEN_CACHE", "SPOTIPY_CACHE_PATH"}, func(c *Config) *string { return &c.Auth.CachePath }},
	{[]string{"PLSORT_DATABASE"}, func(c *Config) *string { return &c.Database.Path }},
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// ResolveConfig builds the effective configuration: embedded defaults, then the TOML file at configPath (if it exists),
// then the dotenv file at envPath (if it exists), then the process environment.
func ResolveConfig(configPath, envPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			loaded, err := LoadConfig(configPath)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, envPath, err)
		}
	}

	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// ApplyEnv overrides config values with any environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, b := range envBindings {
		for _, key := range b.keys {
			if v, ok := lookup(key); ok && v != "" {
				*b.target(c) = v
				break
			}
		}
	}
}

// Validate checks that the required credentials are present and normalizes rewrite settings.
func (c *Config) Validate() error {
	var missing []string
	if c.Credentials.Spotify.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.Credentials.Spotify.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v must be set in config.toml or the environment", ErrMissingCredentials, missing)
	}

	if _, err := c.CallbackAddr(); err != nil {
		return err
	}

	if c.Rewrite.BatchSize <= 0 || c.Rewrite.BatchSize > MaxBatchSize {
		c.Rewrite.BatchSize = MaxBatchSize
	}
	if c.Rewrite.PacingMS < 0 {
		c.Rewrite.PacingMS = 0
	}
	return nil
}

// CallbackAddr returns the loopback listen address derived from the redirect URI's port.
func (c *Config) CallbackAddr() (string, error) {
	u, err := url.Parse(c.Credentials.Spotify.RedirectURI)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: redirect_uri %q is not an absolute URL", ErrInvalidConfig, c.Credentials.Spotify.RedirectURI)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	host := c.Server.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port), nil
}

// CallbackPath returns the path component of the redirect URI, defaulting to /callback.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.Credentials.Spotify.RedirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/callback"
	}
	return u.Path
}

// AuthTimeout returns the maximum time to wait for the authorization callback.
func (c *Config) AuthTimeout() time.Duration {
	if c.Auth.TimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Auth.TimeoutSeconds) * time.Second
}

// Pacing returns the delay between consecutive rewrite calls.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.Rewrite.PacingMS) * time.Millisecond
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
