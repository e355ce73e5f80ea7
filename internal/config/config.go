package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultEndpoint is the GraphQL endpoint used when none is configured.
const DefaultEndpoint = "https://bez-to-do-list.herokuapp.com/v1/graphql"

// EndpointEnv overrides the configured endpoint when set.
const EndpointEnv = "TODOS_ENDPOINT"

// Config holds the application configuration
type Config struct {
	Remote RemoteConfig `toml:"remote"`
	Log    LogConfig    `toml:"log"`
	Form   FormConfig   `toml:"form"`
}

// RemoteConfig holds the GraphQL endpoint settings
type RemoteConfig struct {
	Endpoint string            `toml:"endpoint"`
	Timeout  Duration          `toml:"timeout"`
	Headers  map[string]string `toml:"headers,omitempty"`
}

// LogConfig holds logging settings. An empty File disables logging.
type LogConfig struct {
	File   string `toml:"file"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// FormConfig holds add form behaviour
type FormConfig struct {
	ResetOnSubmit bool `toml:"reset_on_submit"`
}

// Duration is a time.Duration that reads and writes as a string like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			Endpoint: DefaultEndpoint,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Form: FormConfig{
			ResetOnSubmit: true,
		},
	}
}

// DefaultPath returns the standard config file location
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "todos-tui", "config.toml"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if endpoint := os.Getenv(EndpointEnv); endpoint != "" {
		c.Remote.Endpoint = endpoint
	}
}

// Validate checks values a file or flag could get wrong.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote.Endpoint) == "" {
		return fmt.Errorf("remote.endpoint must not be empty")
	}
	if c.Remote.Timeout.Duration < 0 {
		return fmt.Errorf("remote.timeout must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be 'text' or 'json'", c.Log.Format)
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	configPath, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
