// Package config handles the configuration directory, the config file,
// .env files and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskmgr"

	// ConfigFile is the optional YAML settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the persisted session filename.
	SessionFile = "session.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKMGR"
)

// Defaults for the service endpoints and request handling.
const (
	DefaultUserServiceURL = "http://localhost:6001/api"
	DefaultTaskServiceURL = "http://localhost:6002/api"
	DefaultEnvironment    = "development"
	DefaultTimeout        = 10 * time.Second
	DefaultLogLevel       = "WARN"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// UserServiceURL is the base URL of the user-account service.
	UserServiceURL string

	// TaskServiceURL is the base URL of the task service.
	TaskServiceURL string

	// Environment names the deployment (development, staging, production).
	Environment string

	// Timeout bounds every HTTP request.
	Timeout time.Duration

	// LogLevel is the slog level name used when Debug is off.
	LogLevel string

	// APIToken, when set, is sent as a bearer token to both services.
	APIToken string
}

// fileConfig mirrors config.yaml.
type fileConfig struct {
	UserServiceURL string `yaml:"user_service_url"`
	TaskServiceURL string `yaml:"task_service_url"`
	Environment    string `yaml:"environment"`
	RequestTimeout string `yaml:"request_timeout"`
	LogLevel       string `yaml:"log_level"`
	APIToken       string `yaml:"api_token"`
}

// New creates a Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskmgr or $HOME/.config/taskmgr.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:            dir,
		UserServiceURL: DefaultUserServiceURL,
		TaskServiceURL: DefaultTaskServiceURL,
		Environment:    DefaultEnvironment,
		Timeout:        DefaultTimeout,
		LogLevel:       DefaultLogLevel,
	}, nil
}

// Load creates a Config and layers config.yaml, .env files and environment
// variables on top of the defaults, in that order.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	env, err := cfg.loadDotEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.FilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if fc.UserServiceURL != "" {
		c.UserServiceURL = fc.UserServiceURL
	}
	if fc.TaskServiceURL != "" {
		c.TaskServiceURL = fc.TaskServiceURL
	}
	if fc.Environment != "" {
		c.Environment = fc.Environment
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.APIToken != "" {
		c.APIToken = fc.APIToken
	}
	if fc.RequestTimeout != "" {
		d, err := parseTimeout(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
		c.Timeout = d
	}
	return nil
}

// loadDotEnv reads .env.<environment> and .env from the config directory and
// the working directory. Earlier files win; nothing is written to the process
// environment.
func (c *Config) loadDotEnv() (map[string]string, error) {
	environment := c.Environment
	if v, ok := os.LookupEnv(envKey("ENVIRONMENT")); ok && v != "" {
		environment = v
	}

	paths := []string{
		filepath.Join(c.Dir, ".env."+environment),
		filepath.Join(c.Dir, ".env"),
		".env." + environment,
		".env",
	}

	merged := make(map[string]string)
	for _, p := range paths {
		values, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for k, v := range values {
			if _, exists := merged[k]; !exists {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// applyEnv applies TASKMGR_* overrides. Real environment variables take
// precedence over values read from .env files.
func (c *Config) applyEnv(dotenv map[string]string) error {
	lookup := func(key string) (string, bool) {
		k := envKey(key)
		if v, ok := os.LookupEnv(k); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[k]
		return v, ok && v != ""
	}

	if v, ok := lookup("USER_SERVICE_URL"); ok {
		c.UserServiceURL = v
	}
	if v, ok := lookup("TASK_SERVICE_URL"); ok {
		c.TaskServiceURL = v
	}
	if v, ok := lookup("ENVIRONMENT"); ok {
		c.Environment = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("API_TOKEN"); ok {
		c.APIToken = v
	}
	if v, ok := lookup("TIMEOUT"); ok {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envKey("TIMEOUT"), err)
		}
		c.Timeout = d
	}
	return nil
}

func envKey(key string) string {
	return EnvPrefix + "_" + key
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive: %s", s)
	}
	return d, nil
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, DefaultEnvironment)
}
