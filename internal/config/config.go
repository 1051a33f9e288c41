package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/talentmap/internal/logger"
	"github.com/harrison/talentmap/internal/poller"
	"github.com/harrison/talentmap/internal/storage"
)

// StorageConfig selects where session state is kept.
type StorageConfig struct {
	// Backend is one of memory, file, sqlite, redis
	Backend string `yaml:"backend"`

	// Path is the state directory (file) or database file (sqlite)
	Path string `yaml:"path"`

	// RedisURL is a redis:// URL, required for the redis backend
	RedisURL string `yaml:"redis_url"`

	// RedisPrefix namespaces keys in a shared redis
	RedisPrefix string `yaml:"redis_prefix"`
}

// EncryptionConfig selects the source of the at-rest key.
type EncryptionConfig struct {
	// KeyFile holds a hex key, created on first use
	KeyFile string `yaml:"key_file"`

	// PassphraseEnv names an environment variable holding a passphrase.
	// When set and non-empty it takes precedence over KeyFile.
	PassphraseEnv string `yaml:"passphrase_env"`

	// Salt for passphrase key derivation
	Salt string `yaml:"salt"`
}

// BackendConfig locates the assessment backend.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// TokenEnv names an environment variable holding a bearer token
	TokenEnv string `yaml:"token_env"`
}

// PollConfig bounds result polling.
type PollConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// Config represents talentmap configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where the rotating log file is written
	LogDir string `yaml:"log_dir"`

	// BankPath is a YAML or Markdown question bank; empty uses the built-in bank
	BankPath string `yaml:"bank_path"`

	Storage    StorageConfig    `yaml:"storage"`
	Encryption EncryptionConfig `yaml:"encryption"`
	Backend    BackendConfig    `yaml:"backend"`
	Poll       PollConfig       `yaml:"poll"`
}

// DefaultConfig returns a Config with sensible default values. Paths are left
// empty and filled in by ResolvePaths.
func DefaultConfig() *Config {
	pc := poller.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Backend:     storage.BackendFile,
			RedisPrefix: "talentmap:",
		},
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8080",
			Timeout: 30 * time.Second,
		},
		Poll: PollConfig{
			MaxAttempts: pc.MaxAttempts,
			BaseDelay:   pc.BaseDelay,
			MaxDelay:    pc.MaxDelay,
		},
	}
}

// yamlConfig mirrors Config with durations as strings.
type yamlConfig struct {
	LogLevel   string           `yaml:"log_level"`
	LogDir     string           `yaml:"log_dir"`
	BankPath   string           `yaml:"bank_path"`
	Storage    StorageConfig    `yaml:"storage"`
	Encryption EncryptionConfig `yaml:"encryption"`
	Backend    struct {
		BaseURL  string `yaml:"base_url"`
		Timeout  string `yaml:"timeout"`
		TokenEnv string `yaml:"token_env"`
	} `yaml:"backend"`
	Poll struct {
		MaxAttempts int    `yaml:"max_attempts"`
		BaseDelay   string `yaml:"base_delay"`
		MaxDelay    string `yaml:"max_delay"`
	} `yaml:"poll"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	setString(&cfg.LogLevel, y.LogLevel)
	setString(&cfg.LogDir, y.LogDir)
	setString(&cfg.BankPath, y.BankPath)

	setString(&cfg.Storage.Backend, y.Storage.Backend)
	setString(&cfg.Storage.Path, y.Storage.Path)
	setString(&cfg.Storage.RedisURL, y.Storage.RedisURL)
	setString(&cfg.Storage.RedisPrefix, y.Storage.RedisPrefix)

	setString(&cfg.Encryption.KeyFile, y.Encryption.KeyFile)
	setString(&cfg.Encryption.PassphraseEnv, y.Encryption.PassphraseEnv)
	setString(&cfg.Encryption.Salt, y.Encryption.Salt)

	setString(&cfg.Backend.BaseURL, y.Backend.BaseURL)
	setString(&cfg.Backend.TokenEnv, y.Backend.TokenEnv)
	if err := setDuration(&cfg.Backend.Timeout, "backend.timeout", y.Backend.Timeout); err != nil {
		return nil, err
	}

	if y.Poll.MaxAttempts != 0 {
		cfg.Poll.MaxAttempts = y.Poll.MaxAttempts
	}
	if err := setDuration(&cfg.Poll.BaseDelay, "poll.base_delay", y.Poll.BaseDelay); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.Poll.MaxDelay, "poll.max_delay", y.Poll.MaxDelay); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, field, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s format %q: %w", field, v, err)
	}
	*dst = d
	return nil
}

// LoadConfigFromDir loads configuration from .talentmap/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel, storageBackend, statePath, baseURL *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if storageBackend != nil {
		c.Storage.Backend = *storageBackend
	}
	if statePath != nil {
		c.Storage.Path = *statePath
	}
	if baseURL != nil {
		c.Backend.BaseURL = *baseURL
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: %s", c.LogLevel, strings.Join(logger.Levels, ", "))
	}

	backend := strings.ToLower(c.Storage.Backend)
	if !slices.Contains(storage.Backends, backend) {
		return fmt.Errorf("invalid storage.backend %q, must be one of: %s", c.Storage.Backend, strings.Join(storage.Backends, ", "))
	}
	if backend == storage.BackendRedis && c.Storage.RedisURL == "" {
		return fmt.Errorf("storage.redis_url is required for the redis backend")
	}

	if c.Encryption.PassphraseEnv != "" && len(c.Encryption.Salt) < 8 {
		return fmt.Errorf("encryption.salt must be at least 8 characters when passphrase_env is set")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q, must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must be >= 0, got %v", c.Backend.Timeout)
	}

	if c.Poll.MaxAttempts < 1 {
		return fmt.Errorf("poll.max_attempts must be >= 1, got %d", c.Poll.MaxAttempts)
	}
	if c.Poll.BaseDelay <= 0 {
		return fmt.Errorf("poll.base_delay must be > 0, got %v", c.Poll.BaseDelay)
	}
	if c.Poll.MaxDelay < c.Poll.BaseDelay {
		return fmt.Errorf("poll.max_delay (%v) must be >= poll.base_delay (%v)", c.Poll.MaxDelay, c.Poll.BaseDelay)
	}

	return nil
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.Storage.Backend,
		Path:        c.Storage.Path,
		RedisURL:    c.Storage.RedisURL,
		RedisPrefix: c.Storage.RedisPrefix,
	}
}

// PollerConfig converts the poll section for poller.New.
func (c *Config) PollerConfig() poller.Config {
	return poller.Config{
		MaxAttempts: c.Poll.MaxAttempts,
		BaseDelay:   c.Poll.BaseDelay,
		MaxDelay:    c.Poll.MaxDelay,
	}
}
