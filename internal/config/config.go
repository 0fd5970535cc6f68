package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	configFile = "config.json"
	lockFile   = "config.json.lock"

	// DefaultTimeout bounds each remote request.
	DefaultTimeout = 10 * time.Second
	// DefaultLogLevel is used when nothing sets a level.
	DefaultLogLevel = "warn"

	lockTimeout = 2 * time.Second
)

// Environment variables read by Load. STOREFRONT_CONFIG_DIR moves the
// config directory.
const (
	EnvConfigDir      = "STOREFRONT_CONFIG_DIR"
	EnvRemoteURL      = "STOREFRONT_REMOTE_URL"
	EnvAPIKey         = "STOREFRONT_API_KEY"
	EnvTimeout        = "STOREFRONT_TIMEOUT"
	EnvLogLevel       = "STOREFRONT_LOG_LEVEL"
	EnvCredentialMode = "STOREFRONT_CREDENTIAL_MODE"
	EnvWritePolicy    = "STOREFRONT_WRITE_POLICY"
)

// Config is the client configuration stored at ~/.config/storefront/config.json.
type Config struct {
	RemoteURL      string `json:"remote_url,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	Timeout        string `json:"timeout,omitempty"` // duration string, default "10s"
	LogLevel       string `json:"log_level,omitempty"`
	CredentialMode string `json:"credential_mode,omitempty"` // plain | bcrypt
	WritePolicy    string `json:"write_policy,omitempty"`    // optimistic | rollback
}

// HasRemote reports whether a remote store is configured.
func (c *Config) HasRemote() bool {
	return strings.TrimSpace(c.RemoteURL) != ""
}

// RequestTimeout returns Timeout parsed, or DefaultTimeout when unset or invalid.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// Level returns LogLevel or DefaultLogLevel.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// Dir returns the config directory: $STOREFRONT_CONFIG_DIR, else
// ~/.config/storefront.
func Dir() (string, error) {
	if v := os.Getenv(EnvConfigDir); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "storefront"), nil
}

// LoadFile reads only the config file in dir. A missing file is an empty config.
func LoadFile(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return &cfg, nil
}

// Load returns the effective config: the file in dir, then a .env in the
// working directory, then STOREFRONT_* variables, later sources winning.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(dir)
	if err != nil {
		return nil, err
	}
	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	for env, field := range map[string]*string{
		EnvRemoteURL:      &cfg.RemoteURL,
		EnvAPIKey:         &cfg.APIKey,
		EnvTimeout:        &cfg.Timeout,
		EnvLogLevel:       &cfg.LogLevel,
		EnvCredentialMode: &cfg.CredentialMode,
		EnvWritePolicy:    &cfg.WritePolicy,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Save writes cfg to dir using atomic write (temp file + rename) while
// holding the config lock. The file may hold an API key, so it is 0600.
func Save(dir string, cfg *Config) error {
	return withLock(dir, func() error {
		return save(dir, cfg)
	})
}

// Update applies fn to the stored file config under the lock and saves it.
func Update(dir string, fn func(*Config) error) error {
	return withLock(dir, func() error {
		cfg, err := LoadFile(dir)
		if err != nil {
			return err
		}
		if err := fn(cfg); err != nil {
			return err
		}
		return save(dir, cfg)
	})
}

func save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, configFile))
}

func withLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	l := newFileLock(filepath.Join(dir, lockFile))
	if err := l.acquire(lockTimeout); err != nil {
		return err
	}
	defer l.release()
	return fn()
}
