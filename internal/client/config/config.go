// Package config loads blogctl settings from $XDG_CONFIG_HOME/blogctl/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for client-local state
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

const (
	defaultBaseURL       = "http://localhost:8080"
	defaultTimeout       = 30 * time.Second
	defaultConcurrency   = 4
	defaultMongoDatabase = "blogctl"
)

// Config stores blogctl configuration
type Config struct {
	BaseURL          string        `yaml:"base_url"`
	Token            string        `yaml:"token,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	CountConcurrency int           `yaml:"count_concurrency,omitempty"`
	Storage          StorageConfig `yaml:"storage"`
}

// StorageConfig selects where viewed posts and preferences are kept
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path,omitempty"`
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	MongoURI      string `yaml:"mongo_uri,omitempty"`
	MongoDatabase string `yaml:"mongo_database,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		BaseURL:          defaultBaseURL,
		Timeout:          defaultTimeout,
		CountConcurrency: defaultConcurrency,
		Storage:          StorageConfig{Backend: BackendFile},
	}
}

// GetConfigPath returns the config file path
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "blogctl", "config.yaml"), nil
}

// DataDir returns the default directory for file-backed state
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "blogctl"), nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

// Load reads config from disk, fills defaults and applies BLOGCTL_BASE_URL
// A missing file yields Default()
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if v := os.Getenv("BLOGCTL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.CountConcurrency <= 0 {
		c.CountConcurrency = defaultConcurrency
	}

	s := &c.Storage
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case "", BackendFile:
		s.Backend = BackendFile
		if s.Path == "" {
			dir, err := DataDir()
			if err != nil {
				return err
			}
			s.Path = filepath.Join(dir, "state.json")
		}
		path, err := ExpandPath(s.Path)
		if err != nil {
			return err
		}
		s.Path = path
	case BackendRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if s.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for the mongo backend")
		}
		if s.MongoDatabase == "" {
			s.MongoDatabase = defaultMongoDatabase
		}
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
	return nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
