package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/joist/internal/dto"
	"github.com/aretw0/joist/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration.
const DefaultPath = "joist.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the content of joist.yaml (or joist.json).
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Log    LogConfig    `yaml:"log" json:"log"`
	// Components restricts documents to these component names. Empty allows
	// the whole built-in catalog.
	Components []string      `yaml:"components" json:"components"`
	Metrics    MetricsConfig `yaml:"metrics" json:"metrics"`
	// Template describes the root of new documents.
	Template any `yaml:"template" json:"template"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

type StoreConfig struct {
	Backend    string           `yaml:"backend" json:"backend"`
	Path       string           `yaml:"path" json:"path"`
	Redis      RedisConfig      `yaml:"redis" json:"redis"`
	Encryption EncryptionConfig `yaml:"encryption" json:"encryption"`
	// Redact lists regular expressions; matching prop keys are masked
	// before documents are stored.
	Redact []string `yaml:"redact" json:"redact"`
}

// EncryptionConfig enables AES-256 encryption at rest. Keys are base64.
type EncryptionConfig struct {
	Key string `yaml:"key" json:"key"`
	// KeyEnv names an environment variable holding the key instead.
	KeyEnv       string   `yaml:"key_env" json:"key_env"`
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	// TTL is a Go duration ("24h"). Empty keeps documents forever.
	TTL string `yaml:"ttl" json:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Store:   StoreConfig{Backend: BackendMemory, Path: ".joist/documents"},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads a configuration file (YAML or JSON, by extension) on top of the
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis backend")
	}
	if _, err := c.Store.Redis.TTLDuration(); err != nil {
		return err
	}
	if _, _, err := c.Store.Encryption.Keys(); err != nil {
		return err
	}
	return nil
}

// Enabled reports whether a key is configured.
func (e EncryptionConfig) Enabled() bool {
	return e.Key != "" || e.KeyEnv != ""
}

// Keys decodes the active and fallback keys. Each must be 32 bytes.
func (e EncryptionConfig) Keys() ([]byte, [][]byte, error) {
	if !e.Enabled() {
		return nil, nil, nil
	}
	raw := e.Key
	if e.KeyEnv != "" {
		raw = os.Getenv(e.KeyEnv)
		if raw == "" {
			return nil, nil, fmt.Errorf("store.encryption.key_env: %s is not set", e.KeyEnv)
		}
	}
	active, err := decodeKey(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid store.encryption key: %w", err)
	}
	fallback := make([][]byte, 0, len(e.FallbackKeys))
	for i, k := range e.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid store.encryption.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// TTLDuration parses TTL. Empty means no expiry.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid store.redis.ttl: %w", err)
	}
	return d, nil
}

// RootTemplate returns the element new documents start from. It is always
// built as the document root.
func (c *Config) RootTemplate() (dto.Element, error) {
	if c.Template == nil {
		return dto.Element{Component: "Container", ID: domain.RootNodeID, Canvas: true}, nil
	}
	el, err := dto.DecodeElement(c.Template)
	if err != nil {
		return dto.Element{}, fmt.Errorf("invalid template: %w", err)
	}
	el.ID = domain.RootNodeID
	el.Canvas = true
	return el, nil
}
