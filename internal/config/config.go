// Package config loads server configuration from a YAML file with
// environment variable overrides, so containers can tweak single values
// without shipping a new file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`
	TrustProxy  bool   `yaml:"trust_proxy"`

	Session struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`

	RateLimit struct {
		AuthPerMinute int `yaml:"auth_per_minute"`
	} `yaml:"rate_limit"`

	Storage struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"storage"`

	Queue struct {
		Enabled bool   `yaml:"enabled"`
		Stream  string `yaml:"stream"`
		Group   string `yaml:"group"`
	} `yaml:"queue"`
}

// Default returns the configuration used when no file or env is present.
func Default() Config {
	var c Config
	c.Addr = ":8080"
	c.LogLevel = "info"
	c.Session.TTL = 24 * time.Hour
	c.RateLimit.AuthPerMinute = 20
	c.Storage.Bucket = "bookshare-materials"
	c.Queue.Stream = "bookshare:notifications"
	c.Queue.Group = "delivery"
	return c
}

// Load reads the YAML file at path (optional), applies env overrides and
// validates the result.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	setString(&c.Addr, "BOOKSHARE_ADDR")
	setString(&c.DatabaseURL, "BOOKSHARE_DATABASE_URL")
	setString(&c.LogLevel, "BOOKSHARE_LOG_LEVEL")
	setBool(&c.TrustProxy, "BOOKSHARE_TRUST_PROXY")
	setString(&c.Session.Secret, "BOOKSHARE_SESSION_SECRET")
	setDuration(&c.Session.TTL, "BOOKSHARE_SESSION_TTL")
	setString(&c.Redis.Addr, "BOOKSHARE_REDIS_ADDR")
	setString(&c.Redis.Password, "BOOKSHARE_REDIS_PASSWORD")
	setInt(&c.RateLimit.AuthPerMinute, "BOOKSHARE_AUTH_RATE_LIMIT")
	setString(&c.Storage.Endpoint, "BOOKSHARE_STORAGE_ENDPOINT")
	setString(&c.Storage.AccessKey, "BOOKSHARE_STORAGE_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "BOOKSHARE_STORAGE_SECRET_KEY")
	setString(&c.Storage.Bucket, "BOOKSHARE_STORAGE_BUCKET")
	setBool(&c.Storage.UseSSL, "BOOKSHARE_STORAGE_USE_SSL")
	setBool(&c.Queue.Enabled, "BOOKSHARE_QUEUE_ENABLED")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session secret is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.RateLimit.AuthPerMinute < 0 {
		return errors.New("auth rate limit must not be negative")
	}
	if c.Queue.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("queue requires a redis addr")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
