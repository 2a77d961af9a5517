// Package config loads the sleepat configuration once at startup: defaults,
// then an optional YAML file, then SLEEPAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sleepat/internal/timer"
)

const AppName = "sleepat"

type Config struct {
	Listen   string `yaml:"listen"`
	Server   string `yaml:"server"`
	DataDir  string `yaml:"data_dir"`
	Database string `yaml:"database"`

	DefaultMinutes int           `yaml:"default_minutes"`
	ExtendSeconds  int           `yaml:"extend_seconds"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	Language       string        `yaml:"language"`

	LockOnExpiry bool     `yaml:"lock_on_expiry"`
	MediaCommand []string `yaml:"media_command"`
	LockCommand  []string `yaml:"lock_command"`

	Notify    NotifyConfig    `yaml:"notify"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func Default() *Config {
	dataDir := DataDir(AppName)
	return &Config{
		Listen:         "127.0.0.1:7171",
		Server:         "http://127.0.0.1:7171",
		DataDir:        dataDir,
		Database:       filepath.Join(dataDir, "sleepat.db"),
		DefaultMinutes: 15,
		ExtendSeconds:  600,
		TickInterval:   time.Second,
		Language:       "es",
		LockOnExpiry:   true,
		MediaCommand:   []string{"playerctl", "--all-players", "pause"},
		LockCommand:    []string{"loginctl", "lock-session"},
		Notify: NotifyConfig{
			Enabled: false,
			Command: "notify-send",
		},
		Redis: RedisConfig{
			Prefix: "sleepat:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			PerSecond: 5,
			Burst:     20,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sleepat/config.yaml.
func DefaultPath() string {
	return filepath.Join(ConfigDir(AppName), "config.yaml")
}

// Load reads the configuration. An empty path means DefaultPath, which may
// be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()

	if cfg.Database == "" {
		cfg.Database = filepath.Join(cfg.DataDir, "sleepat.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Listen = getEnvString("SLEEPAT_LISTEN", c.Listen)
	c.Server = getEnvString("SLEEPAT_SERVER", c.Server)
	if dir := os.Getenv("SLEEPAT_DATA_DIR"); dir != "" {
		c.DataDir = dir
		c.Database = filepath.Join(dir, "sleepat.db")
	}
	c.Database = getEnvString("SLEEPAT_DATABASE", c.Database)
	c.DefaultMinutes = getEnvInt("SLEEPAT_DEFAULT_MINUTES", c.DefaultMinutes)
	c.ExtendSeconds = getEnvInt("SLEEPAT_EXTEND_SECONDS", c.ExtendSeconds)
	c.TickInterval = getEnvDuration("SLEEPAT_TICK_INTERVAL", c.TickInterval)
	c.Language = getEnvString("SLEEPAT_LANGUAGE", c.Language)
	c.LockOnExpiry = getEnvBool("SLEEPAT_LOCK_ON_EXPIRY", c.LockOnExpiry)
	c.MediaCommand = getEnvFields("SLEEPAT_MEDIA_COMMAND", c.MediaCommand)
	c.LockCommand = getEnvFields("SLEEPAT_LOCK_COMMAND", c.LockCommand)
	c.Notify.Enabled = getEnvBool("SLEEPAT_NOTIFY", c.Notify.Enabled)
	c.Redis.Addr = getEnvString("SLEEPAT_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvString("SLEEPAT_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Prefix = getEnvString("SLEEPAT_REDIS_PREFIX", c.Redis.Prefix)
	c.Log.Level = getEnvString("SLEEPAT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvString("SLEEPAT_LOG_FORMAT", c.Log.Format)
}

func (c *Config) Validate() error {
	var problems []string
	if c.DefaultMinutes <= 0 || c.DefaultMinutes > timer.MaxMinutes {
		problems = append(problems, fmt.Sprintf("default_minutes must be between 1 and %d", timer.MaxMinutes))
	}
	if c.ExtendSeconds <= 0 {
		problems = append(problems, "extend_seconds must be positive")
	}
	if c.TickInterval <= 0 {
		problems = append(problems, "tick_interval must be positive")
	}
	if len(c.MediaCommand) == 0 {
		problems = append(problems, "media_command must not be empty")
	}
	if len(c.LockCommand) == 0 {
		problems = append(problems, "lock_command must not be empty")
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		problems = append(problems, "rate_limit needs positive per_second and burst")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DataDir returns the per-user data directory for app.
func DataDir(app string) string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, app)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", app)
	}
	return filepath.Join(home, ".local", "share", app)
}

// ConfigDir returns the per-user configuration directory for app.
func ConfigDir(app string) string {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, app)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", app)
	}
	return filepath.Join(home, ".config", app)
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvFields(key string, defaultVal []string) []string {
	fields := strings.Fields(os.Getenv(key))
	if len(fields) == 0 {
		return defaultVal
	}
	return fields
}
