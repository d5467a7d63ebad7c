package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/store"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DataConfig describes where the dashboard documents come from
type DataConfig struct {
	// Source is "http" (BaseURL) or "file" (Dir)
	Source          string        `yaml:"source"`
	BaseURL         string        `yaml:"base_url"`
	Dir             string        `yaml:"dir"`
	Timeout         time.Duration `yaml:"timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Cache is "memory", "redis" or "none"
	Cache     string        `yaml:"cache"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	RedisAddr string        `yaml:"redis_addr"`
}

// IntakeConfig holds intake ledger settings
type IntakeConfig struct {
	Namespace string `yaml:"namespace"`
}

// TeamConfig identifies the tracked team and the season shape
type TeamConfig struct {
	Code            string `yaml:"code"`
	Name            string `yaml:"name"`
	Match           string `yaml:"match"`
	PlayoffCutoff   int    `yaml:"playoff_cutoff"`
	FinalFourCutoff int    `yaml:"final_four_cutoff"`
	SeasonGames     int    `yaml:"season_games"`
	Simulations     int    `yaml:"simulations"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Pretty     bool   `yaml:"pretty"`
}

// RateLimitConfig bounds mutating API requests
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Store     store.Config    `yaml:"store"`
	Intake    IntakeConfig    `yaml:"intake"`
	Team      TeamConfig      `yaml:"team"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Source:          "file",
			Dir:             "./data",
			Timeout:         15 * time.Second,
			RefreshInterval: time.Hour,
			Cache:           "memory",
			CacheTTL:        24 * time.Hour,
			RedisAddr:       "localhost:6379",
		},
		Store: store.Config{
			Driver:      store.DriverFile,
			Dir:         "./data/intake",
			RedisAddr:   "localhost:6379",
			RedisPrefix: store.DefaultRedisPrefix,
		},
		Intake: IntakeConfig{
			Namespace: "waterTracker",
		},
		Team: TeamConfig{
			Code:            "TEL",
			Name:            "Maccabi Tel Aviv",
			Match:           "Maccabi",
			PlayoffCutoff:   8,
			FinalFourCutoff: 4,
			SeasonGames:     34,
			Simulations:     10000,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Pretty:     true,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 10,
		},
	}
}

// Load builds the configuration: defaults, then .env, then the optional YAML
// file named by CONFIG_FILE, then environment variables
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	c.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Data.Source = getEnv("DATA_SOURCE", c.Data.Source)
	c.Data.BaseURL = getEnv("DATA_BASE_URL", c.Data.BaseURL)
	c.Data.Dir = getEnv("DATA_DIR", c.Data.Dir)
	c.Data.Timeout = getEnvDuration("DATA_TIMEOUT", c.Data.Timeout)
	c.Data.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", c.Data.RefreshInterval)
	c.Data.Cache = getEnv("DATA_CACHE", c.Data.Cache)
	c.Data.CacheTTL = getEnvDuration("DATA_CACHE_TTL", c.Data.CacheTTL)
	c.Data.RedisAddr = getEnv("DATA_REDIS_ADDR", c.Data.RedisAddr)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.Dir = getEnv("STORE_DIR", c.Store.Dir)
	c.Store.RedisAddr = getEnv("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvInt("REDIS_DB", c.Store.RedisDB)
	c.Store.RedisPrefix = getEnv("REDIS_PREFIX", c.Store.RedisPrefix)
	c.Store.PostgresDSN = getEnv("DATABASE_URL", c.Store.PostgresDSN)

	c.Intake.Namespace = getEnv("INTAKE_NAMESPACE", c.Intake.Namespace)

	c.Team.Code = getEnv("TEAM_CODE", c.Team.Code)
	c.Team.Name = getEnv("TEAM_NAME", c.Team.Name)
	c.Team.Match = getEnv("TEAM_MATCH", c.Team.Match)
	c.Team.PlayoffCutoff = getEnvInt("PLAYOFF_CUTOFF", c.Team.PlayoffCutoff)
	c.Team.FinalFourCutoff = getEnvInt("FINAL_FOUR_CUTOFF", c.Team.FinalFourCutoff)
	c.Team.SeasonGames = getEnvInt("SEASON_GAMES", c.Team.SeasonGames)
	c.Team.Simulations = getEnvInt("SIMULATIONS", c.Team.Simulations)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.Log.MaxSizeMB)
	c.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.Log.MaxBackups)
	c.Log.Pretty = getEnvBool("LOG_PRETTY", c.Log.Pretty)

	c.RateLimit.RPS = getEnvFloat("RATE_LIMIT_RPS", c.RateLimit.RPS)
	c.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", c.RateLimit.Burst)
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "http":
		if c.Data.BaseURL == "" {
			return fmt.Errorf("data source http requires DATA_BASE_URL")
		}
	case "file":
		if c.Data.Dir == "" {
			return fmt.Errorf("data source file requires DATA_DIR")
		}
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}

	switch c.Data.Cache {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown data cache %q", c.Data.Cache)
	}

	if c.Store.Driver == store.DriverPostgres && c.Store.PostgresDSN == "" {
		return fmt.Errorf("store driver postgres requires DATABASE_URL")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty items
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
