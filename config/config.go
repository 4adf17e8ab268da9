package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/vacina-dashboard/internal/backend"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/pkg/logger"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BackendConfig struct {
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PageSize        int           `mapstructure:"page_size"`
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type SessionConfig struct {
	Store    string        `mapstructure:"store"`
	TTL      time.Duration `mapstructure:"ttl"`
	LoginURL string        `mapstructure:"login_url"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Prefix       string        `mapstructure:"prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type ScreensConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Screens   ScreensConfig   `mapstructure:"screens"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Security  struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"security"`
	Log LogConfig `mapstructure:"log"`
}

// env holds the DASH_* overrides applied after the config file.
type env struct {
	BackendURL   string `envconfig:"BACKEND_URL"`
	Port         int    `envconfig:"PORT"`
	SessionStore string `envconfig:"SESSION_STORE"`
	RedisURL     string `envconfig:"REDIS_URL"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	LogFormat    string `envconfig:"LOG_FORMAT"`
}

// DefaultPaths are searched for config.yml in order.
var DefaultPaths = []string{".", "./config", "/app", "/app/config"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.url", "http://localhost:8080/api/v1")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("backend.page_size", 1000)
	v.SetDefault("backend.breaker_failures", 5)
	v.SetDefault("backend.breaker_timeout", 10*time.Second)

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.ttl", session.DefaultTTL)
	v.SetDefault("session.login_url", "/login")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.prefix", "vacina-dashboard:session:")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("screens.ttl", 30*time.Minute)
	v.SetDefault("screens.debounce", 300*time.Millisecond)

	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("security.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads .env, config.yml from DefaultPaths and the DASH_*
// environment, in that order of precedence from lowest to highest.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(DefaultPaths...)
}

// Load reads config.yml from the first of paths that has one. A missing
// file leaves the defaults in place.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var overrides env
	if err := envconfig.Process("DASH", &overrides); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.apply(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) apply(e env) {
	if e.BackendURL != "" {
		c.Backend.URL = e.BackendURL
	}
	if e.Port != 0 {
		c.Server.Port = e.Port
	}
	if e.SessionStore != "" {
		c.Session.Store = e.SessionStore
	}
	if e.RedisURL != "" {
		c.Redis.URL = e.RedisURL
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Log.Format = e.LogFormat
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url %q", c.Backend.URL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	return nil
}

// Conversion methods to the component configs

func (c *Config) BackendClient() backend.Config {
	return backend.Config{
		BaseURL:         c.Backend.URL,
		Timeout:         c.Backend.Timeout,
		PageSize:        c.Backend.PageSize,
		BreakerFailures: c.Backend.BreakerFailures,
		BreakerTimeout:  c.Backend.BreakerTimeout,
	}
}

func (c *Config) RedisStore() session.RedisConfig {
	return session.RedisConfig{
		URL:          c.Redis.URL,
		Prefix:       c.Redis.Prefix,
		TTL:          c.Session.TTL,
		MaxRetries:   c.Redis.MaxRetries,
		RetryBackoff: c.Redis.RetryBackoff,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
	}
}

func (c *Config) ScreenRegistry() screens.Config {
	return screens.Config{
		TTL:      c.Screens.TTL,
		Debounce: c.Screens.Debounce,
	}
}

func (c *Config) Logger() *logger.Config {
	return &logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	}
}
