package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"

	CacheBackendNone  = "none"
	CacheBackendLocal = "local"
	CacheBackendRedis = "redis"
)

type Config struct {
	Environment string `toml:"-"`

	Host                  string `toml:"host"`
	Port                  int    `toml:"port"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// record store
	StoreBackend   string `toml:"store_backend"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	SQLitePath     string `toml:"sqlite_path"`

	// analytics cache
	CacheBackend       string `toml:"cache_backend"`
	CacheSizeMegabytes int    `toml:"cache_size_mb"`
	CacheTTLSeconds    int    `toml:"cache_ttl_seconds"`
	RedisHost          string `toml:"redis_host"`
	RedisPort          string `toml:"redis_port"`

	MCPRateLimitAllowedPerMin int      `toml:"mcp_rate_limit_allowed_per_min"`
	AllowedOrigins            []string `toml:"allowed_origins"`

	Progression ProgressionConfig `toml:"progression"`
	Goals       GoalsConfig       `toml:"goals"`
}

// ProgressionConfig holds the knobs of the progressive-overload strategies.
type ProgressionConfig struct {
	Strategy     string  `toml:"strategy"`
	Increment    float64 `toml:"increment"`
	DeloadFactor float64 `toml:"deload_factor"`
}

type GoalsConfig struct {
	// Concurrency is the max number of goals evaluated at once in a batch.
	Concurrency int `toml:"concurrency"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied to unset values.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}

	return fromToml(&t, env)
}

// Parse is Load for in-memory TOML content.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}

	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendPostgres
	}
	if c.CacheBackend == "" {
		c.CacheBackend = CacheBackendLocal
	}
	if c.CacheSizeMegabytes <= 0 {
		c.CacheSizeMegabytes = 10
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 300
	}
	if c.MCPRateLimitAllowedPerMin <= 0 {
		c.MCPRateLimitAllowedPerMin = 60
	}
	if c.Progression.Strategy == "" {
		c.Progression.Strategy = "weekly"
	}
	if c.Progression.Increment <= 0 {
		c.Progression.Increment = 5
	}
	if c.Progression.DeloadFactor <= 0 {
		c.Progression.DeloadFactor = 0.75
	}
	if c.Goals.Concurrency <= 0 {
		c.Goals.Concurrency = 4
	}
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreBackendPostgres, StoreBackendSQLite:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	switch c.CacheBackend {
	case CacheBackendNone, CacheBackendLocal, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.CacheBackend)
	}
	if c.StoreBackend == StoreBackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("sqlite store backend requires sqlite_path")
	}
	if c.Progression.DeloadFactor >= 1 {
		return fmt.Errorf("progression deload_factor must be < 1, got %v", c.Progression.DeloadFactor)
	}
	return nil
}
