// Package config loads market-engine configuration from config.yaml with
// environment variable overrides. Secrets (passwords, API keys) must only
// come from environment variables.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for market-engine.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Market   MarketConfig   `yaml:"market"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"market"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"market_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration for the analysis cache.
// An empty host disables Redis-backed caching.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// AIConfig holds the reasoning-engine endpoint configuration. Any
// OpenAI-compatible endpoint works.
type AIConfig struct {
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// MarketConfig holds tuning knobs for the market intelligence core.
type MarketConfig struct {
	// CacheTTLHours is the absolute expiry window for cached analyses.
	CacheTTLHours int `yaml:"cache_ttl_hours" env:"MARKET_CACHE_TTL_HOURS" env-default:"24"`
	// MaxCompetitors caps how many records (top by confidence) feed one
	// analysis payload.
	MaxCompetitors int `yaml:"max_competitors" env:"MARKET_MAX_COMPETITORS" env-default:"20"`
	// Temperature for the first reasoning attempt; RetryTemperature is the
	// deterministic-leaning fallback used on the second and final attempt.
	Temperature      float64 `yaml:"temperature" env:"MARKET_TEMPERATURE" env-default:"0.7"`
	RetryTemperature float64 `yaml:"retry_temperature" env:"MARKET_RETRY_TEMPERATURE" env-default:"0.2"`
	// AmenityVocabulary is the fixed amenity set measured for prevalence.
	AmenityVocabulary []string `yaml:"amenity_vocabulary"`
}

// DefaultAmenityVocabulary is used when the YAML provides none.
var DefaultAmenityVocabulary = []string{
	"swimming_pool",
	"gym",
	"clubhouse",
	"children_play_area",
	"landscaped_gardens",
	"jogging_track",
	"indoor_games",
	"power_backup",
	"security_24x7",
	"covered_parking",
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if len(cfg.Market.AmenityVocabulary) == 0 {
		cfg.Market.AmenityVocabulary = DefaultAmenityVocabulary
	}
	if cfg.Market.CacheTTLHours <= 0 {
		return nil, fmt.Errorf("market.cache_ttl_hours must be positive")
	}
	if cfg.Market.MaxCompetitors <= 0 {
		return nil, fmt.Errorf("market.max_competitors must be positive")
	}

	return cfg, nil
}
