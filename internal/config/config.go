package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"dev"`

	ListenAddress string `split_words:"true" default:":8080"`
	AllowedOrigin string `split_words:"true" default:"*"`

	APIBaseURL   string        `envconfig:"API_BASE_URL" default:"http://localhost:4321/api"`
	APITimeout   time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	APIRateLimit float64       `envconfig:"API_RATE_LIMIT" default:"20"`
	APIRateBurst int           `envconfig:"API_RATE_BURST" default:"10"`

	PageCacheTTL    time.Duration `envconfig:"PAGE_CACHE_TTL" default:"0s"`
	SessionLifetime time.Duration `split_words:"true" default:"24h"`
}

// IsEnvProduction returns whether the application is running in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.EqualFold(config.Environment, "prod") || strings.EqualFold(config.Environment, "production")
}

// IsPageCacheEnabled returns whether remote pages should be cached
func (config *Config) IsPageCacheEnabled() bool {
	return config.PageCacheTTL > 0
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("pokedex", config); err != nil {
		return nil, err
	}
	if config.SessionLifetime <= 0 {
		config.SessionLifetime = 24 * time.Hour
	}
	return config, nil
}
