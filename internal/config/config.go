package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/joho/godotenv/autoload"

	"zelia-app/internal/utils/mongodb"
)

// Config holds all application configuration
type Config struct {
	MongoDB      mongodb.Config
	Redis        RedisConfig
	Server       ServerConfig
	Internal     InternalConfig
	Auth         AuthConfig
	Subscription SubscriptionConfig
	Progression  ProgressionConfig
	CORS         CORSConfig
}

// ServerConfig holds the public API settings
type ServerConfig struct {
	Port string `env:"SERVER_PORT" envDefault:"8090"`
}

// InternalConfig holds the service-to-service API settings
type InternalConfig struct {
	Port           string `env:"INTERNAL_PORT" envDefault:"8091"`
	ServiceKeyHash string `env:"INTERNAL_SERVICE_KEY_HASH"`
}

type RedisConfig struct {
	URL              string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ProgressionTTL   time.Duration `env:"PROGRESSION_CACHE_TTL" envDefault:"5m"`
	EntitlementTTL   time.Duration `env:"ENTITLEMENT_CACHE_TTL" envDefault:"1m"`
	NotificationChan string        `env:"NOTIFICATION_CHANNEL" envDefault:"notifications"`
}

// AuthConfig selects how bearer tokens are checked. With JWT_SECRET set,
// tokens are verified locally, otherwise AUTH_SERVICE_URL is asked.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	URL       string `env:"AUTH_SERVICE_URL" envDefault:"http://auth-service:8081"`
}

type SubscriptionConfig struct {
	URL string `env:"SUBSCRIPTION_SERVICE_URL" envDefault:"http://subscription-service:8004"`
}

type ProgressionConfig struct {
	PaidGateLevel int `env:"PAID_GATE_LEVEL" envDefault:"10"`
}

type CORSConfig struct {
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// NewConfig creates a new Config
func NewConfig() (*Config, error) {
	cfg := new(Config)
	err := env.Parse(cfg)

	return cfg, err
}
