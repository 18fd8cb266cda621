package global

import (
	"fmt"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	DefaultCatalogURL = "http://shopa.beauty:5000/freelancer/products"
)

// Config is read once at startup and handed to the components that need it.
type Config struct {
	Port string
	Env  string

	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	CatalogURL     string
	CatalogTimeout time.Duration

	RedisAddress   string
	RedisPassword  string
	IdempotencyTTL time.Duration

	KafkaBrokers     []string
	OrderEventsTopic string

	PostmarkToken string
	EmailSender   string

	AIEndpoint   string
	AIAPIKey     string
	AIDeployment string

	CORSOrigins []string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:             GetEnvOrDefault("PORT", "8000"),
		Env:              GetEnvOrDefault("ENV", "development"),
		StoreDriver:      GetEnvOrDefault("STORE_DRIVER", DriverPostgres),
		DatabaseURL:      GetEnvOrDefault("DATABASE_URL", ""),
		MongoURI:         GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase:    GetEnvOrDefault("MONGODB_DATABASE", "storefront"),
		CatalogURL:       GetEnvOrDefault("CATALOG_URL", DefaultCatalogURL),
		CatalogTimeout:   GetDurationOrDefault("CATALOG_TIMEOUT", 5*time.Second),
		RedisAddress:     GetEnvOrDefault("REDIS_ADDRESS", ""),
		RedisPassword:    GetEnvOrDefault("REDIS_PASSWORD", ""),
		IdempotencyTTL:   GetDurationOrDefault("IDEMPOTENCY_TTL", 24*time.Hour),
		KafkaBrokers:     GetListOrDefault("KAFKA_BROKERS", nil),
		OrderEventsTopic: GetEnvOrDefault("ORDER_EVENTS_TOPIC", "storefront.orders"),
		PostmarkToken:    GetEnvOrDefault("POSTMARK_SERVER_TOKEN", ""),
		EmailSender:      GetEnvOrDefault("EMAIL_SENDER", ""),
		AIEndpoint:       GetEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
		AIAPIKey:         GetEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
		AIDeployment:     GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
		CORSOrigins:      GetListOrDefault("CORS_ORIGINS", []string{"http://localhost:5000", "http://localhost:3000"}),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for store driver %q", cfg.StoreDriver)
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return cfg, fmt.Errorf("MONGODB_URI is required for store driver %q", cfg.StoreDriver)
		}
	case DriverMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
