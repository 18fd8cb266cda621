package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/shopa-beauty/storefront-api/internal/router"
	"github.com/shopa-beauty/storefront-api/pkg/ai"
	"github.com/shopa-beauty/storefront-api/pkg/catalog"
	"github.com/shopa-beauty/storefront-api/pkg/events"
	"github.com/shopa-beauty/storefront-api/pkg/global"
	"github.com/shopa-beauty/storefront-api/pkg/memstore"
	"github.com/shopa-beauty/storefront-api/pkg/metrics"
	"github.com/shopa-beauty/storefront-api/pkg/mongo"
	"github.com/shopa-beauty/storefront-api/pkg/notify"
	"github.com/shopa-beauty/storefront-api/pkg/postgres"
	"github.com/shopa-beauty/storefront-api/pkg/redis"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

func openStore(cfg global.Config) (shop.Store, func(), error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	switch cfg.StoreDriver {
	case global.DriverMongo:
		store, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close(context.Background()) }, nil
	case global.DriverMemory:
		log.Println("Using in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	default:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := global.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	serverMetrics := metrics.NewServerMetrics("api")
	opts := []shop.Option{shop.WithListener(serverMetrics)}

	if publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic); publisher != nil {
		defer publisher.Close()
		opts = append(opts, shop.WithListener(publisher))
	}
	if mailer := notify.NewEmailService(cfg.PostmarkToken, cfg.EmailSender); mailer != nil {
		opts = append(opts, shop.WithListener(mailer))
	}

	deps := router.Deps{
		Config:  cfg,
		Shop:    shop.NewService(store, catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout), opts...),
		AI:      ai.NewClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AIDeployment),
		Metrics: serverMetrics,
	}

	if cfg.RedisAddress != "" {
		ctx, cancel := global.GetDefaultTimer()
		client, err := redis.NewClient(ctx, cfg.RedisAddress, cfg.RedisPassword)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		deps.Keys = redis.NewCheckoutKeys(client, cfg.IdempotencyTTL)
	} else {
		log.Println("Checkout idempotency disabled - REDIS_ADDRESS not provided")
	}

	engine := router.New(deps)

	log.Printf("Server is running on port %s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
