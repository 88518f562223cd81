package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/denizk/portfolio-analytics/internal/api"
	"github.com/denizk/portfolio-analytics/internal/cache"
	"github.com/denizk/portfolio-analytics/internal/config"
	"github.com/denizk/portfolio-analytics/internal/database"
	"github.com/denizk/portfolio-analytics/internal/engine"
	"github.com/denizk/portfolio-analytics/internal/kafka"
)

func main() {
	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("db/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Rates are read through Redis when an address is configured;
	// otherwise the engine reads straight from Postgres.
	var rateStore engine.RateStore = db
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()
		rateStore = cache.NewRates(db, client, cfg.Redis.RateTTL)
		log.Printf("Rate cache enabled at %s", cfg.Redis.Addr)
	}

	eng := engine.New(db, rateStore)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.FetchTopic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.MarketTopic, cfg.Kafka.ConsumerGroup, db)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		log.Printf("Kafka consumer starting on topic %s", cfg.Kafka.MarketTopic)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Kafka consumer stopped: %v", err)
		}
	}()

	handler := api.NewHandler(db, eng, producer)
	router := api.SetupRoutes(handler)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	waitForShutdown(server, cancel)
}

// waitForShutdown waits for SIGTERM or SIGINT, stops the consumer and
// gracefully shuts down the HTTP server.
func waitForShutdown(server *http.Server, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
