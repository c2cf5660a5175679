package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pasar/internal/config"
	"pasar/internal/database"
	"pasar/internal/events"
	"pasar/internal/payments"
	"pasar/internal/server"
	"pasar/internal/session"
	"pasar/internal/uploads"

	"github.com/joho/godotenv"
)

func main() {
	// --- Configuration ---
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not read .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(database.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	sessions, closeSessions := sessionStore(ctx, cfg)
	cancel()
	defer closeSessions()

	// --- Event publisher ---
	publisher, err := events.New(events.Options{
		Broker:       cfg.EventsBroker,
		RabbitMQURL:  cfg.RabbitMQURL,
		KafkaBrokers: cfg.KafkaBrokers,
		Topic:        cfg.EventsTopic,
	})
	if err != nil {
		log.Fatalf("Failed to initialize %s publisher: %v", cfg.EventsBroker, err)
	}
	defer publisher.Close() // Ensure the connection is closed on exit

	app := server.New(server.Dependencies{
		DB:         db,
		JWTSecret:  jwtSecret(cfg),
		TokenTTL:   cfg.TokenTTL,
		Currency:   cfg.Currency,
		Sessions:   sessions,
		Publisher:  publisher,
		Gateway:    payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		Uploader:   uploads.NewClient(cfg.ImageUploadURL, cfg.ImageUploadKey),
		RequestLog: true,
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}

// sessionStore uses Redis for revoked tokens when REDIS_URL is set and falls
// back to process memory otherwise.
func sessionStore(ctx context.Context, cfg config.Config) (session.Store, func()) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(), func() {}
	}
	store, err := session.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: %v; revoked tokens are kept in memory", err)
		return session.NewMemoryStore(), func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing redis: %v", err)
		}
	}
}

// jwtSecret returns the configured secret. Config only allows it to be empty
// for sqlite, where a random per-process secret is used.
func jwtSecret(cfg config.Config) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}
	log.Println("Warning: JWT_SECRET not set, tokens will not survive a restart")
	return hex.EncodeToString(buf)
}
