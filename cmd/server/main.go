// Package main provides the hosted NewsLens API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sravan-dsai/newslens/internal/api"
	"github.com/sravan-dsai/newslens/internal/auth"
	"github.com/sravan-dsai/newslens/internal/billing"
	"github.com/sravan-dsai/newslens/internal/classify"
	"github.com/sravan-dsai/newslens/internal/database"
	"github.com/sravan-dsai/newslens/internal/labelmap"
)

func main() {
	// Local development convenience; ignored if the file is absent.
	_ = godotenv.Load()

	var (
		port        = flag.String("port", getEnv("PORT", "8080"), "Server port")
		migrateOnly = flag.Bool("migrate", false, "Run migrations and exit")
	)
	flag.Parse()

	// Required environment variables
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.Migrate(dbURL); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	if *migrateOnly {
		return
	}

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize auth verifier
	authIssuer := os.Getenv("AUTH_ISSUER")
	authAudience := os.Getenv("AUTH_AUDIENCE")
	if authIssuer == "" {
		log.Fatal("AUTH_ISSUER is required (e.g., https://newslens.eu.auth0.com)")
	}

	authVerifier, err := auth.NewVerifier(auth.Config{
		Issuer:   authIssuer,
		Audience: authAudience,
	})
	if err != nil {
		log.Fatalf("Failed to create auth verifier: %v", err)
	}

	// Initialize billing client
	stripeSecretKey := os.Getenv("STRIPE_SECRET_KEY")
	stripeWebhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if stripeSecretKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required")
	}
	billingClient := billing.NewClient(billing.Config{
		SecretKey:     stripeSecretKey,
		WebhookSecret: stripeWebhookSecret,
		PriceIDs: billing.PriceIDs{
			Pro:  os.Getenv("STRIPE_PRICE_PRO"),
			Team: os.Getenv("STRIPE_PRICE_TEAM"),
		},
	})

	// Initialize the classifier
	labels, err := labelmap.Load(getEnv("NEWSLENS_LABEL_MAP", "models/label_map.json"))
	if err != nil {
		log.Fatalf("Failed to load label map: %v", err)
	}

	classifier, err := classify.New(
		classify.Provider(getEnv("NEWSLENS_PROVIDER", "huggingface")),
		labels,
		classify.Options{Model: os.Getenv("NEWSLENS_MODEL")},
	)
	if err != nil {
		log.Fatalf("Failed to create classifier: %v", err)
	}

	maxBatch := 100
	if v := os.Getenv("NEWSLENS_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxBatch = n
		}
	}

	// Create API server
	server := api.NewServer(api.Config{
		DB:            db,
		AuthVerifier:  authVerifier,
		BillingClient: billingClient,
		Classifier:    classifier,
		MaxBatchSize:  maxBatch,
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%s", *port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
