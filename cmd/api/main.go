// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"

	"poidash/internal/adapter/analytics"
	"poidash/internal/adapter/events"
	"poidash/internal/adapter/storage"
	"poidash/internal/config"
	"poidash/internal/domain/dashboard"
	"poidash/internal/server"
	dashboardService "poidash/internal/service/dashboard"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Remote analytics API
	source := analytics.NewClient(cfg.Analytics.BaseURL, cfg.Analytics.Timeout)

	// Event bus
	bus, err := initBus(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	// Share link storage
	shares, closeShares, err := initShareStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize share store: %v", err)
	}
	defer closeShares()

	httpServer := server.NewServer(
		cfg.Server,
		source,
		bus,
		shares,
		dashboardService.SessionConfig{
			PageLimit:      cfg.Dashboard.PageLimit,
			SearchDebounce: cfg.Dashboard.SearchDebounce,
			RefreshTimeout: cfg.Dashboard.RefreshTimeout,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
		},
	)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d (analytics API %s)", cfg.Server.Host, cfg.Server.Port, cfg.Analytics.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// initBus connects to NATS, or falls back to the in-process bus when no URL is set
func initBus(cfg config.NATSConfig) (dashboard.EventBus, error) {
	if cfg.URL == "" {
		log.Println("NATS_URL not set, using in-process event bus")
		return events.NewMemoryBus(), nil
	}
	return events.Connect(cfg)
}

// initShareStore opens the Postgres share store, or an in-memory one when the database is disabled
func initShareStore(ctx context.Context, cfg config.DatabaseConfig) (dashboard.ShareStore, func(), error) {
	if !cfg.Enabled {
		log.Println("Database disabled, share links are kept in memory")
		return storage.NewMemoryShareStore(), func() {}, nil
	}

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewShareStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, db.Close, nil
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}
