package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	telemetry, err := initTelemetry(ctx, cfg.ServiceName, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	// Initialize database
	if cfg.Database.RunMigrations {
		if err := runMigrations(ctx, cfg.Database); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}

	dbPool, err := initDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbPool.Close()

	// Initialize dependencies
	clock := RealClock{}
	catalogRepository := NewCatalogRepository(dbPool)
	ledgerRepository := NewLedgerRepository(dbPool)

	catalog := NewCatalogUseCase(catalogRepository, clock, cfg.Catalog)
	ledger, err := NewLedgerUseCase(ledgerRepository, clock, cfg.Ledger, telemetry.Meter)
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}
	queries := NewQueryUseCase(catalogRepository, catalog, ledger)
	auth := NewStaticAuthenticator(cfg.Auth)

	handler := NewStockHandler(catalog, ledger, queries, auth, telemetry.Tracer, cfg.ServiceName)

	// Setup Gin router
	r := gin.Default()
	if cfg.Telemetry.Enabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	handler.RegisterRoutes(r)

	log.Printf("🚀 Stock Service listening on port %s", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Println("👋 Stock Service stopped")
}
