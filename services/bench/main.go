package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	os.Exit(run())
}

// run devolve o código de saída; os spans pendentes são exportados antes de sair
func run() int {
	cfg, err := LoadConfig()
	if err != nil {
		log.Printf("❌ [BENCH] Invalid configuration: %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTracing(ctx, cfg.Tracing)
	if err != nil {
		log.Printf("❌ [BENCH] Failed to initialize tracing: %v", err)
		return 2
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("⚠️ [BENCH] Tracing shutdown failed: %v", err)
		}
	}()

	runner := NewRunner(NewStockClient(cfg.TargetURL, cfg.Timeout), cfg)

	report, err := runner.Run(ctx)
	if err != nil {
		log.Printf("❌ [BENCH] Benchmark failed: %v", err)
		return 1
	}

	log.Printf("📊 [BENCH] Duration=%s | Purchases=%d (%d units) | Sales=%d (%d units) | Rejected=%d | Failures=%d",
		report.Duration, report.Purchases, report.PurchasedUnits, report.Sales, report.SoldUnits, report.RejectedSales, report.Failures)
	log.Printf("📦 [BENCH] ProductID=%s | Expected stock=%d | Final stock=%d", report.ProductID, report.ExpectedStock, report.FinalStock)

	if getEnv("BENCH_CLEANUP", "true") == "true" {
		if err := runner.Cleanup(ctx, report); err != nil {
			log.Printf("⚠️ [BENCH] Cleanup failed: %v", err)
		}
	}

	if !report.Consistent() {
		log.Printf("❌ [BENCH] Stock mismatch: expected %d, got %d", report.ExpectedStock, report.FinalStock)
		return 1
	}
	log.Println("✅ [BENCH] Stock consistent")
	return 0
}
