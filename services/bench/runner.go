package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Report resume uma execução do benchmark
type Report struct {
	ProductID      string
	SupplierID     string
	Operations     int
	Purchases      int64
	Sales          int64
	RejectedSales  int64
	Failures       int64
	PurchasedUnits int64
	SoldUnits      int64
	ExpectedStock  int64
	FinalStock     int64
	Duration       time.Duration
}

// Consistent indica se o estoque final bate com o histórico e nunca ficou negativo
func (r *Report) Consistent() bool {
	return r.FinalStock == r.ExpectedStock && r.FinalStock >= 0
}

// Runner dispara compras e vendas concorrentes sobre um único produto
type Runner struct {
	client *StockClient
	cfg    Config
}

// NewRunner cria um novo Runner
func NewRunner(client *StockClient, cfg Config) *Runner {
	return &Runner{client: client, cfg: cfg}
}

// Run autentica, semeia o catálogo e dispara as operações concorrentes
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.client.Login(ctx, r.cfg.Username, r.cfg.Password); err != nil {
		return nil, err
	}

	runID := uuid.New().String()[:8]
	supplierID, err := r.client.AddSupplier(ctx, "bench-supplier-"+runID)
	if err != nil {
		return nil, err
	}
	productID, err := r.client.AddProduct(ctx, "bench-product-"+runID, r.cfg.InitialStock, decimal.RequireFromString("10.00"), supplierID)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 [BENCH] Run %s | ProductID=%s | Workers=%d | Operations=%d", runID, productID, r.cfg.Workers, r.cfg.Operations)

	report := &Report{ProductID: productID, SupplierID: supplierID, Operations: r.cfg.Operations}
	var purchases, sales, rejected, failures, purchasedUnits, soldUnits atomic.Int64

	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				quantity := rand.IntN(r.cfg.MaxQuantity) + 1

				if rand.IntN(2) == 0 {
					if err := r.client.RecordPurchase(ctx, productID, supplierID, quantity); err != nil {
						failures.Add(1)
						log.Printf("❌ [BENCH] Purchase failed: %v", err)
						continue
					}
					purchases.Add(1)
					purchasedUnits.Add(int64(quantity))
					continue
				}

				err := r.client.RecordSale(ctx, productID, quantity, decimal.RequireFromString("12.00"))
				switch {
				case err == nil:
					sales.Add(1)
					soldUnits.Add(int64(quantity))
				case errors.Is(err, ErrRejected):
					rejected.Add(1)
				default:
					failures.Add(1)
					log.Printf("❌ [BENCH] Sale failed: %v", err)
				}
			}
		}()
	}

	for i := 0; i < r.cfg.Operations; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	report.Duration = time.Since(start)
	report.Purchases = purchases.Load()
	report.Sales = sales.Load()
	report.RejectedSales = rejected.Load()
	report.Failures = failures.Load()
	report.PurchasedUnits = purchasedUnits.Load()
	report.SoldUnits = soldUnits.Load()
	report.ExpectedStock = int64(r.cfg.InitialStock) + report.PurchasedUnits - report.SoldUnits

	finalStock, err := r.stockOf(ctx, productID)
	if err != nil {
		return nil, err
	}
	report.FinalStock = finalStock

	return report, nil
}

// Cleanup remove o produto e o fornecedor criados pela execução
func (r *Runner) Cleanup(ctx context.Context, report *Report) error {
	return errors.Join(
		r.client.DeleteProduct(ctx, report.ProductID),
		r.client.DeleteSupplier(ctx, report.SupplierID),
	)
}

func (r *Runner) stockOf(ctx context.Context, productID string) (int64, error) {
	products, err := r.client.ProductDetails(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.ID == productID {
			return int64(p.Quantity), nil
		}
	}
	return 0, fmt.Errorf("product %s not found after run", productID)
}
