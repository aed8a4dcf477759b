package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RecordPurchaseRequest é o payload de record_quick_purchase
type RecordPurchaseRequest struct {
	ProductID  EntityID `json:"productId"`
	SupplierID EntityID `json:"supplierId"`
	Quantity   int      `json:"quantity"`
}

// RecordSaleRequest é o payload de record_quick_sale
type RecordSaleRequest struct {
	ProductID EntityID        `json:"productId"`
	Quantity  int             `json:"quantity"`
	SalePrice decimal.Decimal `json:"salePrice"`
}

// LedgerUseCase contém a lógica de negócio de compras e vendas
type LedgerUseCase struct {
	repository LedgerRepository
	clock      Clock
	config     LedgerConfig

	purchaseCounter     metric.Int64Counter
	saleCounter         metric.Int64Counter
	rejectedSaleCounter metric.Int64Counter
}

// NewLedgerUseCase cria uma nova instância de LedgerUseCase
func NewLedgerUseCase(
	repository LedgerRepository,
	clock Clock,
	config LedgerConfig,
	meter metric.Meter,
) (*LedgerUseCase, error) {
	purchaseCounter, err := meter.Int64Counter("stock.purchases.recorded",
		metric.WithDescription("Purchases committed to the ledger"))
	if err != nil {
		return nil, err
	}
	saleCounter, err := meter.Int64Counter("stock.sales.recorded",
		metric.WithDescription("Sales committed to the ledger"))
	if err != nil {
		return nil, err
	}
	rejectedSaleCounter, err := meter.Int64Counter("stock.sales.rejected",
		metric.WithDescription("Sales rejected for insufficient stock"))
	if err != nil {
		return nil, err
	}

	return &LedgerUseCase{
		repository:          repository,
		clock:               clock,
		config:              config,
		purchaseCounter:     purchaseCounter,
		saleCounter:         saleCounter,
		rejectedSaleCounter: rejectedSaleCounter,
	}, nil
}

// RecordPurchase registra uma compra e incrementa o estoque na mesma transação
func (uc *LedgerUseCase) RecordPurchase(ctx context.Context, req RecordPurchaseRequest) error {
	productID := req.ProductID.String()
	supplierID := req.SupplierID.String()

	if productID == "" || supplierID == "" || !validQuantity(req.Quantity) {
		return newValidationError("ID Produit, quantité et fournisseur valide requis pour l'achat.")
	}

	log.Printf("➡️ [PURCHASE] ProductID: %s | SupplierID: %s | Quantity: %d", productID, supplierID, req.Quantity)

	// 1. Inicia a transação
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return newPersistenceError("Erreur lors de l'enregistrement de l'achat", err)
	}
	defer tx.Rollback()

	// 2. Lock pessimista na linha do produto: serializa com vendas concorrentes
	stock, found, err := uc.repository.GetProductStockForUpdate(ctx, tx, productID)
	if err != nil {
		log.Printf("❌ PURCHASE FAILED: GetProductStockForUpdate | ProductID=%s | Error=%v", productID, err)
		return newPersistenceError("Erreur lors de l'enregistrement de l'achat", err)
	}
	if found && req.Quantity > MaxQuantity-stock {
		log.Printf("❌ PURCHASE FAILED: Stock overflow | ProductID=%s | Stock=%d | Requested=%d", productID, stock, req.Quantity)
		return newValidationError("Quantité trop élevée: le stock dépasserait la limite autorisée.")
	}

	// 3. Verificação de referências (opcional)
	if uc.config.StrictReferences {
		if !found {
			return ErrProductNotFound
		}
		exists, err := uc.repository.SupplierExists(ctx, tx, supplierID)
		if err != nil {
			return newPersistenceError("Erreur lors de l'enregistrement de l'achat", err)
		}
		if !exists {
			return ErrSupplierNotFound
		}
	}

	// 4. Registra a compra e atualiza o estoque
	purchase := NewPurchaseRecord(uuid.New().String(), productID, supplierID, req.Quantity, uc.clock.Now())
	if err := uc.repository.InsertPurchase(ctx, tx, purchase); err != nil {
		log.Printf("❌ [PURCHASE] | ProductID=%s Failed to insert: %v", productID, err)
		return newPersistenceError("Erreur lors de l'enregistrement de l'achat", err)
	}

	affected, err := uc.repository.AdjustStock(ctx, tx, productID, req.Quantity)
	if err != nil {
		log.Printf("❌ [PURCHASE] | ProductID=%s Failed to update stock: %v", productID, err)
		return newPersistenceError("Erreur lors de l'enregistrement de l'achat", err)
	}
	if affected == 0 {
		log.Printf("ℹ️ [PURCHASE] ProductID=%s not in catalog, purchase recorded without stock change", productID)
	}

	// 5. Commit da transação
	if err := tx.Commit(); err != nil {
		return newPersistenceError("Erreur lors de l'enregistrement de l'achat", err)
	}

	uc.purchaseCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("product_id", productID)))
	log.Printf("✅ [PURCHASE] Success: PurchaseID=%s", purchase.ID)
	return nil
}

// RecordSale registra uma venda e decrementa o estoque usando Lock Pessimista
func (uc *LedgerUseCase) RecordSale(ctx context.Context, req RecordSaleRequest) error {
	productID := req.ProductID.String()

	if productID == "" || !validQuantity(req.Quantity) || !validPrice(req.SalePrice) {
		return newValidationError("ID Produit, quantité et prix de vente valide requis.")
	}

	log.Printf("➡️ [SALE] ProductID: %s | Quantity: %d | SalePrice: %s", productID, req.Quantity, req.SalePrice)

	// 1. Inicia a transação
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return newPersistenceError("Erreur lors de l'enregistrement de la vente", err)
	}
	defer tx.Rollback()

	// 2. Obtém o estoque com LOCK PESSIMISTA (SELECT FOR UPDATE)
	// Isso bloqueia a linha no banco até o Commit ou Rollback
	stock, found, err := uc.repository.GetProductStockForUpdate(ctx, tx, productID)
	if err != nil {
		log.Printf("❌ SALE FAILED: GetProductStockForUpdate | ProductID=%s | Error=%v", productID, err)
		return newPersistenceError("Erreur lors de l'enregistrement de la vente", err)
	}

	// 3. Regra de Negócio: Verifica estoque
	if !found || stock < req.Quantity {
		log.Printf("❌ SALE FAILED: Insufficient stock | ProductID=%s | Stock=%d | Requested=%d", productID, stock, req.Quantity)
		uc.rejectedSaleCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("product_id", productID)))
		return ErrInsufficientStock
	}

	// 4. Registra a venda e atualiza o estoque
	sale := NewSaleRecord(uuid.New().String(), productID, req.Quantity, req.SalePrice, uc.clock.Now())
	if err := uc.repository.InsertSale(ctx, tx, sale); err != nil {
		log.Printf("❌ [SALE] | ProductID=%s Failed to insert: %v", productID, err)
		return newPersistenceError("Erreur lors de l'enregistrement de la vente", err)
	}

	if _, err := uc.repository.AdjustStock(ctx, tx, productID, -req.Quantity); err != nil {
		log.Printf("❌ [SALE] | ProductID=%s Failed to update stock: %v", productID, err)
		return newPersistenceError("Erreur lors de l'enregistrement de la vente", err)
	}

	// 5. Commit da transação
	if err := tx.Commit(); err != nil {
		return newPersistenceError("Erreur lors de l'enregistrement de la vente", err)
	}

	uc.saleCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("product_id", productID)))
	log.Printf("✅ [SALE] Success: SaleID=%s", sale.ID)
	return nil
}

// ListRecentMovements retorna as últimas movimentações (entradas e saídas)
func (uc *LedgerUseCase) ListRecentMovements(ctx context.Context, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = DefaultMovementsLimit
	}
	movements, err := uc.repository.ListRecentMovements(ctx, limit)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des mouvements", err)
	}
	return movements, nil
}

// TopPurchasedProducts retorna os produtos mais comprados
func (uc *LedgerUseCase) TopPurchasedProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = DefaultMovementsLimit
	}
	top, err := uc.repository.TopPurchasedProducts(ctx, limit)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des produits les plus achetés", err)
	}
	return top, nil
}
