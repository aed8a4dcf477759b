package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository define a interface para operações de banco de dados do ledger de estoque
type LedgerRepository interface {
	BeginTx(ctx context.Context) (Tx, error)

	// GetProductStockForUpdate lê o estoque com lock pessimista; found=false se o produto não existe
	GetProductStockForUpdate(ctx context.Context, tx Tx, productID string) (stock int, found bool, err error)
	SupplierExists(ctx context.Context, tx Tx, supplierID string) (bool, error)

	InsertPurchase(ctx context.Context, tx Tx, purchase *PurchaseRecord) error
	InsertSale(ctx context.Context, tx Tx, sale *SaleRecord) error
	// AdjustStock soma delta ao estoque e retorna o número de linhas afetadas
	AdjustStock(ctx context.Context, tx Tx, productID string, delta int) (int64, error)

	ListRecentMovements(ctx context.Context, limit int) ([]Movement, error)
	TopPurchasedProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

// PostgresLedgerRepository implementa LedgerRepository usando PostgreSQL
type PostgresLedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository cria uma nova instância de PostgresLedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) LedgerRepository {
	return &PostgresLedgerRepository{
		db: db,
	}
}

// BeginTx inicia uma nova transação
func (r *PostgresLedgerRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

// GetProductStockForUpdate obtém o estoque do produto com lock pessimista (FOR UPDATE)
func (r *PostgresLedgerRepository) GetProductStockForUpdate(ctx context.Context, tx Tx, productID string) (int, bool, error) {
	query := `
		SELECT quantity
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var stock int
	err := pgxTx(tx).QueryRow(ctx, query, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get product with lock: %w", err)
	}

	return stock, true, nil
}

// SupplierExists verifica, dentro da transação, se o fornecedor existe
func (r *PostgresLedgerRepository) SupplierExists(ctx context.Context, tx Tx, supplierID string) (bool, error) {
	var exists bool
	err := pgxTx(tx).QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1)", supplierID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check supplier: %w", err)
	}
	return exists, nil
}

// InsertPurchase registra uma entrada no ledger
func (r *PostgresLedgerRepository) InsertPurchase(ctx context.Context, tx Tx, purchase *PurchaseRecord) error {
	insertQuery := `
		INSERT INTO purchases (id, product_id, supplier_id, quantity, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := pgxTx(tx).Exec(ctx, insertQuery,
		purchase.ID, purchase.ProductID, purchase.SupplierID, purchase.Quantity, purchase.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase record: %w", err)
	}
	return nil
}

// InsertSale registra uma saída no ledger
func (r *PostgresLedgerRepository) InsertSale(ctx context.Context, tx Tx, sale *SaleRecord) error {
	insertQuery := `
		INSERT INTO sales (id, product_id, quantity, sale_price, sold_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := pgxTx(tx).Exec(ctx, insertQuery,
		sale.ID, sale.ProductID, sale.Quantity, sale.SalePrice, sale.SoldAt)
	if err != nil {
		return fmt.Errorf("failed to insert sale record: %w", err)
	}
	return nil
}

// AdjustStock aplica delta (positivo na compra, negativo na venda) ao estoque do produto
func (r *PostgresLedgerRepository) AdjustStock(ctx context.Context, tx Tx, productID string, delta int) (int64, error) {
	updateQuery := `
		UPDATE products
		SET quantity = quantity + $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	tag, err := pgxTx(tx).Exec(ctx, updateQuery, delta, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListRecentMovements une compras e vendas, mais recentes primeiro
func (r *PostgresLedgerRepository) ListRecentMovements(ctx context.Context, limit int) ([]Movement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT type, date, product_name, quantity, product_id
		FROM (
			SELECT $1::text AS type, pu.purchased_at AS date, p.name AS product_name, pu.quantity, p.id AS product_id
			FROM purchases pu
			JOIN products p ON pu.product_id = p.id
			UNION ALL
			SELECT $2::text AS type, s.sold_at AS date, p.name AS product_name, s.quantity, p.id AS product_id
			FROM sales s
			JOIN products p ON s.product_id = p.id
		) movements
		ORDER BY date DESC
		LIMIT $3
	`, MovementTypeInbound, MovementTypeOutbound, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	movements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Movement, error) {
		var m Movement
		err := row.Scan(&m.Type, &m.Date, &m.ProductName, &m.Quantity, &m.ProductID)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan movements: %w", err)
	}
	return movements, nil
}

// TopPurchasedProducts soma as compras por produto, maior total primeiro
func (r *PostgresLedgerRepository) TopPurchasedProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, SUM(pu.quantity) AS total
		FROM purchases pu
		JOIN products p ON pu.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY total DESC, p.name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list most purchased products: %w", err)
	}

	top, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TopProduct, error) {
		var t TopProduct
		err := row.Scan(&t.ProductID, &t.ProductName, &t.TotalPurchased)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan most purchased products: %w", err)
	}
	return top, nil
}
