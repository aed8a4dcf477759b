package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository define a interface para operações de banco de dados do catálogo
type CatalogRepository interface {
	CreateProduct(ctx context.Context, product *Product) error
	// UpdateProduct retorna false quando nenhuma linha foi afetada
	UpdateProduct(ctx context.Context, product *Product) (bool, error)
	DeleteProduct(ctx context.Context, productID string) (bool, error)
	ListProductOptions(ctx context.Context) ([]ProductOption, error)
	ListProductDetails(ctx context.Context) ([]ProductDetails, error)

	CreateSupplier(ctx context.Context, supplier *Supplier) error
	UpdateSupplier(ctx context.Context, supplier *Supplier) (bool, error)
	DeleteSupplier(ctx context.Context, supplierID string) (bool, error)
	// DeleteUnreferencedSupplier só remove o fornecedor se nenhum produto apontar para ele
	DeleteUnreferencedSupplier(ctx context.Context, supplierID string) (bool, error)
	SupplierExists(ctx context.Context, supplierID string) (bool, error)
	ListSupplierOptions(ctx context.Context) ([]SupplierOption, error)
	ListSupplierDetails(ctx context.Context) ([]Supplier, error)

	GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
}

// PostgresCatalogRepository implementa CatalogRepository usando PostgreSQL
type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository cria uma nova instância de PostgresCatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

// CreateProduct insere um novo produto
func (r *PostgresCatalogRepository) CreateProduct(ctx context.Context, product *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, quantity, unit_price, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, product.ID, product.Name, product.Description, product.Quantity, product.UnitPrice,
		product.SupplierID, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// UpdateProduct substitui todos os campos mutáveis do produto
func (r *PostgresCatalogRepository) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1,
		    description = $2,
		    quantity = $3,
		    unit_price = $4,
		    supplier_id = $5,
		    updated_at = $6
		WHERE id = $7
	`, product.Name, product.Description, product.Quantity, product.UnitPrice,
		product.SupplierID, product.UpdatedAt, product.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteProduct remove o produto; o histórico do ledger é mantido
func (r *PostgresCatalogRepository) DeleteProduct(ctx context.Context, productID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListProductOptions lista id e nome dos produtos ordenados por nome
func (r *PostgresCatalogRepository) ListProductOptions(ctx context.Context) ([]ProductOption, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	options, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ProductOption, error) {
		var o ProductOption
		err := row.Scan(&o.ID, &o.Name)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return options, nil
}

// ListProductDetails lista os produtos com o nome do fornecedor (LEFT JOIN)
func (r *PostgresCatalogRepository) ListProductDetails(ctx context.Context) ([]ProductDetails, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.quantity, p.unit_price, s.name, p.supplier_id
		FROM products p
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list product details: %w", err)
	}

	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ProductDetails, error) {
		var d ProductDetails
		err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Quantity, &d.UnitPrice, &d.SupplierName, &d.SupplierID)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan product details: %w", err)
	}
	return details, nil
}

// CreateSupplier insere um novo fornecedor
func (r *PostgresCatalogRepository) CreateSupplier(ctx context.Context, supplier *Supplier) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO suppliers (id, name, address, phone, email)
		VALUES ($1, $2, $3, $4, $5)
	`, supplier.ID, supplier.Name, supplier.Address, supplier.Phone, supplier.Email)
	if err != nil {
		return fmt.Errorf("failed to insert supplier: %w", err)
	}
	return nil
}

// UpdateSupplier substitui os campos do fornecedor
func (r *PostgresCatalogRepository) UpdateSupplier(ctx context.Context, supplier *Supplier) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE suppliers
		SET name = $1, address = $2, phone = $3, email = $4
		WHERE id = $5
	`, supplier.Name, supplier.Address, supplier.Phone, supplier.Email, supplier.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update supplier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteSupplier remove o fornecedor sem verificar produtos que o referenciam
func (r *PostgresCatalogRepository) DeleteSupplier(ctx context.Context, supplierID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, supplierID)
	if err != nil {
		return false, fmt.Errorf("failed to delete supplier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteUnreferencedSupplier remove o fornecedor apenas se nenhum produto o referenciar
func (r *PostgresCatalogRepository) DeleteUnreferencedSupplier(ctx context.Context, supplierID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM suppliers
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM products WHERE supplier_id = $1)
	`, supplierID)
	if err != nil {
		return false, fmt.Errorf("failed to delete supplier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SupplierExists verifica se o fornecedor existe
func (r *PostgresCatalogRepository) SupplierExists(ctx context.Context, supplierID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1)", supplierID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check supplier: %w", err)
	}
	return exists, nil
}

// ListSupplierOptions lista id e nome dos fornecedores ordenados por nome
func (r *PostgresCatalogRepository) ListSupplierOptions(ctx context.Context) ([]SupplierOption, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	options, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SupplierOption, error) {
		var o SupplierOption
		err := row.Scan(&o.ID, &o.Name)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan suppliers: %w", err)
	}
	return options, nil
}

// ListSupplierDetails lista todos os campos dos fornecedores ordenados por nome
func (r *PostgresCatalogRepository) ListSupplierDetails(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, address, phone, email
		FROM suppliers
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier details: %w", err)
	}

	suppliers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Supplier, error) {
		var s Supplier
		err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Email)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan supplier details: %w", err)
	}
	return suppliers, nil
}

// GetDashboardStats calcula os indicadores em uma única leitura consistente
func (r *PostgresCatalogRepository) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COUNT(*) FILTER (WHERE quantity < $1)
		FROM products
	`, lowStockThreshold).Scan(&stats.TotalProducts, &stats.TotalQuantity, &stats.LowStockProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return &stats, nil
}
