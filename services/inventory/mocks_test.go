package main

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTx simula uma transação
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockLedgerRepository para testes que não precisam de banco real
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Tx), args.Error(1)
}

func (m *MockLedgerRepository) GetProductStockForUpdate(ctx context.Context, tx Tx, productID string) (int, bool, error) {
	args := m.Called(ctx, tx, productID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) SupplierExists(ctx context.Context, tx Tx, supplierID string) (bool, error) {
	args := m.Called(ctx, tx, supplierID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) InsertPurchase(ctx context.Context, tx Tx, purchase *PurchaseRecord) error {
	args := m.Called(ctx, tx, purchase)
	return args.Error(0)
}

func (m *MockLedgerRepository) InsertSale(ctx context.Context, tx Tx, sale *SaleRecord) error {
	args := m.Called(ctx, tx, sale)
	return args.Error(0)
}

func (m *MockLedgerRepository) AdjustStock(ctx context.Context, tx Tx, productID string, delta int) (int64, error) {
	args := m.Called(ctx, tx, productID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) ListRecentMovements(ctx context.Context, limit int) ([]Movement, error) {
	args := m.Called(ctx, limit)
	movements, _ := args.Get(0).([]Movement)
	return movements, args.Error(1)
}

func (m *MockLedgerRepository) TopPurchasedProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	args := m.Called(ctx, limit)
	top, _ := args.Get(0).([]TopProduct)
	return top, args.Error(1)
}

// MockCatalogRepository para testes que não precisam de banco real
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) DeleteProduct(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) ListProductOptions(ctx context.Context) ([]ProductOption, error) {
	args := m.Called(ctx)
	options, _ := args.Get(0).([]ProductOption)
	return options, args.Error(1)
}

func (m *MockCatalogRepository) ListProductDetails(ctx context.Context) ([]ProductDetails, error) {
	args := m.Called(ctx)
	details, _ := args.Get(0).([]ProductDetails)
	return details, args.Error(1)
}

func (m *MockCatalogRepository) CreateSupplier(ctx context.Context, supplier *Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateSupplier(ctx context.Context, supplier *Supplier) (bool, error) {
	args := m.Called(ctx, supplier)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) DeleteSupplier(ctx context.Context, supplierID string) (bool, error) {
	args := m.Called(ctx, supplierID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) DeleteUnreferencedSupplier(ctx context.Context, supplierID string) (bool, error) {
	args := m.Called(ctx, supplierID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) SupplierExists(ctx context.Context, supplierID string) (bool, error) {
	args := m.Called(ctx, supplierID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) ListSupplierOptions(ctx context.Context) ([]SupplierOption, error) {
	args := m.Called(ctx)
	options, _ := args.Get(0).([]SupplierOption)
	return options, args.Error(1)
}

func (m *MockCatalogRepository) ListSupplierDetails(ctx context.Context) ([]Supplier, error) {
	args := m.Called(ctx)
	suppliers, _ := args.Get(0).([]Supplier)
	return suppliers, args.Error(1)
}

func (m *MockCatalogRepository) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	args := m.Called(ctx, lowStockThreshold)
	stats, _ := args.Get(0).(*DashboardStats)
	return stats, args.Error(1)
}
