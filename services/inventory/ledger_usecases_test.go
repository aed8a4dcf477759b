package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

var testNow = time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T, repo LedgerRepository, cfg LedgerConfig) *LedgerUseCase {
	t.Helper()
	uc, err := NewLedgerUseCase(repo, NewFixedClock(testNow), cfg, metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return uc
}

func newMockTx() *MockTx {
	tx := new(MockTx)
	tx.On("Rollback").Return(nil)
	return tx
}

func TestRecordPurchase_IncrementsStockAndAppendsRecord(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertPurchase", ctx, tx, mock.MatchedBy(func(p *PurchaseRecord) bool {
		return p.ProductID == "product-1" &&
			p.SupplierID == "supplier-1" &&
			p.Quantity == 10 &&
			p.PurchasedAt.Equal(testNow) &&
			p.ID != ""
	})).Return(nil).Once()
	repo.On("AdjustStock", ctx, tx, "product-1", 10).Return(int64(1), nil).Once()
	tx.On("Commit").Return(nil).Once()

	uc := newTestLedger(t, repo, LedgerConfig{})

	// Act
	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 10})

	// Assert
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestRecordPurchase_ValidationFailsBeforeAnyEffect(t *testing.T) {
	tests := []struct {
		name string
		req  RecordPurchaseRequest
	}{
		{"missing product", RecordPurchaseRequest{SupplierID: "supplier-1", Quantity: 1}},
		{"blank product", RecordPurchaseRequest{ProductID: "   ", SupplierID: "supplier-1", Quantity: 1}},
		{"missing supplier", RecordPurchaseRequest{ProductID: "product-1", Quantity: 1}},
		{"zero quantity", RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1"}},
		{"negative quantity", RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: -3}},
		{"quantity above column range", RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: MaxQuantity + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLedgerRepository)
			uc := newTestLedger(t, repo, LedgerConfig{})

			err := uc.RecordPurchase(context.Background(), tt.req)

			assert.True(t, IsKind(err, KindValidation), "expected validation error, got %v", err)
			repo.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestRecordPurchase_StockOverflowIsValidationError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(MaxQuantity-5, true, nil)

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 6})

	assert.True(t, IsKind(err, KindValidation))
	repo.AssertNotCalled(t, "InsertPurchase", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
}

func TestRecordPurchase_FillingStockToLimitIsAllowed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(MaxQuantity-5, true, nil)
	repo.On("InsertPurchase", ctx, tx, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, tx, "product-1", 5).Return(int64(1), nil)
	tx.On("Commit").Return(nil)

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 5})

	assert.NoError(t, err)
	tx.AssertExpectations(t)
}

func TestRecordPurchase_InsertFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertPurchase", ctx, tx, mock.Anything).Return(errors.New("connection reset"))

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 10})

	require.Error(t, err)
	assert.True(t, IsKind(err, KindPersistence))
	assert.Contains(t, err.Error(), "connection reset")
	repo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
}

func TestRecordPurchase_StockUpdateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertPurchase", ctx, tx, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, tx, "product-1", 10).Return(int64(0), errors.New("deadlock detected"))

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 10})

	assert.True(t, IsKind(err, KindPersistence))
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
}

func TestRecordPurchase_CommitFailureIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertPurchase", ctx, tx, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, tx, "product-1", 10).Return(int64(1), nil)
	tx.On("Commit").Return(errors.New("serialization failure"))

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 10})

	assert.True(t, IsKind(err, KindPersistence))
}

func TestRecordPurchase_BeginFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	repo.On("BeginTx", ctx).Return(nil, errors.New("pool closed"))

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "supplier-1", Quantity: 10})

	assert.True(t, IsKind(err, KindPersistence))
	repo.AssertNotCalled(t, "InsertPurchase", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordPurchase_PermissiveModeAcceptsUnknownProduct(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "ghost").Return(0, false, nil)
	repo.On("InsertPurchase", ctx, tx, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, tx, "ghost", 4).Return(int64(0), nil)
	tx.On("Commit").Return(nil)

	uc := newTestLedger(t, repo, LedgerConfig{StrictReferences: false})

	err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "ghost", SupplierID: "supplier-1", Quantity: 4})

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "SupplierExists", mock.Anything, mock.Anything, mock.Anything)
	tx.AssertExpectations(t)
}

func TestRecordPurchase_StrictModeRejectsUnknownReferences(t *testing.T) {
	t.Run("unknown product", func(t *testing.T) {
		ctx := context.Background()
		repo := new(MockLedgerRepository)
		tx := newMockTx()

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("GetProductStockForUpdate", ctx, tx, "ghost").Return(0, false, nil)

		uc := newTestLedger(t, repo, LedgerConfig{StrictReferences: true})

		err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "ghost", SupplierID: "supplier-1", Quantity: 4})

		assert.ErrorIs(t, err, ErrProductNotFound)
		repo.AssertNotCalled(t, "InsertPurchase", mock.Anything, mock.Anything, mock.Anything)
		tx.AssertNotCalled(t, "Commit")
	})

	t.Run("unknown supplier", func(t *testing.T) {
		ctx := context.Background()
		repo := new(MockLedgerRepository)
		tx := newMockTx()

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(3, true, nil)
		repo.On("SupplierExists", ctx, tx, "nobody").Return(false, nil)

		uc := newTestLedger(t, repo, LedgerConfig{StrictReferences: true})

		err := uc.RecordPurchase(ctx, RecordPurchaseRequest{ProductID: "product-1", SupplierID: "nobody", Quantity: 4})

		assert.ErrorIs(t, err, ErrSupplierNotFound)
		assert.True(t, IsKind(err, KindNotFound))
		repo.AssertNotCalled(t, "InsertPurchase", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordSale_DecrementsStockAndAppendsRecord(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()
	price := decimal.RequireFromString("9.99")

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertSale", ctx, tx, mock.MatchedBy(func(s *SaleRecord) bool {
		return s.ProductID == "product-1" &&
			s.Quantity == 5 &&
			s.SalePrice.Equal(price) &&
			s.SoldAt.Equal(testNow)
	})).Return(nil).Once()
	repo.On("AdjustStock", ctx, tx, "product-1", -5).Return(int64(1), nil).Once()
	tx.On("Commit").Return(nil).Once()

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordSale(ctx, RecordSaleRequest{ProductID: "product-1", Quantity: 5, SalePrice: price})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestRecordSale_SellingEntireStockIsAllowed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertSale", ctx, tx, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, tx, "product-1", -20).Return(int64(1), nil)
	tx.On("Commit").Return(nil)

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordSale(ctx, RecordSaleRequest{ProductID: "product-1", Quantity: 20, SalePrice: decimal.Zero})

	assert.NoError(t, err)
}

func TestRecordSale_InsufficientStockLeavesNoEffect(t *testing.T) {
	// Produto com 20 unidades, venda de 25
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordSale(ctx, RecordSaleRequest{
		ProductID: "product-1",
		Quantity:  25,
		SalePrice: decimal.RequireFromString("9.99"),
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.True(t, IsKind(err, KindInsufficientStock))
	repo.AssertNotCalled(t, "InsertSale", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
}

func TestRecordSale_UnknownProductIsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "ghost").Return(0, false, nil)

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordSale(ctx, RecordSaleRequest{ProductID: "ghost", Quantity: 1})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	repo.AssertNotCalled(t, "InsertSale", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSale_ValidationFailsBeforeAnyEffect(t *testing.T) {
	tests := []struct {
		name string
		req  RecordSaleRequest
	}{
		{"missing product", RecordSaleRequest{Quantity: 1}},
		{"zero quantity", RecordSaleRequest{ProductID: "product-1"}},
		{"negative quantity", RecordSaleRequest{ProductID: "product-1", Quantity: -1}},
		{"negative price", RecordSaleRequest{ProductID: "product-1", Quantity: 1, SalePrice: decimal.NewFromInt(-1)}},
		{"price with three decimals", RecordSaleRequest{ProductID: "product-1", Quantity: 1, SalePrice: decimal.RequireFromString("9.999")}},
		{"price above column range", RecordSaleRequest{ProductID: "product-1", Quantity: 1, SalePrice: decimal.RequireFromString("1e10")}},
		{"quantity above column range", RecordSaleRequest{ProductID: "product-1", Quantity: MaxQuantity + 1, SalePrice: decimal.NewFromInt(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLedgerRepository)
			uc := newTestLedger(t, repo, LedgerConfig{})

			err := uc.RecordSale(context.Background(), tt.req)

			assert.True(t, IsKind(err, KindValidation), "expected validation error, got %v", err)
			repo.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestRecordSale_RetryAfterRolledBackFailure(t *testing.T) {
	// A primeira tentativa falha no insert e é desfeita; a segunda aplica o decremento uma única vez
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	firstTx := newMockTx()
	secondTx := newMockTx()

	repo.On("BeginTx", ctx).Return(firstTx, nil).Once()
	repo.On("BeginTx", ctx).Return(secondTx, nil).Once()
	isFirst := mock.MatchedBy(func(tx Tx) bool { return tx == Tx(firstTx) })
	isSecond := mock.MatchedBy(func(tx Tx) bool { return tx == Tx(secondTx) })
	repo.On("GetProductStockForUpdate", ctx, mock.Anything, "product-1").Return(20, true, nil)
	repo.On("InsertSale", ctx, isFirst, mock.Anything).Return(errors.New("disk full"))
	repo.On("InsertSale", ctx, isSecond, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, isSecond, "product-1", -3).Return(int64(1), nil).Once()
	secondTx.On("Commit").Return(nil)

	uc := newTestLedger(t, repo, LedgerConfig{})
	req := RecordSaleRequest{ProductID: "product-1", Quantity: 3, SalePrice: decimal.NewFromInt(4)}

	err := uc.RecordSale(ctx, req)
	assert.True(t, IsKind(err, KindPersistence))
	firstTx.AssertNotCalled(t, "Commit")
	repo.AssertNumberOfCalls(t, "AdjustStock", 0)

	err = uc.RecordSale(ctx, req)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "AdjustStock", 1)
}

func TestRecordSale_StockUpdateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	tx := newMockTx()

	repo.On("BeginTx", ctx).Return(tx, nil)
	repo.On("GetProductStockForUpdate", ctx, tx, "product-1").Return(20, true, nil)
	repo.On("InsertSale", ctx, tx, mock.Anything).Return(nil)
	repo.On("AdjustStock", ctx, tx, "product-1", -2).Return(int64(0), errors.New("check constraint violated"))

	uc := newTestLedger(t, repo, LedgerConfig{})

	err := uc.RecordSale(ctx, RecordSaleRequest{ProductID: "product-1", Quantity: 2})

	assert.True(t, IsKind(err, KindPersistence))
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
}

func TestListRecentMovements_DefaultsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	movements := []Movement{
		{Type: MovementTypeOutbound, Date: testNow, ProductName: "Widget", Quantity: 2, ProductID: "product-1"},
		{Type: MovementTypeInbound, Date: testNow.Add(-time.Hour), ProductName: "Widget", Quantity: 10, ProductID: "product-1"},
	}
	repo.On("ListRecentMovements", ctx, DefaultMovementsLimit).Return(movements, nil)

	uc := newTestLedger(t, repo, LedgerConfig{})

	got, err := uc.ListRecentMovements(ctx, 0)

	require.NoError(t, err)
	assert.Equal(t, movements, got)
	repo.AssertExpectations(t)
}

func TestTopPurchasedProducts_WrapsPersistenceError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLedgerRepository)
	repo.On("TopPurchasedProducts", ctx, 3).Return(nil, errors.New("timeout"))

	uc := newTestLedger(t, repo, LedgerConfig{})

	_, err := uc.TopPurchasedProducts(ctx, 3)

	assert.True(t, IsKind(err, KindPersistence))
}
