package main

import (
	"context"
)

// QueryUseCase agrega as leituras do dashboard; não tem efeitos colaterais
type QueryUseCase struct {
	catalog *CatalogUseCase
	ledger  *LedgerUseCase
	repo    CatalogRepository
}

// NewQueryUseCase cria uma nova instância de QueryUseCase
func NewQueryUseCase(repo CatalogRepository, catalog *CatalogUseCase, ledger *LedgerUseCase) *QueryUseCase {
	return &QueryUseCase{
		catalog: catalog,
		ledger:  ledger,
		repo:    repo,
	}
}

// DashboardStats conta produtos, soma o estoque e conta os produtos abaixo do limite
func (uc *QueryUseCase) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats, err := uc.repo.GetDashboardStats(ctx, LowStockThreshold)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des statistiques", err)
	}
	return stats, nil
}

// ProductOptions lista id e nome dos produtos, ordenados por nome
func (uc *QueryUseCase) ProductOptions(ctx context.Context) ([]ProductOption, error) {
	return uc.catalog.ListProductOptions(ctx)
}

// SupplierOptions lista id e nome dos fornecedores, ordenados por nome
func (uc *QueryUseCase) SupplierOptions(ctx context.Context) ([]SupplierOption, error) {
	return uc.catalog.ListSupplierOptions(ctx)
}

// ProductDetails lista os produtos com o nome do fornecedor
func (uc *QueryUseCase) ProductDetails(ctx context.Context) ([]ProductDetails, error) {
	return uc.catalog.ListProductDetails(ctx)
}

// SupplierDetails lista todos os campos dos fornecedores
func (uc *QueryUseCase) SupplierDetails(ctx context.Context) ([]Supplier, error) {
	return uc.catalog.ListSupplierDetails(ctx)
}

// RecentMovements retorna as cinco movimentações mais recentes
func (uc *QueryUseCase) RecentMovements(ctx context.Context) ([]Movement, error) {
	return uc.ledger.ListRecentMovements(ctx, DefaultMovementsLimit)
}

// MostPurchasedProducts retorna os cinco produtos com maior volume de compras
func (uc *QueryUseCase) MostPurchasedProducts(ctx context.Context) ([]TopProduct, error) {
	return uc.ledger.TopPurchasedProducts(ctx, DefaultMovementsLimit)
}
