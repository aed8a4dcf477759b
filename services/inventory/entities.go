package main

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold é a quantidade abaixo da qual um produto conta como estoque baixo
const LowStockThreshold = 10

// DefaultMovementsLimit é o tamanho padrão das listas do dashboard
const DefaultMovementsLimit = 5

// MaxQuantity é o maior estoque representável na coluna INTEGER
const MaxQuantity = math.MaxInt32

// PriceScale é o número de casas decimais de NUMERIC(12, 2)
const PriceScale = 2

// MaxPrice é o maior valor representável em NUMERIC(12, 2)
var MaxPrice = decimal.RequireFromString("9999999999.99")

// validQuantity aceita quantidades positivas que cabem na coluna
func validQuantity(q int) bool {
	return q > 0 && q <= MaxQuantity
}

// validPrice aceita preços não negativos com até duas casas e dentro do limite da coluna
func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() &&
		p.LessThanOrEqual(MaxPrice) &&
		p.Equal(p.Truncate(PriceScale))
}

// Product representa um produto do catálogo
type Product struct {
	ID          string          `json:"id_produit" db:"id"`
	Name        string          `json:"nom" db:"name"`
	Description *string         `json:"description" db:"description"`
	Quantity    int             `json:"quantite" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"prix_unitaire" db:"unit_price"`
	SupplierID  *string         `json:"id_fournisseur" db:"supplier_id"`
	CreatedAt   time.Time       `json:"date_ajout" db:"created_at"`
	UpdatedAt   time.Time       `json:"-" db:"updated_at"`
}

// NewProduct cria uma nova instância de Product
func NewProduct(id, name string, quantity int, unitPrice decimal.Decimal, supplierID string, now time.Time) *Product {
	return &Product{
		ID:         id,
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		SupplierID: &supplierID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ProductOption é a projeção usada nas listas de seleção
type ProductOption struct {
	ID   string `json:"id_produit"`
	Name string `json:"nom"`
}

// ProductDetails é o produto com o nome do fornecedor (nulo quando ausente ou órfão)
type ProductDetails struct {
	ID           string          `json:"id_produit"`
	Name         string          `json:"nom"`
	Description  *string         `json:"description"`
	Quantity     int             `json:"quantite"`
	UnitPrice    decimal.Decimal `json:"prix_unitaire"`
	SupplierName *string         `json:"nom_fournisseur"`
	SupplierID   *string         `json:"id_fournisseur_produit"`
}

// Supplier representa um fornecedor
type Supplier struct {
	ID      string  `json:"id_fournisseur" db:"id"`
	Name    string  `json:"nom" db:"name"`
	Address *string `json:"adresse" db:"address"`
	Phone   *string `json:"telephone" db:"phone"`
	Email   *string `json:"email" db:"email"`
}

// SupplierOption é a projeção usada nas listas de seleção
type SupplierOption struct {
	ID   string `json:"id_fournisseur"`
	Name string `json:"nom"`
}

// PurchaseRecord representa uma entrada de estoque (append-only)
type PurchaseRecord struct {
	ID          string    `json:"id" db:"id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	SupplierID  string    `json:"supplier_id" db:"supplier_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	PurchasedAt time.Time `json:"purchased_at" db:"purchased_at"`
}

// NewPurchaseRecord cria uma nova instância de PurchaseRecord
func NewPurchaseRecord(id, productID, supplierID string, quantity int, at time.Time) *PurchaseRecord {
	return &PurchaseRecord{
		ID:          id,
		ProductID:   productID,
		SupplierID:  supplierID,
		Quantity:    quantity,
		PurchasedAt: at,
	}
}

// SaleRecord representa uma saída de estoque (append-only)
type SaleRecord struct {
	ID        string          `json:"id" db:"id"`
	ProductID string          `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price" db:"sale_price"`
	SoldAt    time.Time       `json:"sold_at" db:"sold_at"`
}

// NewSaleRecord cria uma nova instância de SaleRecord
func NewSaleRecord(id, productID string, quantity int, salePrice decimal.Decimal, at time.Time) *SaleRecord {
	return &SaleRecord{
		ID:        id,
		ProductID: productID,
		Quantity:  quantity,
		SalePrice: salePrice,
		SoldAt:    at,
	}
}

// MovementType representa os tipos de movimentação exibidos no dashboard
const (
	MovementTypeInbound  = "Entrée"
	MovementTypeOutbound = "Sortie"
)

// Movement é uma linha do histórico unificado de compras e vendas
type Movement struct {
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	ProductName string    `json:"nom_produit"`
	Quantity    int       `json:"quantite"`
	ProductID   string    `json:"id_produit"`
}

// TopProduct agrega a quantidade comprada de um produto
type TopProduct struct {
	ProductID      string `json:"id_produit"`
	ProductName    string `json:"nom_produit"`
	TotalPurchased int64  `json:"total_quantite_achetee"`
}

// DashboardStats contém os indicadores do topo do dashboard
type DashboardStats struct {
	TotalProducts    int64 `json:"totalProducts"`
	TotalQuantity    int64 `json:"totalQuantity"`
	LowStockProducts int64 `json:"lowStockProducts"`
}
