package main

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest é o payload de add_quick_product
type CreateProductRequest struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	SupplierID EntityID        `json:"supplierId"`
}

// UpdateProductRequest é o payload de update_product; ponteiros distinguem campos ausentes
type UpdateProductRequest struct {
	ID          EntityID         `json:"id_produit"`
	Name        string           `json:"nom"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantite"`
	UnitPrice   *decimal.Decimal `json:"prix_unitaire"`
	SupplierID  *EntityID        `json:"id_fournisseur"`
}

// DeleteProductRequest é o payload de delete_product
type DeleteProductRequest struct {
	ID EntityID `json:"id_produit"`
}

// SupplierRequest é o payload de add_supplier e update_supplier
type SupplierRequest struct {
	ID      EntityID `json:"id_fournisseur"`
	Name    string   `json:"nom"`
	Address *string  `json:"adresse"`
	Phone   *string  `json:"telephone"`
	Email   *string  `json:"email"`
}

// DeleteSupplierRequest é o payload de delete_supplier
type DeleteSupplierRequest struct {
	ID EntityID `json:"id_fournisseur"`
}

// CatalogUseCase contém a lógica de negócio de produtos e fornecedores
type CatalogUseCase struct {
	repository CatalogRepository
	clock      Clock
	config     CatalogConfig
}

// NewCatalogUseCase cria uma nova instância de CatalogUseCase
func NewCatalogUseCase(repository CatalogRepository, clock Clock, config CatalogConfig) *CatalogUseCase {
	return &CatalogUseCase{
		repository: repository,
		clock:      clock,
		config:     config,
	}
}

// CreateProduct cadastra um produto com estoque inicial positivo
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, req CreateProductRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	supplierID := req.SupplierID.String()

	if name == "" || !validQuantity(req.Quantity) || !validPrice(req.Price) || supplierID == "" {
		return "", newValidationError("Nom, quantité, prix unitaire et fournisseur valide requis.")
	}

	exists, err := uc.repository.SupplierExists(ctx, supplierID)
	if err != nil {
		return "", newPersistenceError("Erreur lors de l'ajout du produit", err)
	}
	if !exists {
		return "", newValidationError("Nom, quantité, prix unitaire et fournisseur valide requis.")
	}

	product := NewProduct(uuid.New().String(), name, req.Quantity, req.Price, supplierID, uc.clock.Now())
	if err := uc.repository.CreateProduct(ctx, product); err != nil {
		log.Printf("❌ [CREATE PRODUCT] Failed: %v", err)
		return "", newPersistenceError("Erreur lors de l'ajout du produit", err)
	}

	log.Printf("✅ [CREATE PRODUCT] ProductID=%s | Name=%s | Quantity=%d", product.ID, product.Name, product.Quantity)
	return product.ID, nil
}

// UpdateProduct substitui os campos mutáveis do produto; o estoque pode ser ajustado diretamente
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, req UpdateProductRequest) error {
	id := req.ID.String()
	name := strings.TrimSpace(req.Name)

	if id == "" || name == "" ||
		req.Quantity == nil || *req.Quantity < 0 || *req.Quantity > MaxQuantity ||
		req.UnitPrice == nil || !validPrice(*req.UnitPrice) ||
		req.SupplierID == nil || req.SupplierID.String() == "" {
		return newValidationError("Données de produit incomplètes ou invalides pour la mise à jour (Nom, Quantité, Prix, Fournisseur).")
	}

	supplierID := req.SupplierID.String()
	exists, err := uc.repository.SupplierExists(ctx, supplierID)
	if err != nil {
		return newPersistenceError("Erreur lors de la mise à jour du produit", err)
	}
	if !exists {
		return newValidationError("Données de produit incomplètes ou invalides pour la mise à jour (Nom, Quantité, Prix, Fournisseur).")
	}

	product := &Product{
		ID:          id,
		Name:        name,
		Description: req.Description,
		Quantity:    *req.Quantity,
		UnitPrice:   *req.UnitPrice,
		SupplierID:  &supplierID,
		UpdatedAt:   uc.clock.Now(),
	}

	found, err := uc.repository.UpdateProduct(ctx, product)
	if err != nil {
		log.Printf("❌ [UPDATE PRODUCT] ProductID=%s Failed: %v", id, err)
		return newPersistenceError("Erreur lors de la mise à jour du produit", err)
	}
	if !found {
		return ErrProductNotFound
	}

	log.Printf("✅ [UPDATE PRODUCT] ProductID=%s | Quantity=%d", id, product.Quantity)
	return nil
}

// DeleteProduct remove o produto sem verificar o histórico do ledger
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, req DeleteProductRequest) error {
	id := req.ID.String()
	if id == "" {
		return newValidationError("ID Produit requis pour la suppression.")
	}

	deleted, err := uc.repository.DeleteProduct(ctx, id)
	if err != nil {
		return newPersistenceError("Erreur lors de la suppression du produit", err)
	}
	if !deleted {
		return ErrProductNotFound
	}

	log.Printf("🗑️ [DELETE PRODUCT] ProductID=%s", id)
	return nil
}

// ListProductOptions lista os produtos para os seletores
func (uc *CatalogUseCase) ListProductOptions(ctx context.Context) ([]ProductOption, error) {
	options, err := uc.repository.ListProductOptions(ctx)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des produits pour la liste", err)
	}
	return options, nil
}

// ListProductDetails lista os produtos com o nome do fornecedor
func (uc *CatalogUseCase) ListProductDetails(ctx context.Context) ([]ProductDetails, error) {
	details, err := uc.repository.ListProductDetails(ctx)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des détails des produits", err)
	}
	return details, nil
}

// CreateSupplier cadastra um fornecedor
func (uc *CatalogUseCase) CreateSupplier(ctx context.Context, req SupplierRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", newValidationError("Le nom du fournisseur est requis.")
	}

	supplier := &Supplier{
		ID:      uuid.New().String(),
		Name:    name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if err := uc.repository.CreateSupplier(ctx, supplier); err != nil {
		log.Printf("❌ [CREATE SUPPLIER] Failed: %v", err)
		return "", newPersistenceError("Erreur lors de l'ajout du fournisseur", err)
	}

	log.Printf("✅ [CREATE SUPPLIER] SupplierID=%s | Name=%s", supplier.ID, supplier.Name)
	return supplier.ID, nil
}

// UpdateSupplier substitui os campos do fornecedor
func (uc *CatalogUseCase) UpdateSupplier(ctx context.Context, req SupplierRequest) error {
	id := req.ID.String()
	name := strings.TrimSpace(req.Name)
	if id == "" || name == "" {
		return newValidationError("ID et nom du fournisseur requis pour la mise à jour.")
	}

	found, err := uc.repository.UpdateSupplier(ctx, &Supplier{
		ID:      id,
		Name:    name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		return newPersistenceError("Erreur lors de la mise à jour du fournisseur", err)
	}
	if !found {
		return ErrSupplierNotFound
	}

	log.Printf("✅ [UPDATE SUPPLIER] SupplierID=%s", id)
	return nil
}

// DeleteSupplier remove o fornecedor conforme a política configurada
func (uc *CatalogUseCase) DeleteSupplier(ctx context.Context, req DeleteSupplierRequest) error {
	id := req.ID.String()
	if id == "" {
		return newValidationError("ID Fournisseur requis pour la suppression.")
	}

	if uc.config.SupplierDeletePolicy == SupplierDeleteRestrict {
		return uc.deleteUnreferencedSupplier(ctx, id)
	}

	deleted, err := uc.repository.DeleteSupplier(ctx, id)
	if err != nil {
		return newPersistenceError("Erreur lors de la suppression du fournisseur", err)
	}
	if !deleted {
		return ErrSupplierNotFound
	}

	log.Printf("🗑️ [DELETE SUPPLIER] SupplierID=%s", id)
	return nil
}

func (uc *CatalogUseCase) deleteUnreferencedSupplier(ctx context.Context, id string) error {
	deleted, err := uc.repository.DeleteUnreferencedSupplier(ctx, id)
	if err != nil {
		return newPersistenceError("Erreur lors de la suppression du fournisseur", err)
	}
	if deleted {
		log.Printf("🗑️ [DELETE SUPPLIER] SupplierID=%s", id)
		return nil
	}

	// Nada removido: ausente ou ainda referenciado
	exists, err := uc.repository.SupplierExists(ctx, id)
	if err != nil {
		return newPersistenceError("Erreur lors de la suppression du fournisseur", err)
	}
	if exists {
		log.Printf("ℹ️ [DELETE SUPPLIER] SupplierID=%s still referenced by products", id)
		return ErrSupplierInUse
	}
	return ErrSupplierNotFound
}

// ListSupplierOptions lista os fornecedores para os seletores
func (uc *CatalogUseCase) ListSupplierOptions(ctx context.Context) ([]SupplierOption, error) {
	options, err := uc.repository.ListSupplierOptions(ctx)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des fournisseurs pour la liste", err)
	}
	return options, nil
}

// ListSupplierDetails lista todos os campos dos fornecedores
func (uc *CatalogUseCase) ListSupplierDetails(ctx context.Context) ([]Supplier, error) {
	suppliers, err := uc.repository.ListSupplierDetails(ctx)
	if err != nil {
		return nil, newPersistenceError("Erreur lors de la récupération des détails des fournisseurs", err)
	}
	return suppliers, nil
}
