package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CatalogUseCaseInterface define as escritas do catálogo usadas pelos handlers
type CatalogUseCaseInterface interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (string, error)
	UpdateProduct(ctx context.Context, req UpdateProductRequest) error
	DeleteProduct(ctx context.Context, req DeleteProductRequest) error
	CreateSupplier(ctx context.Context, req SupplierRequest) (string, error)
	UpdateSupplier(ctx context.Context, req SupplierRequest) error
	DeleteSupplier(ctx context.Context, req DeleteSupplierRequest) error
}

// LedgerUseCaseInterface define as operações do ledger usadas pelos handlers
type LedgerUseCaseInterface interface {
	RecordPurchase(ctx context.Context, req RecordPurchaseRequest) error
	RecordSale(ctx context.Context, req RecordSaleRequest) error
}

// QueryUseCaseInterface define as leituras do dashboard
type QueryUseCaseInterface interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	ProductOptions(ctx context.Context) ([]ProductOption, error)
	SupplierOptions(ctx context.Context) ([]SupplierOption, error)
	ProductDetails(ctx context.Context) ([]ProductDetails, error)
	SupplierDetails(ctx context.Context) ([]Supplier, error)
	RecentMovements(ctx context.Context) ([]Movement, error)
	MostPurchasedProducts(ctx context.Context) ([]TopProduct, error)
}

// Envelope é o formato de todas as respostas da API
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Token   string `json:"token,omitempty"`
}

type actionRoute struct {
	method string
	handle gin.HandlerFunc
}

// StockHandler contém os handlers HTTP do serviço de estoque
type StockHandler struct {
	catalog CatalogUseCaseInterface
	ledger  LedgerUseCaseInterface
	queries QueryUseCaseInterface
	auth    Authenticator
	tracer  trace.Tracer
	service string
	actions map[string]actionRoute
}

// NewStockHandler cria uma nova instância de StockHandler
func NewStockHandler(
	catalog CatalogUseCaseInterface,
	ledger LedgerUseCaseInterface,
	queries QueryUseCaseInterface,
	auth Authenticator,
	tracer trace.Tracer,
	service string,
) *StockHandler {
	h := &StockHandler{
		catalog: catalog,
		ledger:  ledger,
		queries: queries,
		auth:    auth,
		tracer:  tracer,
		service: service,
	}

	h.actions = map[string]actionRoute{
		"get_stats":                   {http.MethodGet, h.GetStats},
		"get_products_for_dropdown":   {http.MethodGet, h.GetProductsForDropdown},
		"get_suppliers_for_dropdown":  {http.MethodGet, h.GetSuppliersForDropdown},
		"get_all_products_details":    {http.MethodGet, h.GetAllProductsDetails},
		"get_all_suppliers_details":   {http.MethodGet, h.GetAllSuppliersDetails},
		"add_quick_product":           {http.MethodPost, h.AddQuickProduct},
		"record_quick_purchase":       {http.MethodPost, h.RecordQuickPurchase},
		"record_quick_sale":           {http.MethodPost, h.RecordQuickSale},
		"get_recent_movements":        {http.MethodGet, h.GetRecentMovements},
		"get_most_purchased_products": {http.MethodGet, h.GetMostPurchasedProducts},
		"add_supplier":                {http.MethodPost, h.AddSupplier},
		"update_supplier":             {http.MethodPut, h.UpdateSupplier},
		"delete_supplier":             {http.MethodDelete, h.DeleteSupplier},
		"update_product":              {http.MethodPut, h.UpdateProduct},
		"delete_product":              {http.MethodDelete, h.DeleteProduct},
	}

	return h
}

// RegisterRoutes registra as rotas do serviço no router
func (h *StockHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.HealthCheck)

	r.Any("/api/dashboard", h.Dispatch)
	r.Any("/dashboard_api.php", h.Dispatch)

	r.POST("/api/login", h.Login)
	r.POST("/login1.php", h.Login)
}

// Dispatch roteia pela query string ?action=, validando o método HTTP de cada ação
func (h *StockHandler) Dispatch(c *gin.Context) {
	name := c.Query("action")

	route, ok := h.actions[name]
	if !ok {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "Action non spécifiée ou invalide."})
		return
	}

	if c.Request.Method != route.method {
		c.JSON(http.StatusMethodNotAllowed, Envelope{Success: false, Message: "Méthode non autorisée pour cette action."})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "stock."+name)
	defer span.End()
	span.SetAttributes(attribute.String("stock.action", name))

	c.Request = c.Request.WithContext(ctx)
	route.handle(c)
}

// GetStats retorna os indicadores do dashboard
func (h *StockHandler) GetStats(c *gin.Context) {
	stats, err := h.queries.DashboardStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: stats})
}

// GetProductsForDropdown atende a action get_products_for_dropdown
func (h *StockHandler) GetProductsForDropdown(c *gin.Context) {
	products, err := h.queries.ProductOptions(c.Request.Context())
	respondList(h, c, products, err)
}

// GetSuppliersForDropdown atende a action get_suppliers_for_dropdown
func (h *StockHandler) GetSuppliersForDropdown(c *gin.Context) {
	suppliers, err := h.queries.SupplierOptions(c.Request.Context())
	respondList(h, c, suppliers, err)
}

// GetAllProductsDetails lista os produtos com o fornecedor
func (h *StockHandler) GetAllProductsDetails(c *gin.Context) {
	products, err := h.queries.ProductDetails(c.Request.Context())
	respondList(h, c, products, err)
}

// GetAllSuppliersDetails lista os fornecedores
func (h *StockHandler) GetAllSuppliersDetails(c *gin.Context) {
	suppliers, err := h.queries.SupplierDetails(c.Request.Context())
	respondList(h, c, suppliers, err)
}

// GetRecentMovements retorna as últimas entradas e saídas
func (h *StockHandler) GetRecentMovements(c *gin.Context) {
	movements, err := h.queries.RecentMovements(c.Request.Context())
	respondList(h, c, movements, err)
}

// GetMostPurchasedProducts retorna o ranking de compras
func (h *StockHandler) GetMostPurchasedProducts(c *gin.Context) {
	top, err := h.queries.MostPurchasedProducts(c.Request.Context())
	respondList(h, c, top, err)
}

// AddQuickProduct cadastra um produto
func (h *StockHandler) AddQuickProduct(c *gin.Context) {
	var req CreateProductRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String("product_id", id))
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Produit ajouté avec succès.", ID: id, Data: gin.H{"id": id}})
}

// RecordQuickPurchase registra uma compra
func (h *StockHandler) RecordQuickPurchase(c *gin.Context) {
	var req RecordPurchaseRequest
	if !h.bind(c, &req) {
		return
	}

	trace.SpanFromContext(c.Request.Context()).SetAttributes(
		attribute.String("product_id", req.ProductID.String()),
		attribute.String("supplier_id", req.SupplierID.String()),
		attribute.Int("quantity", req.Quantity),
	)

	if err := h.ledger.RecordPurchase(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Achat enregistré et stock mis à jour."})
}

// RecordQuickSale registra uma venda
func (h *StockHandler) RecordQuickSale(c *gin.Context) {
	var req RecordSaleRequest
	if !h.bind(c, &req) {
		return
	}

	trace.SpanFromContext(c.Request.Context()).SetAttributes(
		attribute.String("product_id", req.ProductID.String()),
		attribute.Int("quantity", req.Quantity),
	)

	if err := h.ledger.RecordSale(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Vente enregistrée et stock mis à jour."})
}

// UpdateProduct edita um produto
func (h *StockHandler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.catalog.UpdateProduct(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Produit mis à jour avec succès."})
}

// DeleteProduct remove um produto
func (h *StockHandler) DeleteProduct(c *gin.Context) {
	var req DeleteProductRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Produit supprimé avec succès."})
}

// AddSupplier cadastra um fornecedor
func (h *StockHandler) AddSupplier(c *gin.Context) {
	var req SupplierRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.catalog.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Fournisseur ajouté avec succès.", ID: id, Data: gin.H{"id": id}})
}

// UpdateSupplier edita um fornecedor
func (h *StockHandler) UpdateSupplier(c *gin.Context) {
	var req SupplierRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.catalog.UpdateSupplier(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Fournisseur mis à jour avec succès."})
}

// DeleteSupplier remove um fornecedor
func (h *StockHandler) DeleteSupplier(c *gin.Context) {
	var req DeleteSupplierRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.catalog.DeleteSupplier(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Fournisseur supprimé avec succès."})
}

// Login valida as credenciais e devolve o token
func (h *StockHandler) Login(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "stock.login")
	defer span.End()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "Corps de requête JSON invalide."})
		return
	}

	token, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			span.RecordError(err)
			log.Printf("❌ [LOGIN] Authenticator failed: %v", err)
		}
		c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "Nom d'utilisateur ou mot de passe incorrect"})
		return
	}

	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Connexion réussie", Token: token})
}

// HealthCheck verifica a saúde do serviço
func (h *StockHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
	})
}

func (h *StockHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		trace.SpanFromContext(c.Request.Context()).RecordError(err)
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "Corps de requête JSON invalide."})
		return false
	}
	return true
}

func (h *StockHandler) respondError(c *gin.Context, err error) {
	status, message := statusForError(err)

	span := trace.SpanFromContext(c.Request.Context())
	span.RecordError(err)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, message)
		log.Printf("❌ [%s] %v", c.Query("action"), err)
	}

	c.JSON(status, Envelope{Success: false, Message: message})
}

// respondList garante que listas vazias sejam serializadas como [] e não null
func respondList[T any](h *StockHandler, c *gin.Context, items []T, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items})
}
