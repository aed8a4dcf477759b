package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStockService mantém o estoque em memória seguindo o mesmo contrato HTTP
type fakeStockService struct {
	mu        sync.Mutex
	products  map[string]*ProductDetails
	suppliers map[string]string
	token     string
	authCalls int
}

func newFakeStockService() *fakeStockService {
	return &fakeStockService{
		products:  map[string]*ProductDetails{},
		suppliers: map[string]string{},
		token:     "test-token",
	}
}

func (f *fakeStockService) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&req)
		f.mu.Lock()
		f.authCalls++
		f.mu.Unlock()
		if req.Username != "admin" || req.Password != "stock2025" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Nom d'utilisateur ou mot de passe incorrect"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Connexion réussie", "token": f.token})
	})

	r.Any("/api/dashboard", func(c *gin.Context) {
		var body map[string]any
		if c.Request.Method != http.MethodGet {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Corps de requête JSON invalide."})
				return
			}
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		switch c.Query("action") {
		case "add_supplier":
			id := uuid.New().String()
			f.suppliers[id] = body["nom"].(string)
			c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
		case "add_quick_product":
			id := uuid.New().String()
			f.products[id] = &ProductDetails{ID: id, Name: body["name"].(string), Quantity: int(body["quantity"].(float64))}
			c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
		case "record_quick_purchase":
			f.products[body["productId"].(string)].Quantity += int(body["quantity"].(float64))
			c.JSON(http.StatusOK, gin.H{"success": true})
		case "record_quick_sale":
			p := f.products[body["productId"].(string)]
			q := int(body["quantity"].(float64))
			if p.Quantity < q {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Stock insuffisant pour ce produit."})
				return
			}
			p.Quantity -= q
			c.JSON(http.StatusOK, gin.H{"success": true})
		case "get_all_products_details":
			list := []ProductDetails{}
			for _, p := range f.products {
				list = append(list, *p)
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
		case "delete_product":
			delete(f.products, body["id_produit"].(string))
			c.JSON(http.StatusOK, gin.H{"success": true})
		case "delete_supplier":
			delete(f.suppliers, body["id_fournisseur"].(string))
			c.JSON(http.StatusOK, gin.H{"success": true})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Action non spécifiée ou invalide."})
		}
	})

	return r
}

func testConfig(url string) Config {
	return Config{
		TargetURL:    url,
		Username:     "admin",
		Password:     "stock2025",
		Workers:      4,
		Operations:   60,
		InitialStock: 5,
		MaxQuantity:  3,
		Timeout:      5 * time.Second,
	}
}

func TestRunner_ReportsConsistentStock(t *testing.T) {
	fake := newFakeStockService()
	server := httptest.NewServer(fake.router())
	defer server.Close()

	cfg := testConfig(server.URL)
	runner := NewRunner(NewStockClient(cfg.TargetURL, cfg.Timeout), cfg)

	report, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, report.Consistent(), "expected %d, got %d", report.ExpectedStock, report.FinalStock)
	assert.Equal(t, int64(0), report.Failures)
	assert.Equal(t, int64(cfg.Operations), report.Purchases+report.Sales+report.RejectedSales)
	assert.GreaterOrEqual(t, report.FinalStock, int64(0))

	require.NoError(t, runner.Cleanup(context.Background(), report))
	assert.Empty(t, fake.products)
	assert.Empty(t, fake.suppliers)
}

func TestStockClient_InsufficientStockIsRejected(t *testing.T) {
	fake := newFakeStockService()
	server := httptest.NewServer(fake.router())
	defer server.Close()

	ctx := context.Background()
	client := NewStockClient(server.URL, 5*time.Second)
	require.NoError(t, client.Login(ctx, "admin", "stock2025"))

	supplierID, err := client.AddSupplier(ctx, "Acme")
	require.NoError(t, err)
	productID, err := client.AddProduct(ctx, "Clavier", 20, decimal.RequireFromString("9.99"), supplierID)
	require.NoError(t, err)

	err = client.RecordSale(ctx, productID, 25, decimal.RequireFromString("9.99"))

	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Stock insuffisant pour ce produit.")

	products, err := client.ProductDetails(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 20, products[0].Quantity)
}

func TestStockClient_LoginFailure(t *testing.T) {
	fake := newFakeStockService()
	server := httptest.NewServer(fake.router())
	defer server.Close()

	client := NewStockClient(server.URL, 5*time.Second)

	err := client.Login(context.Background(), "admin", "wrong")

	assert.ErrorIs(t, err, ErrRejected)
}

func TestLoadConfig_RejectsNonPositiveValues(t *testing.T) {
	t.Setenv("BENCH_WORKERS", "0")

	_, err := LoadConfig()

	assert.Error(t, err)
}
