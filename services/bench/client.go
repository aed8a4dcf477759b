package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/codes"
)

const dashboardPath = "/api/dashboard"

// ErrRejected indica que o serviço recusou a operação (4xx), por exemplo estoque insuficiente
var ErrRejected = errors.New("operation rejected by stock service")

// Envelope espelha o formato de resposta da API de estoque
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Token   string `json:"token"`
}

type ProductDetails struct {
	ID       string          `json:"id_produit"`
	Name     string          `json:"nom"`
	Quantity int             `json:"quantite"`
	Price    decimal.Decimal `json:"prix_unitaire"`
}

// StockClient fala o contrato HTTP do serviço de estoque
type StockClient struct {
	http *resty.Client
}

// NewStockClient cria um cliente apontando para baseURL
func NewStockClient(baseURL string, timeout time.Duration) *StockClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &StockClient{http: client}
}

// Login autentica e passa a enviar o token como Bearer
func (c *StockClient) Login(ctx context.Context, username, password string) error {
	var env Envelope[any]
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&env).
		SetError(&env).
		Post("/api/login")
	if err := checkResponse(resp, err, env.Success, env.Message); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.http.SetAuthToken(env.Token)
	return nil
}

func (c *StockClient) AddSupplier(ctx context.Context, name string) (string, error) {
	env, err := dispatch[any](ctx, c, http.MethodPost, "add_supplier", map[string]any{"nom": name})
	if err != nil {
		return "", err
	}
	return env.ID, nil
}

func (c *StockClient) AddProduct(ctx context.Context, name string, quantity int, price decimal.Decimal, supplierID string) (string, error) {
	body := map[string]any{
		"name":       name,
		"quantity":   quantity,
		"price":      price,
		"supplierId": supplierID,
	}
	env, err := dispatch[any](ctx, c, http.MethodPost, "add_quick_product", body)
	if err != nil {
		return "", err
	}
	return env.ID, nil
}

func (c *StockClient) RecordPurchase(ctx context.Context, productID, supplierID string, quantity int) error {
	body := map[string]any{"productId": productID, "supplierId": supplierID, "quantity": quantity}
	_, err := dispatch[any](ctx, c, http.MethodPost, "record_quick_purchase", body)
	return err
}

func (c *StockClient) RecordSale(ctx context.Context, productID string, quantity int, price decimal.Decimal) error {
	body := map[string]any{"productId": productID, "quantity": quantity, "salePrice": price}
	_, err := dispatch[any](ctx, c, http.MethodPost, "record_quick_sale", body)
	return err
}

func (c *StockClient) ProductDetails(ctx context.Context) ([]ProductDetails, error) {
	env, err := dispatch[[]ProductDetails](ctx, c, http.MethodGet, "get_all_products_details", nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *StockClient) DeleteProduct(ctx context.Context, productID string) error {
	_, err := dispatch[any](ctx, c, http.MethodDelete, "delete_product", map[string]any{"id_produit": productID})
	return err
}

func (c *StockClient) DeleteSupplier(ctx context.Context, supplierID string) error {
	_, err := dispatch[any](ctx, c, http.MethodDelete, "delete_supplier", map[string]any{"id_fournisseur": supplierID})
	return err
}

// dispatch chama /api/dashboard?action=<action> e decodifica o envelope
func dispatch[T any](ctx context.Context, c *StockClient, method, action string, body any) (*Envelope[T], error) {
	ctx, span := startActionSpan(ctx, method, action)
	defer span.End()

	env := &Envelope[T]{}
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("action", action).
		SetResult(env).
		SetError(env)
	if body != nil {
		req.SetBody(body)
	}
	injectTraceContext(ctx, req.Header)

	resp, err := req.Execute(method, dashboardPath)
	if err := checkResponse(resp, err, env.Success, env.Message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, action+" failed")
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return env, nil
}

func checkResponse(resp *resty.Response, err error, success bool, message string) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), message)
	}
	if resp.IsError() || !success {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode(), message)
	}
	return nil
}
