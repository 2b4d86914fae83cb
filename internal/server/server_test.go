package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	cartservice "github.com/nahomjim91/spice-marketplace/internal/cart/service"
	"github.com/nahomjim91/spice-marketplace/internal/cart/store"
	catalogdomain "github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	catalogrepo "github.com/nahomjim91/spice-marketplace/internal/catalog/repository"
	catalogservice "github.com/nahomjim91/spice-marketplace/internal/catalog/service"
	checkoutdomain "github.com/nahomjim91/spice-marketplace/internal/checkout/domain"
	checkoutrepo "github.com/nahomjim91/spice-marketplace/internal/checkout/repository"
	checkoutservice "github.com/nahomjim91/spice-marketplace/internal/checkout/service"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	paymentdomain "github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGateway struct {
	result paymentdomain.ChargeResult
	calls  int
}

func (g *stubGateway) Charge(context.Context, paymentdomain.ChargeRequest) (paymentdomain.ChargeResult, error) {
	g.calls++
	return g.result, nil
}

type testServer struct {
	handler http.Handler
	gateway *stubGateway
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&catalogdomain.Product{}, &checkoutdomain.Order{}))

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC))
	cfg := config.Config{
		Environment: "test",
		Cart: config.CartConfig{
			StorageKey:    "test-cart",
			MergePolicy:   config.MergePolicyProduct,
			SessionHeader: "X-Cart-Session",
		},
		Payment: config.PaymentConfig{Currency: "usd"},
	}

	catalogSvc := catalogservice.New(catalogservice.Params{DB: db, Log: log, Clock: clk, Repo: catalogrepo.Provide()})
	require.NoError(t, catalogSvc.Seed(context.Background()))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	engine := cartservice.New(cartservice.Params{
		Log:     log,
		Clock:   clk,
		GenID:   node,
		Store:   store.NewMemoryStore(),
		Catalog: catalogSvc,
		Pricing: config.NewStaticPricingHolder(config.DefaultPricingConfig()),
		Config:  cfg,
	})

	gw := &stubGateway{result: paymentdomain.ChargeResult{Success: true, Provider: "stub", PaymentIntentID: "pi_stub"}}
	checkoutSvc := checkoutservice.New(checkoutservice.Params{
		DB:      db,
		Log:     log,
		Clock:   clk,
		Gateway: gw,
		Repo:    checkoutrepo.Provide(),
		Config:  cfg,
	})

	srv := NewServer(ServerParams{
		Engine:      NewEngine(cfg, log, prometheus.NewRegistry()),
		Config:      cfg,
		Log:         log,
		CatalogSvc:  catalogSvc,
		Carts:       cartservice.NewManager(engine, cfg, log),
		CheckoutSvc: checkoutSvc,
	})
	srv.RegisterRoutes()

	return testServer{handler: srv.Handler(), gateway: gw}
}

func (ts testServer) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Cart-Session", session)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type amountResponse struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

type cartResponse struct {
	Data struct {
		SessionID string `json:"session_id"`
		Items     []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
			Product  struct {
				ID string `json:"id"`
			} `json:"product"`
			LineTotal amountResponse `json:"line_total"`
		} `json:"items"`
		IsOpen bool `json:"is_open"`
		Totals struct {
			ItemCount  int            `json:"item_count"`
			Subtotal   amountResponse `json:"subtotal"`
			Shipping   amountResponse `json:"shipping"`
			Tax        amountResponse `json:"tax"`
			GrandTotal amountResponse `json:"grand_total"`
		} `json:"totals"`
	} `json:"data"`
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func validShipping() map[string]any {
	return map[string]any{
		"shipping": map[string]any{
			"firstName": "Selam",
			"lastName":  "Tesfay",
			"email":     "selam@example.com",
			"address":   "12 Harnet Ave",
		},
	}
}

func TestListProductsFiltersByCategory(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/products?category=coffee-tea", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []productView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	for _, p := range resp.Data {
		assert.Equal(t, "coffee-tea", p.Category)
	}

	rec = ts.do(t, http.MethodGet, "/api/products?in_stock=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/products/berbere-gondar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data productView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Single-Origin Berbere", resp.Data.Name)
	assert.Equal(t, 45.0, resp.Data.Price.Amount)
	assert.Equal(t, "$45.00", resp.Data.Price.Formatted)

	rec = ts.do(t, http.MethodGet, "/api/products/saffron", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Type)
}

func TestAddCartItemRendersTotals(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-gondar"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shopper-1", rec.Header().Get("X-Cart-Session"))

	resp := decodeCart(t, rec)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 1, resp.Data.Items[0].Quantity)
	assert.True(t, resp.Data.IsOpen)
	assert.Equal(t, 45.0, resp.Data.Totals.Subtotal.Amount)
	assert.Equal(t, 10.0, resp.Data.Totals.Shipping.Amount)
	assert.Equal(t, 3.83, resp.Data.Totals.Tax.Amount)
	assert.Equal(t, "$58.83", resp.Data.Totals.GrandTotal.Formatted)

	rec = ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-gondar", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeCart(t, rec)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 3, resp.Data.Items[0].Quantity)
	assert.Equal(t, "$135.00", resp.Data.Items[0].LineTotal.Formatted)
	assert.Equal(t, 0.0, resp.Data.Totals.Shipping.Amount)

	// Another session sees its own cart.
	rec = ts.do(t, http.MethodGet, "/api/cart", "shopper-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Data.Items)
}

func TestCartSessionMintedWhenHeaderMissing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	minted := rec.Header().Get("X-Cart-Session")
	assert.NotEmpty(t, minted)
	assert.Equal(t, minted, decodeCart(t, rec).Data.SessionID)

	rec = ts.do(t, http.MethodGet, "/api/cart", "not a session!", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "invalid_session", resp.Error.Errors[0].Code)
}

func TestAddCartItemValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-gondar", "quantity": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error.Type)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "invalid_quantity", resp.Error.Errors[0].Code)

	rec = ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "saffron"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/cart", "shopper-1", nil)
	assert.Empty(t, decodeCart(t, rec).Data.Items)
}

func TestAddCartItemRejectsQuantityOverCap(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-gondar", "quantity": cartdomain.MaxLineQuantity - 1})
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := decodeCart(t, rec).Data.Items[0].ID

	rec = ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-gondar", "quantity": 2})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "invalid_quantity", resp.Error.Errors[0].Code)

	rec = ts.do(t, http.MethodPatch, "/api/cart/items/"+lineID, "shopper-1", map[string]any{"quantity": math.MaxInt})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/cart", "shopper-1", nil)
	cart := decodeCart(t, rec)
	require.Len(t, cart.Data.Items, 1)
	assert.Equal(t, cartdomain.MaxLineQuantity-1, cart.Data.Totals.ItemCount)
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "shero-yellow"})
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := decodeCart(t, rec).Data.Items[0].ID

	rec = ts.do(t, http.MethodPatch, "/api/cart/items/"+lineID, "shopper-1", map[string]any{"quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Equal(t, 4, resp.Data.Totals.ItemCount)
	assert.Equal(t, 100.0, resp.Data.Totals.Subtotal.Amount)

	rec = ts.do(t, http.MethodPatch, "/api/cart/items/"+lineID, "shopper-1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/cart/items/"+lineID, "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeCart(t, rec)
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, 0.0, resp.Data.Totals.GrandTotal.Amount)
}

func TestCartVisibility(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/cart/toggle", "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeCart(t, rec).Data.IsOpen)

	rec = ts.do(t, http.MethodPost, "/api/cart/close", "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeCart(t, rec).Data.IsOpen)

	rec = ts.do(t, http.MethodPost, "/api/cart/open", "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeCart(t, rec).Data.IsOpen)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/checkout", "shopper-1", validShipping())
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decodeError(t, rec).Error.Type)
	assert.Equal(t, 0, ts.gateway.calls)

	rec = ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-gondar"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/checkout", "shopper-1", map[string]any{"shipping": map[string]any{"firstName": "Selam"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_shipping", decodeError(t, rec).Error.Errors[0].Code)

	rec = ts.do(t, http.MethodPost, "/api/checkout", "shopper-1", validShipping())
	require.Equal(t, http.StatusCreated, rec.Code)
	var receipt struct {
		Data receiptView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, "$58.83", receipt.Data.Amount.Formatted)
	assert.Equal(t, "pi_stub", receipt.Data.PaymentIntentID)
	assert.Equal(t, "Thursday, October 22", receipt.Data.EstimatedDelivery)
	assert.Len(t, receipt.Data.Items, 1)

	rec = ts.do(t, http.MethodGet, "/api/cart", "shopper-1", nil)
	assert.Empty(t, decodeCart(t, rec).Data.Items)

	rec = ts.do(t, http.MethodGet, "/api/orders/"+receipt.Data.OrderID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var order struct {
		Data orderView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "selam@example.com", order.Data.Email)
	assert.Equal(t, 58.83, order.Data.GrandTotal.Amount)

	rec = ts.do(t, http.MethodGet, "/api/orders/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutDeclineKeepsCart(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.result = paymentdomain.ChargeResult{Success: false, Provider: "stub", FailureMessage: paymentdomain.DeclineMessage}

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "shopper-1", map[string]any{"product_id": "berbere-aged"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/checkout", "shopper-1", validShipping())
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "payment_declined", resp.Error.Type)
	assert.Equal(t, paymentdomain.DeclineMessage, resp.Error.Message)

	rec = ts.do(t, http.MethodGet, "/api/cart", "shopper-1", nil)
	cart := decodeCart(t, rec)
	require.Len(t, cart.Data.Items, 1)
	assert.Equal(t, "berbere-aged", cart.Data.Items[0].Product.ID)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
