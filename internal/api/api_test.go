package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cardshop/internal/database"
	customerService "cardshop/internal/services/customers"
	inventoryService "cardshop/internal/services/inventory"
	"cardshop/internal/settings"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Initialize(dsn)
	if err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}

	store := settings.NewStore(db)
	inv := inventoryService.NewService(db, store, nil)
	cust := customerService.NewService(db)

	r := gin.New()
	SetupRoutes(r.Group("/api/v1"), db, inv, cust, nil, nil, store)
	return r
}

type previewResponse struct {
	Quote struct {
		MarketPrice float64 `json:"market_price"`
		CostBasis   float64 `json:"cost_basis"`
		SellPrice   float64 `json:"sell_price"`
		Profit      float64 `json:"profit"`
	} `json:"quote"`
}

func postPreview(t *testing.T, r *gin.Engine, body string) previewResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp previewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestPricingPreviewComputesBuyQuote(t *testing.T) {
	r := newTestRouter(t)

	resp := postPreview(t, r, `{"market_price":10,"acquisition_type":"buy","condition":"NM"}`)
	if got := fmt.Sprintf("%.2f", resp.Quote.CostBasis); got != "7.00" {
		t.Errorf("cost basis = %v, want 7.00", resp.Quote.CostBasis)
	}
	if got := fmt.Sprintf("%.2f", resp.Quote.SellPrice); got != "9.80" {
		t.Errorf("sell price = %v, want 9.80", resp.Quote.SellPrice)
	}
}

func TestPricingPreviewAcceptsAgreeingRemoteQuote(t *testing.T) {
	r := newTestRouter(t)

	resp := postPreview(t, r, `{"market_price":10,"acquisition_type":"buy","condition":"NM",
		"remote_quote":{"market_price":10,"cost_basis":7.05,"sell_price":9.85}}`)
	if resp.Quote.SellPrice != 9.85 {
		t.Errorf("sell price = %v, want the remote 9.85", resp.Quote.SellPrice)
	}
	if got := fmt.Sprintf("%.2f", resp.Quote.Profit); got != "2.80" {
		t.Errorf("profit = %v, want 2.80", resp.Quote.Profit)
	}
}

func TestPricingPreviewRejectsDivergentRemoteQuote(t *testing.T) {
	r := newTestRouter(t)

	resp := postPreview(t, r, `{"market_price":10,"acquisition_type":"buy","condition":"NM",
		"remote_quote":{"market_price":10,"cost_basis":5,"sell_price":12}}`)
	if got := fmt.Sprintf("%.2f", resp.Quote.SellPrice); got != "9.80" {
		t.Errorf("sell price = %v, want the local 9.80", resp.Quote.SellPrice)
	}
}
