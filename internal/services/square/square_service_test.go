package square

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cardshop/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewService("test-token", "LOC1", nil)
	svc.baseURL = server.URL
	return svc, server
}

func TestSyncItemUsesSKUAsIdempotencyKey(t *testing.T) {
	var received upsertRequest
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/object" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	item := &models.InventoryItem{SKU: "OP01-001", CardName: "Zoro", Condition: "NM", SellPrice: 9.799999999999999, Quantity: 1}
	if err := svc.SyncItem(context.Background(), item); err != nil {
		t.Fatalf("SyncItem: %v", err)
	}

	if received.IdempotencyKey != "OP01-001" {
		t.Fatalf("idempotency key = %q, want the SKU", received.IdempotencyKey)
	}
	variation := received.Object.ItemData.Variations[0]
	if variation.ItemVariationData.SKU != "OP01-001" {
		t.Fatalf("variation sku = %q", variation.ItemVariationData.SKU)
	}
	if variation.ItemVariationData.PriceMoney.Amount != 980 {
		t.Fatalf("price cents = %d, want 980", variation.ItemVariationData.PriceMoney.Amount)
	}
}

func TestSyncItemRoundsCentBoundaryPrices(t *testing.T) {
	// 19.99 is 19.989999... in float64; a truncating conversion would
	// send 1998 cents.
	var received upsertRequest
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	item := &models.InventoryItem{SKU: "OP01-002", CardName: "Luffy", Condition: "NM", SellPrice: 19.99, Quantity: 1}
	if err := svc.SyncItem(context.Background(), item); err != nil {
		t.Fatalf("SyncItem: %v", err)
	}

	amount := received.Object.ItemData.Variations[0].ItemVariationData.PriceMoney.Amount
	if amount != 1999 {
		t.Fatalf("price cents = %d, want 1999", amount)
	}
}

func TestSyncItemSurfacesSquareErrors(t *testing.T) {
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"category":"INVALID_REQUEST_ERROR","code":"BAD_REQUEST","detail":"missing name"}]}`))
	})

	item := &models.InventoryItem{SKU: "OP01-001"}
	err := svc.SyncItem(context.Background(), item)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSyncAllWithoutTokenFailsFast(t *testing.T) {
	svc := NewService("", "", nil)

	items := []models.InventoryItem{{SKU: "A"}, {SKU: "B"}}
	succeeded, failed, results := svc.SyncAll(context.Background(), items)
	if succeeded != 0 || failed != 2 {
		t.Fatalf("report = %d/%d, want 0/2", succeeded, failed)
	}
	for _, r := range results {
		if r.Error == "" {
			t.Fatalf("expected config error for %s", r.SKU)
		}
	}
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	calls := 0
	svc, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"errors":[{"code":"INTERNAL","detail":"boom"}]}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	items := []models.InventoryItem{{SKU: "A"}, {SKU: "B"}, {SKU: "C"}}
	succeeded, failed, _ := svc.SyncAll(context.Background(), items)
	if succeeded != 2 || failed != 1 {
		t.Fatalf("report = %d/%d, want 2/1", succeeded, failed)
	}
}
