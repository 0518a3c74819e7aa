package square

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"cardshop/internal/models"
)

// Publisher receives sync progress events. A nil publisher drops them.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// Service pushes inventory items into the Square catalog. One catalog
// object is upserted per SKU with the SKU as the idempotency key, so
// repeated sync attempts never create duplicates.
type Service struct {
	accessToken string
	locationID  string
	client      *resty.Client
	baseURL     string
	pub         Publisher
}

type catalogItemVariation struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	ItemVariationData struct {
		Name        string `json:"name"`
		SKU         string `json:"sku"`
		PricingType string `json:"pricing_type"`
		PriceMoney  struct {
			Amount   int64  `json:"amount"` // USD cents
			Currency string `json:"currency"`
		} `json:"price_money"`
	} `json:"item_variation_data"`
}

type catalogObject struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	ItemData struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description,omitempty"`
		Variations  []catalogItemVariation `json:"variations"`
	} `json:"item_data"`
}

type upsertRequest struct {
	IdempotencyKey string        `json:"idempotency_key"`
	Object         catalogObject `json:"object"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type upsertResponse struct {
	Errors []squareError `json:"errors"`
}

func NewService(accessToken, locationID string, pub Publisher) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "CardShop-POS/1.0")
	client.SetHeader("Square-Version", "2024-01-18")

	return &Service{
		accessToken: accessToken,
		locationID:  locationID,
		client:      client,
		baseURL:     "https://connect.squareup.com/v2",
		pub:         pub,
	}
}

// SyncItem upserts one inventory item as a Square catalog object.
func (s *Service) SyncItem(ctx context.Context, item *models.InventoryItem) error {
	if s.accessToken == "" {
		return fmt.Errorf("square access token is not configured")
	}

	variation := catalogItemVariation{Type: "ITEM_VARIATION", ID: "#" + item.SKU + "-var"}
	variation.ItemVariationData.Name = item.Condition
	variation.ItemVariationData.SKU = item.SKU
	variation.ItemVariationData.PricingType = "FIXED_PRICING"
	variation.ItemVariationData.PriceMoney.Amount = int64(math.Round(item.SellPrice * 100))
	variation.ItemVariationData.PriceMoney.Currency = "USD"

	object := catalogObject{Type: "ITEM", ID: "#" + item.SKU}
	object.ItemData.Name = item.CardName
	object.ItemData.Description = fmt.Sprintf("%s %s %s", item.SetName, item.Number, item.Condition)
	object.ItemData.Variations = []catalogItemVariation{variation}

	body := upsertRequest{
		IdempotencyKey: item.SKU,
		Object:         object,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", s.accessToken)).
		SetBody(body).
		Post(fmt.Sprintf("%s/catalog/object", s.baseURL))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		var parsed upsertResponse
		if json.Unmarshal(resp.Body(), &parsed) == nil && len(parsed.Errors) > 0 {
			return fmt.Errorf("square API error: %s (%s)", parsed.Errors[0].Detail, parsed.Errors[0].Code)
		}
		return fmt.Errorf("square API error: status %d", resp.StatusCode())
	}
	return nil
}

// SyncResult mirrors the per-item outcome shape used by bulk
// inventory operations.
type SyncResult struct {
	SKU   string `json:"sku"`
	Error string `json:"error,omitempty"`
}

// SyncAll pushes every listed item, continuing past individual
// failures and reporting counts at the end.
func (s *Service) SyncAll(ctx context.Context, items []models.InventoryItem) (succeeded, failed int, results []SyncResult) {
	if s.accessToken == "" {
		// Config error: abort before any call, nothing partially synced.
		for _, item := range items {
			results = append(results, SyncResult{SKU: item.SKU, Error: "square access token is not configured"})
		}
		return 0, len(items), results
	}

	for i := range items {
		if ctx.Err() != nil {
			break
		}
		result := SyncResult{SKU: items[i].SKU}
		if err := s.SyncItem(ctx, &items[i]); err != nil {
			result.Error = err.Error()
			failed++
			logrus.WithError(err).WithField("sku", items[i].SKU).Warn("Square sync failed")
		} else {
			succeeded++
		}
		results = append(results, result)

		if s.pub != nil {
			s.pub.Publish("sync_status", map[string]interface{}{
				"sku":       items[i].SKU,
				"processed": i + 1,
				"total":     len(items),
				"succeeded": succeeded,
				"failed":    failed,
			})
		}
	}

	logrus.WithFields(logrus.Fields{"succeeded": succeeded, "failed": failed}).Info("Square sync finished")
	return succeeded, failed, results
}
