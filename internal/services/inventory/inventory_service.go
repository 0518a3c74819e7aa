package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cardshop/internal/models"
	"cardshop/internal/pricing"
	"cardshop/internal/services/lookup"
	"cardshop/internal/settings"
	"cardshop/internal/sku"
)

const priceHistoryCap = 10

// Publisher receives live events for connected terminals. A nil
// publisher is allowed; events are then dropped.
type Publisher interface {
	Publish(eventType string, data interface{})
}

type Service struct {
	db       *gorm.DB
	settings *settings.Store
	pub      Publisher
}

func NewService(db *gorm.DB, settingsStore *settings.Store, pub Publisher) *Service {
	return &Service{db: db, settings: settingsStore, pub: pub}
}

// Engine builds a pricing engine from the current operator settings,
// so condition/markup overrides take effect without a restart.
func (s *Service) Engine() *pricing.Engine {
	return pricing.NewEngine(s.settings.ConditionTable())
}

// IntakeRequest is one card (or stack) entering inventory.
type IntakeRequest struct {
	SKU             string  `json:"sku"` // optional manual override
	CardName        string  `json:"card_name"`
	SetName         string  `json:"set_name"`
	Game            string  `json:"game"`
	Number          string  `json:"number"`
	CatalogID       string  `json:"catalog_id"`
	Rarity          string  `json:"rarity"`
	Condition       string  `json:"condition"`
	Printing        string  `json:"printing"`
	Language        string  `json:"language"`
	MarketPrice     float64 `json:"market_price"`
	Quantity        int     `json:"quantity"`
	AcquisitionType string  `json:"acquisition_type"`
	CustomerID      *uint   `json:"customer_id"`
	PayoutPercent   float64 `json:"payout_percent"`
	BatchID         string  `json:"batch_id"`
}

func (r *IntakeRequest) validate() error {
	if r.CardName == "" {
		return fmt.Errorf("card name is required")
	}
	switch r.AcquisitionType {
	case models.AcquisitionBuy, models.AcquisitionTrade, models.AcquisitionPull:
	case models.AcquisitionConsignment:
		if r.CustomerID == nil {
			return fmt.Errorf("consignment intake requires a customer")
		}
		if r.PayoutPercent < 0 || r.PayoutPercent > 100 {
			return fmt.Errorf("payout percent %v out of range [0,100]", r.PayoutPercent)
		}
	default:
		return fmt.Errorf("unknown acquisition type %q", r.AcquisitionType)
	}
	return nil
}

// Intake prices and stores one item. Consignment items are tied to
// their consignor: the SKU carries the vendor code and the customer's
// running totals are updated. A SKU collision comes back as a storage
// error for the operator to resolve; the generator does not guarantee
// uniqueness.
func (s *Service) Intake(req IntakeRequest) (*models.InventoryItem, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var customer *models.Customer
	if req.AcquisitionType == models.AcquisitionConsignment {
		customer = &models.Customer{}
		if err := s.db.First(customer, *req.CustomerID).Error; err != nil {
			return nil, fmt.Errorf("consignor not found: %w", err)
		}
		if customer.VendorCode == "" {
			return nil, fmt.Errorf("consignor %q has no vendor code", customer.Name)
		}
	}

	quote := s.Engine().Compute(req.MarketPrice, req.AcquisitionType, req.Condition, pricing.Options{
		PayoutPercent: req.PayoutPercent,
	})

	itemSKU := req.SKU
	if itemSKU == "" {
		vendorCode := ""
		if customer != nil {
			vendorCode = customer.VendorCode
		}
		itemSKU = sku.Generate(req.Number, req.CatalogID, req.AcquisitionType, vendorCode)
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	status := models.StatusPending
	if req.MarketPrice > 0 {
		status = models.StatusPriced
	}

	item := &models.InventoryItem{
		SKU:             itemSKU,
		CardName:        req.CardName,
		SetName:         req.SetName,
		Game:            req.Game,
		Number:          req.Number,
		Rarity:          req.Rarity,
		Condition:       req.Condition,
		Printing:        req.Printing,
		Language:        req.Language,
		MarketPrice:     req.MarketPrice,
		CostBasis:       quote.CostBasis,
		SellPrice:       quote.SellPrice,
		Quantity:        quantity,
		AcquisitionType: req.AcquisitionType,
		Status:          status,
		BatchID:         req.BatchID,
	}
	if customer != nil {
		item.CustomerID = &customer.ID
		item.CustomerVendorCode = customer.VendorCode
		item.ConsignorPayoutPercent = req.PayoutPercent
		item.ConsignorOwed = quote.ConsignorOwed
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to store item %s: %w", itemSKU, err)
	}

	if customer != nil {
		err := s.db.Model(customer).Updates(map[string]interface{}{
			"total_consignments": gorm.Expr("total_consignments + 1"),
			"total_owed":         gorm.Expr("total_owed + ?", quote.ConsignorOwed),
		}).Error
		if err != nil {
			logrus.WithError(err).WithField("customer_id", customer.ID).Warn("Failed to update consignor totals")
		}
	}

	return item, nil
}

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Status     string
	Game       string
	BatchID    string
	CustomerID *uint
	Search     string
	Limit      int
	Offset     int
}

func (s *Service) List(f Filter) ([]models.InventoryItem, error) {
	var items []models.InventoryItem

	query := s.db.Model(&models.InventoryItem{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Game != "" {
		query = query.Where("game = ?", f.Game)
	}
	if f.BatchID != "" {
		query = query.Where("batch_id = ?", f.BatchID)
	}
	if f.CustomerID != nil {
		query = query.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Search != "" {
		query = query.Where("card_name LIKE ? OR sku LIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}

	err := query.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (s *Service) Get(skuStr string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.Preload("PriceHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&item, "sku = ?", skuStr).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies a partial field update. Setting sell_price directly
// marks the item as manually priced so repricing leaves it alone.
func (s *Service) Update(skuStr string, updates map[string]interface{}) error {
	if _, ok := updates["sell_price"]; ok {
		updates["manual_price"] = true
	}
	delete(updates, "sku") // immutable after creation
	return s.db.Model(&models.InventoryItem{}).Where("sku = ?", skuStr).Updates(updates).Error
}

func (s *Service) Delete(skuStr string) error {
	return s.db.Delete(&models.InventoryItem{}, "sku = ?", skuStr).Error
}

// SetStatus moves an item to any workflow status, forward or backward.
func (s *Service) SetStatus(skuStr, status string) error {
	switch status {
	case models.StatusPending, models.StatusPriced, models.StatusLabeled, models.StatusListed:
	default:
		return fmt.Errorf("unknown status %q", status)
	}
	return s.db.Model(&models.InventoryItem{}).Where("sku = ?", skuStr).
		Update("status", status).Error
}

// RefreshPrice records a new market price for an item, recomputes its
// derived prices unless the operator has overridden them, and appends
// a history entry (capped at the newest 10).
func (s *Service) RefreshPrice(skuStr string, newMarket float64, source string) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	if err := s.db.First(item, "sku = ?", skuStr).Error; err != nil {
		return nil, err
	}

	oldPrice := item.SellPrice
	oldOwed := item.ConsignorOwed
	item.MarketPrice = newMarket

	if !item.ManualPrice {
		quote := s.Engine().Compute(newMarket, item.AcquisitionType, item.Condition, pricing.Options{
			PayoutPercent: item.ConsignorPayoutPercent,
		})
		item.CostBasis = quote.CostBasis
		item.SellPrice = quote.SellPrice
		if item.AcquisitionType == models.AcquisitionConsignment && !item.ConsignorPaid {
			item.ConsignorOwed = quote.ConsignorOwed
		}
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}

	// Keep the consignor's running balance in step with the item.
	if item.CustomerID != nil && !item.ConsignorPaid {
		if delta := item.ConsignorOwed - oldOwed; delta != 0 {
			err := s.db.Model(&models.Customer{}).Where("id = ?", *item.CustomerID).
				Update("total_owed", gorm.Expr("total_owed + ?", delta)).Error
			if err != nil {
				logrus.WithError(err).WithField("sku", item.SKU).Warn("Failed to update consignor owed total")
			}
		}
	}

	change := item.SellPrice - oldPrice
	changePercent := 0.0
	if oldPrice > 0 {
		changePercent = change / oldPrice * 100
	}
	entry := models.PriceHistory{
		SKU:           item.SKU,
		OldPrice:      oldPrice,
		NewPrice:      item.SellPrice,
		ChangeAmount:  change,
		ChangePercent: changePercent,
		Source:        source,
		UpdatedAt:     time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithField("sku", item.SKU).Warn("Failed to record price history")
	}
	s.trimHistory(item.SKU)

	s.publish("price_update", map[string]interface{}{
		"sku":       item.SKU,
		"card_name": item.CardName,
		"old_price": oldPrice,
		"new_price": item.SellPrice,
		"source":    source,
	})

	return item, nil
}

// trimHistory drops everything beyond the newest entries for a SKU.
func (s *Service) trimHistory(skuStr string) {
	var keep []uint
	s.db.Model(&models.PriceHistory{}).
		Where("sku = ?", skuStr).
		Order("created_at DESC").
		Limit(priceHistoryCap).
		Pluck("id", &keep)
	if len(keep) == priceHistoryCap {
		s.db.Where("sku = ? AND id NOT IN ?", skuStr, keep).Delete(&models.PriceHistory{})
	}
}

// BulkUpload stores a batch of intake rows sequentially. Every row is
// attempted; failures are recorded per item and the loop continues.
// All rows share one generated batch id for later bulk deletion.
func (s *Service) BulkUpload(ctx context.Context, rows []IntakeRequest) *BatchReport {
	report := &BatchReport{BatchID: uuid.NewString()}

	for i, row := range rows {
		if ctx.Err() != nil {
			break
		}
		row.BatchID = report.BatchID

		result := ItemResult{CardName: row.CardName}
		item, err := s.Intake(row)
		if err != nil {
			result.Error = err.Error()
			logrus.WithError(err).WithField("card", row.CardName).Warn("Bulk upload item failed")
		} else {
			result.SKU = item.SKU
		}
		report.add(result)

		s.publish("batch_progress", map[string]interface{}{
			"batch_id":  report.BatchID,
			"processed": i + 1,
			"total":     len(rows),
			"failed":    report.Failed,
		})
	}

	logrus.WithFields(logrus.Fields{
		"batch_id":  report.BatchID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Bulk upload finished")
	return report
}

// BulkReprice looks up a fresh market price for every inventory item
// and refreshes it, manual overrides excepted by RefreshPrice itself.
// Lookups go through the adapter, which spaces calls to
// respect provider rate limits; a cancelled context stops the loop
// between items.
func (s *Service) BulkReprice(ctx context.Context, adapter *lookup.Adapter, provider string) *BatchReport {
	report := &BatchReport{}

	items, err := s.List(Filter{})
	if err != nil {
		logrus.WithError(err).Error("Bulk reprice: failed to list inventory")
		return report
	}

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		result := ItemResult{SKU: item.SKU, CardName: item.CardName}

		price, err := s.lookupMarketPrice(ctx, adapter, provider, &item)
		if err != nil {
			result.Error = err.Error()
		} else if _, err := s.RefreshPrice(item.SKU, price, provider); err != nil {
			result.Error = err.Error()
		}
		report.add(result)
	}

	logrus.WithFields(logrus.Fields{
		"provider":  provider,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Bulk reprice finished")
	return report
}

func (s *Service) lookupMarketPrice(ctx context.Context, adapter *lookup.Adapter, provider string, item *models.InventoryItem) (float64, error) {
	cards, err := adapter.Search(ctx, provider, lookup.SearchQuery{
		Query:      item.CardName,
		CardNumber: item.Number,
		Game:       item.Game,
	})
	if err != nil {
		return 0, err
	}
	if len(cards) == 0 {
		return 0, fmt.Errorf("no market match for %s", item.CardName)
	}

	card := cards[0]
	for _, v := range card.Variants {
		if v.Condition == item.Condition && (item.Printing == "" || v.Printing == item.Printing) {
			return v.Price, nil
		}
	}
	if len(card.Variants) > 0 {
		return card.Variants[0].Price, nil
	}
	return 0, fmt.Errorf("no priced variant for %s", item.CardName)
}

// BatchDelete removes every item in an upload batch, one independent
// delete per record.
func (s *Service) BatchDelete(batchID string) *BatchReport {
	report := &BatchReport{BatchID: batchID}

	items, err := s.List(Filter{BatchID: batchID})
	if err != nil {
		logrus.WithError(err).WithField("batch_id", batchID).Error("Batch delete: list failed")
		return report
	}

	for _, item := range items {
		result := ItemResult{SKU: item.SKU, CardName: item.CardName}
		if err := s.Delete(item.SKU); err != nil {
			result.Error = err.Error()
		}
		report.add(result)
	}
	return report
}

func (s *Service) publish(eventType string, data interface{}) {
	if s.pub != nil {
		s.pub.Publish(eventType, data)
	}
}

