package models

import (
	"time"

	"gorm.io/gorm"
)

// Acquisition types drive pricing-rule selection and are fixed at intake.
const (
	AcquisitionBuy         = "buy"
	AcquisitionTrade       = "trade"
	AcquisitionPull        = "pull"
	AcquisitionConsignment = "consignment"
)

// Workflow statuses. Forward-moving by convention but any value may be
// set manually (e.g. moving an item back into the print queue).
const (
	StatusPending = "pending"
	StatusPriced  = "priced"
	StatusLabeled = "labeled"
	StatusListed  = "listed"
)

// InventoryItem represents one purchasable unit (a card or a stack of
// identical cards). SKU is the primary key; duplicates are rejected by
// the store, not by the generator.
type InventoryItem struct {
	SKU             string `json:"sku" gorm:"primaryKey"`
	CardName        string `json:"card_name" gorm:"not null"`
	SetName         string `json:"set_name"`
	Game            string `json:"game"`
	Number          string `json:"number"`
	Rarity          string `json:"rarity"`
	Condition       string `json:"condition"`
	Printing        string `json:"printing"`
	Language        string `json:"language"`
	MarketPrice     float64 `json:"market_price"`
	CostBasis       float64 `json:"cost_basis"`
	SellPrice       float64 `json:"sell_price"`
	Quantity        int    `json:"quantity" gorm:"default:1"`
	AcquisitionType string `json:"acquisition_type" gorm:"not null"` // buy, trade, pull, consignment
	Status          string `json:"status" gorm:"default:'pending'"`  // pending, priced, labeled, listed

	// ManualPrice marks an explicit operator override; repricing leaves
	// SellPrice alone while it is set.
	ManualPrice bool `json:"manual_price"`

	// Consignment-only fields.
	CustomerID             *uint     `json:"customer_id"`
	Customer               *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	CustomerVendorCode     string    `json:"customer_vendor_code"`
	ConsignorPayoutPercent float64   `json:"consignor_payout_percent"`
	ConsignorPaid          bool      `json:"consignor_paid"`
	ConsignorOwed          float64   `json:"consignor_owed"`

	BatchID string `json:"batch_id" gorm:"index"`

	PriceHistory []PriceHistory `json:"price_history,omitempty" gorm:"foreignKey:SKU;references:SKU"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Customer represents a consignment vendor. Deleting a customer does
// not cascade to their consigned items.
type Customer struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"not null"`
	Phone             string         `json:"phone"`
	Email             string         `json:"email"`
	VendorCode        string         `json:"vendor_code" gorm:"unique;not null"`
	TotalConsignments int            `json:"total_consignments"`
	TotalOwed         float64        `json:"total_owed"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// PriceHistory records one price change for an item. The inventory
// service keeps only the 10 most recent entries per SKU.
type PriceHistory struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	SKU           string    `json:"sku" gorm:"index;not null"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	ChangeAmount  float64   `json:"change_amount"`
	ChangePercent float64   `json:"change_percent"`
	Source        string    `json:"source"` // justtcg, tcgcodex, cardtrader, manual
	UpdatedAt     time.Time `json:"updated_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Setting is one per-device key-value pair: condition percentages, the
// sell markup, printer vendor code. Kept apart from inventory records.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
