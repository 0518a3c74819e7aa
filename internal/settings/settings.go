// Package settings is the durable per-device key-value store for
// operator configuration: condition buy percentages, the sell markup,
// and the printer vendor code. These live apart from inventory records
// and are deliberately not shared across devices.
package settings

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardshop/internal/models"
	"cardshop/internal/pricing"
)

const (
	KeyMarkup            = "markup"
	KeyPrinterVendorCode = "printer.vendor_code"

	conditionKeyPrefix = "condition."
)

var conditionCodes = []string{"NM", "LP", "MP", "HP", "DMG"}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(key string) (string, error) {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *Store) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&setting).Error
}

// SetConditionPercent overrides the buy percentage for one grade.
func (s *Store) SetConditionPercent(condition string, percent float64) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("condition percent %v out of range [0,100]", percent)
	}
	return s.Set(conditionKeyPrefix+condition, strconv.FormatFloat(percent, 'f', -1, 64))
}

// SetMarkup overrides the global sell markup.
func (s *Store) SetMarkup(percent float64) error {
	if percent < 0 || percent > 200 {
		return fmt.Errorf("markup %v out of range [0,200]", percent)
	}
	return s.Set(KeyMarkup, strconv.FormatFloat(percent, 'f', -1, 64))
}

// ConditionTable builds a pricing table from the shop defaults plus any
// stored overrides. Unreadable or malformed overrides are ignored in
// favor of the default for that key.
func (s *Store) ConditionTable() *pricing.ConditionTable {
	table := pricing.NewConditionTable()
	for _, code := range conditionCodes {
		if pct, ok := s.floatSetting(conditionKeyPrefix + code); ok {
			table.Set(code, pct)
		}
	}
	if markup, ok := s.floatSetting(KeyMarkup); ok {
		table.SetMarkup(markup)
	}
	return table
}

func (s *Store) floatSetting(key string) (float64, bool) {
	value, err := s.Get(key)
	if err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
