package customers

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cardshop/internal/models"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create registers a consignment vendor. The vendor code is the short
// uppercase prefix embedded in the consignor's item SKUs.
func (s *Service) Create(customer *models.Customer) error {
	customer.VendorCode = strings.ToUpper(strings.TrimSpace(customer.VendorCode))
	if customer.Name == "" {
		return fmt.Errorf("customer name is required")
	}
	if customer.VendorCode == "" {
		return fmt.Errorf("vendor code is required")
	}
	return s.db.Create(customer).Error
}

func (s *Service) Get(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) List() ([]models.Customer, error) {
	var list []models.Customer
	err := s.db.Order("name ASC").Find(&list).Error
	return list, err
}

func (s *Service) Update(id uint, updates map[string]interface{}) error {
	if code, ok := updates["vendor_code"].(string); ok {
		updates["vendor_code"] = strings.ToUpper(strings.TrimSpace(code))
	}
	return s.db.Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the vendor record only. Their consigned items keep
// their customer reference and stay in inventory.
func (s *Service) Delete(id uint) error {
	return s.db.Delete(&models.Customer{}, id).Error
}

// Items lists a consignor's inventory.
func (s *Service) Items(id uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.Where("customer_id = ?", id).Order("created_at DESC").Find(&items).Error
	return items, err
}

// RecalculateOwed rebuilds a consignor's running totals from their
// unpaid items. Used after manual edits that bypass intake accounting.
func (s *Service) RecalculateOwed(id uint) (*models.Customer, error) {
	customer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	var owed float64
	var count int64
	s.db.Model(&models.InventoryItem{}).
		Where("customer_id = ? AND acquisition_type = ?", id, models.AcquisitionConsignment).
		Count(&count)
	s.db.Model(&models.InventoryItem{}).
		Where("customer_id = ? AND acquisition_type = ? AND consignor_paid = ?", id, models.AcquisitionConsignment, false).
		Select("COALESCE(SUM(consignor_owed), 0)").
		Scan(&owed)

	customer.TotalConsignments = int(count)
	customer.TotalOwed = owed
	if err := s.db.Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// MarkPaid settles the consignor payout on one item and reduces the
// customer's running owed total.
func (s *Service) MarkPaid(skuStr string) error {
	var item models.InventoryItem
	if err := s.db.First(&item, "sku = ?", skuStr).Error; err != nil {
		return err
	}
	if item.AcquisitionType != models.AcquisitionConsignment {
		return fmt.Errorf("item %s is not a consignment", skuStr)
	}
	if item.ConsignorPaid {
		return nil
	}

	if err := s.db.Model(&item).Update("consignor_paid", true).Error; err != nil {
		return err
	}
	if item.CustomerID != nil {
		return s.db.Model(&models.Customer{}).Where("id = ?", *item.CustomerID).
			Update("total_owed", gorm.Expr("total_owed - ?", item.ConsignorOwed)).Error
	}
	return nil
}
