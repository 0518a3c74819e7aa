package customers

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"cardshop/internal/database"
	"cardshop/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Initialize(dsn)
	if err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}
	return NewService(db), db
}

func TestCreateUppercasesVendorCode(t *testing.T) {
	svc, _ := newTestService(t)

	customer := &models.Customer{Name: "Kyle", VendorCode: " kyle "}
	if err := svc.Create(customer); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if customer.VendorCode != "KYLE" {
		t.Fatalf("vendor code = %q, want KYLE", customer.VendorCode)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Create(&models.Customer{VendorCode: "KYLE"}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if err := svc.Create(&models.Customer{Name: "Kyle"}); err == nil {
		t.Fatal("expected error for missing vendor code")
	}
}

func TestDeleteLeavesItemsIntact(t *testing.T) {
	svc, db := newTestService(t)

	customer := &models.Customer{Name: "Kyle", VendorCode: "KYLE"}
	if err := svc.Create(customer); err != nil {
		t.Fatalf("Create: %v", err)
	}
	item := &models.InventoryItem{
		SKU:             "KYLE-OP01-001",
		CardName:        "Zoro",
		AcquisitionType: models.AcquisitionConsignment,
		CustomerID:      &customer.ID,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := svc.Delete(customer.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int64
	db.Model(&models.InventoryItem{}).Where("sku = ?", item.SKU).Count(&count)
	if count != 1 {
		t.Fatal("consigned item was cascade-deleted")
	}
}

func TestRecalculateOwed(t *testing.T) {
	svc, db := newTestService(t)

	customer := &models.Customer{Name: "Kyle", VendorCode: "KYLE"}
	if err := svc.Create(customer); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items := []models.InventoryItem{
		{SKU: "KYLE-1", CardName: "A", AcquisitionType: models.AcquisitionConsignment, CustomerID: &customer.ID, ConsignorOwed: 9.10},
		{SKU: "KYLE-2", CardName: "B", AcquisitionType: models.AcquisitionConsignment, CustomerID: &customer.ID, ConsignorOwed: 5.00},
		{SKU: "KYLE-3", CardName: "C", AcquisitionType: models.AcquisitionConsignment, CustomerID: &customer.ID, ConsignorOwed: 2.00, ConsignorPaid: true},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("create item: %v", err)
		}
	}

	updated, err := svc.RecalculateOwed(customer.ID)
	if err != nil {
		t.Fatalf("RecalculateOwed: %v", err)
	}
	if updated.TotalConsignments != 3 {
		t.Fatalf("total consignments = %d, want 3", updated.TotalConsignments)
	}
	if got := fmt.Sprintf("%.2f", updated.TotalOwed); got != "14.10" {
		t.Fatalf("total owed = %v, want 14.10", updated.TotalOwed)
	}
}

func TestMarkPaid(t *testing.T) {
	svc, db := newTestService(t)

	customer := &models.Customer{Name: "Kyle", VendorCode: "KYLE", TotalOwed: 9.10}
	if err := svc.Create(customer); err != nil {
		t.Fatalf("Create: %v", err)
	}
	item := &models.InventoryItem{
		SKU:             "KYLE-1",
		CardName:        "A",
		AcquisitionType: models.AcquisitionConsignment,
		CustomerID:      &customer.ID,
		ConsignorOwed:   9.10,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := svc.MarkPaid("KYLE-1"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	var refreshed models.Customer
	db.First(&refreshed, customer.ID)
	if got := fmt.Sprintf("%.2f", refreshed.TotalOwed); got != "0.00" {
		t.Fatalf("total owed = %v, want 0.00", refreshed.TotalOwed)
	}

	// Marking twice must not double-subtract.
	if err := svc.MarkPaid("KYLE-1"); err != nil {
		t.Fatalf("second MarkPaid: %v", err)
	}
	db.First(&refreshed, customer.ID)
	if got := fmt.Sprintf("%.2f", refreshed.TotalOwed); got != "0.00" {
		t.Fatalf("total owed after second mark = %v, want 0.00", refreshed.TotalOwed)
	}
}

func TestMarkPaidRejectsNonConsignment(t *testing.T) {
	svc, db := newTestService(t)

	item := &models.InventoryItem{SKU: "OP01-001", CardName: "Zoro", AcquisitionType: models.AcquisitionBuy}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := svc.MarkPaid("OP01-001"); err == nil {
		t.Fatal("expected error for non-consignment item")
	}
}
