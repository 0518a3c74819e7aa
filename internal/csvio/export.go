// Package csvio reads the TCGPlayer consignment export format and
// writes the POS catalog upload format. Both are fixed-position
// schemas; column order and header names must match what the receiving
// tools expect.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"cardshop/internal/models"
	"cardshop/internal/pricing"
)

// Fixed 36-column schema for the POS catalog import tool. Order and
// names must be reproduced exactly.
var exportHeader = []string{
	"Reference Handle",
	"Token",
	"Item Name",
	"Variation Name",
	"SKU",
	"Description",
	"Categories",
	"Reporting Category",
	"SEO Title",
	"SEO Description",
	"Permalink",
	"GTIN",
	"Square Online Item Visibility",
	"Item Type",
	"Weight (lb)",
	"Shipping Enabled",
	"Self-serve Ordering Enabled",
	"Delivery Enabled",
	"Pickup Enabled",
	"Price",
	"Online Sale Price",
	"Archived",
	"Sellable",
	"Contains Alcohol",
	"Stockable",
	"Skip Detail Screen in POS",
	"Option Name 1",
	"Option Value 1",
	"Default Unit Cost",
	"Default Vendor Name",
	"Default Vendor Code",
	"Inventory",
	"New Quantity",
	"Stock Alert Enabled",
	"Stock Alert Count",
	"Tax - Sales Tax (7%)",
}

// Export column indexes relied on by the round-trip tests and the
// receiving import tool.
const (
	ColSKU       = 4
	ColPrice     = 19
	ColInventory = 31
)

// ExportSquare writes inventory records in the POS catalog upload
// schema. Prices are rounded to 2 decimals here, at the display/export
// boundary.
func ExportSquare(w io.Writer, items []models.InventoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, item := range items {
		row := make([]string, len(exportHeader))
		row[0] = "#" + item.SKU
		row[2] = item.CardName
		row[3] = item.Condition
		row[ColSKU] = item.SKU
		row[5] = fmt.Sprintf("%s %s", item.SetName, item.Number)
		row[6] = item.Game
		row[7] = item.Game
		row[12] = "visible"
		row[13] = "Physical"
		row[15] = "N"
		row[16] = "Y"
		row[17] = "N"
		row[18] = "Y"
		row[ColPrice] = fmt.Sprintf("%.2f", pricing.Round2(item.SellPrice))
		row[21] = "N"
		row[22] = "Y"
		row[23] = "N"
		row[24] = "Y"
		row[25] = "N"
		row[26] = "Condition"
		row[27] = item.Condition
		row[28] = fmt.Sprintf("%.2f", pricing.Round2(item.CostBasis))
		row[30] = item.CustomerVendorCode
		row[ColInventory] = fmt.Sprintf("%d", item.Quantity)
		row[33] = "N"
		row[35] = "Y"

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
