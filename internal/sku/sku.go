// Package sku builds human-scannable inventory identifiers. Generated
// SKUs are not guaranteed unique: two cards from different sets can
// share a card number. The store's primary-key constraint is the
// enforcement point, and callers surface a duplicate to the operator.
package sku

import (
	"fmt"
	"math/rand"
)

// Generate maps card identifiers to a SKU string. Consignment items get
// the consignor's vendor code as a prefix so their labels are
// recognizable at the counter. When neither a card number nor a catalog
// id is available, a random 6-digit suffix keeps the SKU usable.
func Generate(cardNumber, catalogID, acquisitionType, vendorCode string) string {
	if acquisitionType == "consignment" && vendorCode != "" {
		switch {
		case cardNumber != "":
			return fmt.Sprintf("%s-%s", vendorCode, cardNumber)
		case catalogID != "":
			return fmt.Sprintf("%s-%s", vendorCode, catalogID)
		default:
			return fmt.Sprintf("%s-%06d", vendorCode, rand.Intn(1000000))
		}
	}

	switch {
	case cardNumber != "":
		return cardNumber
	case catalogID != "":
		return catalogID
	default:
		return fmt.Sprintf("CARD-%06d", rand.Intn(1000000))
	}
}
