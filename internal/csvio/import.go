package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"cardshop/internal/services/inventory"
)

// TCGPlayer consignment export column positions. The format is
// fixed-position with quoted fields; rows with fewer than
// minImportFields are skipped rather than failing the whole file.
const (
	colQuantity   = 0
	colName       = 1
	colSet        = 3
	colCardNumber = 4
	colPrinting   = 6
	colCondition  = 7
	colLanguage   = 8
	colRarity     = 9
	colProductID  = 10
	colPriceEach  = 12

	minImportFields = 14
)

// ImportResult reports what a CSV parse produced.
type ImportResult struct {
	Rows    []inventory.IntakeRequest
	Skipped int
}

// ImportTCGPlayer parses a TCGPlayer consignment export into intake
// rows. Acquisition details (type, customer, payout) are supplied by
// the caller; the CSV only carries card identity, quantity, and price.
func ImportTCGPlayer(r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows handled below

	result := &ImportResult{}
	first := true

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if first {
			first = false
			if looksLikeHeader(record) {
				continue
			}
		}

		if len(record) < minImportFields {
			result.Skipped++
			logrus.WithField("fields", len(record)).Debug("Skipping short CSV row")
			continue
		}

		quantity, _ := strconv.Atoi(strings.TrimSpace(record[colQuantity]))
		price := parsePrice(record[colPriceEach])

		row := inventory.IntakeRequest{
			CardName:    strings.TrimSpace(record[colName]),
			SetName:     strings.TrimSpace(record[colSet]),
			Number:      strings.TrimSpace(record[colCardNumber]),
			Printing:    strings.TrimSpace(record[colPrinting]),
			Condition:   normalizeImportCondition(record[colCondition]),
			Language:    strings.TrimSpace(record[colLanguage]),
			Rarity:      strings.TrimSpace(record[colRarity]),
			CatalogID:   strings.TrimSpace(record[colProductID]),
			MarketPrice: price,
			Quantity:    quantity,
		}
		if row.CardName == "" {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func looksLikeHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(record[0]))
	return err != nil
}

func parsePrice(field string) float64 {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(field), "$"))
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

// normalizeImportCondition maps TCGPlayer's long condition names to the
// shop's grade codes. Unknown names pass through; the condition table
// falls back to NM for anything it does not recognize.
func normalizeImportCondition(field string) string {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "near mint", "nm":
		return "NM"
	case "lightly played", "lp":
		return "LP"
	case "moderately played", "mp":
		return "MP"
	case "heavily played", "hp":
		return "HP"
	case "damaged", "dmg":
		return "DMG"
	default:
		return strings.TrimSpace(field)
	}
}
