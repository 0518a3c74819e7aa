package inventory

// ItemResult is the outcome of one record in a bulk operation. Bulk
// loops never abort on a single failure; they record it and move on.
type ItemResult struct {
	SKU      string `json:"sku"`
	CardName string `json:"card_name"`
	Error    string `json:"error,omitempty"`
}

func (r ItemResult) Failed() bool { return r.Error != "" }

// BatchReport summarizes a bulk operation: counts plus the per-item
// outcomes. Failed items are not retried automatically.
type BatchReport struct {
	BatchID   string       `json:"batch_id,omitempty"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []ItemResult `json:"results"`
}

func (b *BatchReport) add(result ItemResult) {
	if result.Failed() {
		b.Failed++
	} else {
		b.Succeeded++
	}
	b.Results = append(b.Results, result)
}
