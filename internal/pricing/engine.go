package pricing

import "math"

// Fixed markup applied to consignment items, independent of the
// configured global markup.
const consignmentMarkup = 1.3

// Quote is the result of one pricing computation. Values carry full
// floating precision; rounding happens only at display/export time.
type Quote struct {
	MarketPrice   float64 `json:"market_price"`
	CostBasis     float64 `json:"cost_basis"`
	SellPrice     float64 `json:"sell_price"`
	Profit        float64 `json:"profit"`
	ConsignorOwed float64 `json:"consignor_owed,omitempty"`
	ShopCut       float64 `json:"shop_cut,omitempty"`
}

// Options carries the per-item parameters that are not part of the
// condition table.
type Options struct {
	// PayoutPercent is the consignor's share of the sell price, 0-100.
	// Only meaningful for consignment.
	PayoutPercent float64
}

// Engine computes cost basis, sell price, and profit from a market
// price, acquisition type, and condition grade.
type Engine struct {
	conditions *ConditionTable
}

func NewEngine(conditions *ConditionTable) *Engine {
	return &Engine{conditions: conditions}
}

// Compute applies the shop's pricing rules. A non-positive market price
// yields a zero quote rather than an error; rejecting zero-price
// submissions is the caller's call.
//
// Rules by acquisition type:
//   - buy: costBasis = market * conditionPct/100, sell = cost * (1+markup/100)
//   - trade: same as buy with a 5 point trade-in bonus on the condition pct
//   - pull: costBasis = 0, sell = market * (1+markup/100)
//   - consignment: costBasis = 0, sell = market * 1.3 regardless of the
//     configured markup; payout = sell * payoutPercent/100
func (e *Engine) Compute(marketPrice float64, acquisitionType, condition string, opts Options) Quote {
	if marketPrice <= 0 {
		return Quote{}
	}

	q := Quote{MarketPrice: marketPrice}
	markup := 1 + e.conditions.Markup()/100

	switch acquisitionType {
	case "trade":
		pct := e.conditions.Get(condition) + tradeInBonusPercent
		q.CostBasis = marketPrice * pct / 100
		q.SellPrice = q.CostBasis * markup
	case "pull":
		q.CostBasis = 0
		q.SellPrice = marketPrice * markup
	case "consignment":
		q.CostBasis = 0
		q.SellPrice = marketPrice * consignmentMarkup
		q.ConsignorOwed = q.SellPrice * opts.PayoutPercent / 100
		q.ShopCut = q.SellPrice - q.ConsignorOwed
	default: // buy
		pct := e.conditions.Get(condition)
		q.CostBasis = marketPrice * pct / 100
		q.SellPrice = q.CostBasis * markup
	}

	q.Profit = q.SellPrice - q.CostBasis
	return q
}

// Reconcile compares a remotely computed quote against the local one.
// The remote result wins only when every monetary field agrees with the
// local computation within 1% relative error; otherwise the local
// quote is used and the remote discarded. Local business rules are the
// source of truth when the two disagree.
func Reconcile(local, remote Quote) Quote {
	if withinOnePercent(local.CostBasis, remote.CostBasis) &&
		withinOnePercent(local.SellPrice, remote.SellPrice) {
		remote.Profit = remote.SellPrice - remote.CostBasis
		return remote
	}
	return local
}

func withinOnePercent(local, remote float64) bool {
	if local == 0 {
		return remote == 0
	}
	return math.Abs(remote-local)/math.Abs(local) <= 0.01
}

// Round2 rounds to 2 decimal places for display and export. Internal
// computation keeps full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
