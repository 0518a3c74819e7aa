package pricing

import "strings"

// Default buy percentages by condition grade, and the default sell-side
// markup. Operators can override any of these through settings.
const (
	DefaultMarkupPercent = 40.0

	tradeInBonusPercent = 5.0
)

var defaultConditionPercents = map[string]float64{
	"NM":  70,
	"LP":  65,
	"MP":  55,
	"HP":  45,
	"DMG": 35,
}

// ConditionTable maps condition grades to the percentage of market
// value offered on a cash buy, plus the global sell markup. Built
// explicitly and passed in; there is no ambient/global table.
type ConditionTable struct {
	percents map[string]float64
	markup   float64
}

// NewConditionTable returns the shop defaults: NM=70 LP=65 MP=55 HP=45
// DMG=35, markup=40.
func NewConditionTable() *ConditionTable {
	percents := make(map[string]float64, len(defaultConditionPercents))
	for code, pct := range defaultConditionPercents {
		percents[code] = pct
	}
	return &ConditionTable{percents: percents, markup: DefaultMarkupPercent}
}

// Set overwrites the buy percentage for one condition code.
func (t *ConditionTable) Set(condition string, percent float64) {
	t.percents[normalizeCondition(condition)] = percent
}

// SetMarkup overwrites the sell-side markup percentage.
func (t *ConditionTable) SetMarkup(percent float64) {
	t.markup = percent
}

// Get returns the buy percentage for a condition. Matching is trimmed
// and case-insensitive; anything unrecognized falls back to the NM
// percentage rather than failing, so a bad grade string from a feed
// never blocks a counter transaction.
func (t *ConditionTable) Get(condition string) float64 {
	if pct, ok := t.percents[normalizeCondition(condition)]; ok {
		return pct
	}
	return t.percents["NM"]
}

// Markup returns the configured sell-side markup percentage.
func (t *ConditionTable) Markup() float64 {
	return t.markup
}

func normalizeCondition(condition string) string {
	return strings.ToUpper(strings.TrimSpace(condition))
}
