// Package lookup unifies the interchangeable card-pricing providers
// behind one search interface. Callers pick a provider by name and get
// a uniform result shape regardless of which upstream served it.
package lookup

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"cardshop/internal/ratelimit"
)

// UpstreamError reports a non-2xx answer from a pricing provider,
// carrying the upstream status so proxy routes can forward it. A 404
// is never an UpstreamError; providers normalize it to an empty
// result list.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: status %d", e.Provider, e.Status)
}

// SearchQuery is the provider-independent search request.
type SearchQuery struct {
	Query      string `json:"query"`
	CardNumber string `json:"card_number"`
	Game       string `json:"game"`
}

// Variant is one printing/condition combination with its market price
// in USD.
type Variant struct {
	Condition string  `json:"condition"`
	Printing  string  `json:"printing"`
	Price     float64 `json:"price"`
}

// Card is the uniform match shape returned by every provider.
type Card struct {
	Name      string    `json:"name"`
	SetName   string    `json:"set_name"`
	Number    string    `json:"number"`
	Rarity    string    `json:"rarity"`
	Game      string    `json:"game"`
	CatalogID string    `json:"catalog_id"`
	Variants  []Variant `json:"variants"`
}

// Provider is the one capability the shop needs from a pricing API.
// All prices returned are USD; providers denominated in other
// currencies convert before returning.
type Provider interface {
	Name() string
	SearchCards(ctx context.Context, q SearchQuery) ([]Card, error)
}

// Adapter holds the registered providers and the shared limiter that
// spaces out upstream calls (the strictest provider allows ~10
// requests/minute, hence the default 6s interval).
type Adapter struct {
	providers map[string]Provider
	limiter   *ratelimit.Limiter
}

func NewAdapter(limiter *ratelimit.Limiter, providers ...Provider) *Adapter {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Adapter{providers: byName, limiter: limiter}
}

// Providers lists the registered provider names, sorted.
func (a *Adapter) Providers() []string {
	names := make([]string, 0, len(a.providers))
	for name := range a.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search runs a query against the named provider. If a card-number
// constrained search comes back empty, it retries once with the number
// dropped; a stricter query failing is not worth surfacing when the
// relaxed one can still match.
func (a *Adapter) Search(ctx context.Context, provider string, q SearchQuery) ([]Card, error) {
	p, ok := a.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown pricing provider %q", provider)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	cards, err := p.SearchCards(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(cards) == 0 && q.CardNumber != "" {
		relaxed := q
		relaxed.CardNumber = ""
		logrus.WithFields(logrus.Fields{
			"provider": provider,
			"query":    q.Query,
			"number":   q.CardNumber,
		}).Info("No matches with card number, retrying relaxed query")

		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return p.SearchCards(ctx, relaxed)
	}

	return cards, nil
}
