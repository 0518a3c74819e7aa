package cardtrader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"cardshop/internal/services/lookup"
)

// CardTrader quotes prices in EUR cents. A fixed conversion rate is
// good enough for buy offers at the counter; exchange-rate drift is an
// accepted inaccuracy.
const eurToUSD = 1.08

type Service struct {
	apiKey  string
	client  *resty.Client
	baseURL string
}

type blueprint struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	ExpansionName   string `json:"expansion_name"`
	CollectorNumber string `json:"collector_number"`
	Rarity          string `json:"rarity"`
	GameName        string `json:"game_name"`
	Products        []struct {
		Condition     string `json:"condition"`
		Foil          bool   `json:"foil"`
		PriceCents    int    `json:"price_cents"`
		PriceCurrency string `json:"price_currency"`
	} `json:"products"`
}

func NewService(apiKey string) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "CardShop-POS/1.0")

	return &Service{
		apiKey:  apiKey,
		client:  client,
		baseURL: "https://api.cardtrader.com/api/v2",
	}
}

func (s *Service) Name() string { return "cardtrader" }

func (s *Service) SearchCards(ctx context.Context, q lookup.SearchQuery) ([]lookup.Card, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("CardTrader API key is not configured")
	}

	params := map[string]string{"name": q.Query}
	if q.Game != "" {
		params["game"] = q.Game
	}
	if q.CardNumber != "" {
		params["collector_number"] = q.CardNumber
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", s.apiKey)).
		Get(fmt.Sprintf("%s/blueprints/export", s.baseURL))

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &lookup.UpstreamError{Provider: "cardtrader", Status: resp.StatusCode()}
	}

	var blueprints []blueprint
	if err := json.Unmarshal(resp.Body(), &blueprints); err != nil {
		return nil, err
	}

	cards := make([]lookup.Card, 0, len(blueprints))
	for _, b := range blueprints {
		card := lookup.Card{
			Name:      b.Name,
			SetName:   b.ExpansionName,
			Number:    b.CollectorNumber,
			Rarity:    b.Rarity,
			Game:      b.GameName,
			CatalogID: strconv.Itoa(b.ID),
		}
		for _, p := range b.Products {
			printing := "Normal"
			if p.Foil {
				printing = "Foil"
			}
			card.Variants = append(card.Variants, lookup.Variant{
				Condition: p.Condition,
				Printing:  printing,
				Price:     toUSD(p.PriceCents, p.PriceCurrency),
			})
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func toUSD(cents int, currency string) float64 {
	price := float64(cents) / 100
	if currency == "USD" || currency == "" {
		return price
	}
	return price * eurToUSD
}
