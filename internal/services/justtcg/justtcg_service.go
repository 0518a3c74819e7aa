package justtcg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"cardshop/internal/services/lookup"
)

type Service struct {
	apiKey  string
	client  *resty.Client
	baseURL string
}

type justTCGCard struct {
	Name     string `json:"name"`
	Set      string `json:"set"`
	Number   string `json:"number"`
	Rarity   string `json:"rarity"`
	Game     string `json:"game"`
	TCGID    string `json:"tcgplayerId"`
	Variants []struct {
		Condition string  `json:"condition"`
		Printing  string  `json:"printing"`
		Price     float64 `json:"price"`
	} `json:"variants"`
}

type justTCGResponse struct {
	Data  []justTCGCard `json:"data"`
	Error string        `json:"error"`
}

func NewService(apiKey string) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "CardShop-POS/1.0")

	return &Service{
		apiKey:  apiKey,
		client:  client,
		baseURL: "https://api.justtcg.com/v1",
	}
}

func (s *Service) Name() string { return "justtcg" }

func (s *Service) SearchCards(ctx context.Context, q lookup.SearchQuery) ([]lookup.Card, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("JustTCG API key is not configured")
	}

	params := map[string]string{"q": q.Query}
	if q.Game != "" {
		params["game"] = q.Game
	}
	if q.CardNumber != "" {
		params["number"] = q.CardNumber
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("x-api-key", s.apiKey).
		Get(fmt.Sprintf("%s/cards", s.baseURL))

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &lookup.UpstreamError{Provider: "justtcg", Status: resp.StatusCode()}
	}

	var body justTCGResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("justtcg API error: %s", body.Error)
	}

	cards := make([]lookup.Card, 0, len(body.Data))
	for _, c := range body.Data {
		card := lookup.Card{
			Name:      c.Name,
			SetName:   c.Set,
			Number:    c.Number,
			Rarity:    c.Rarity,
			Game:      c.Game,
			CatalogID: c.TCGID,
		}
		for _, v := range c.Variants {
			card.Variants = append(card.Variants, lookup.Variant{
				Condition: v.Condition,
				Printing:  v.Printing,
				Price:     v.Price,
			})
		}
		cards = append(cards, card)
	}
	return cards, nil
}
