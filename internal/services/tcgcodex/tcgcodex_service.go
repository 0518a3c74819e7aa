package tcgcodex

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

type Service struct {
	apiKey  string
	client  *resty.Client
	baseURL string
}

type codexCard struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	SetName  string `json:"set_name"`
	Number   string `json:"collector_number"`
	Rarity   string `json:"rarity"`
	Game     string `json:"game"`
	Listings []struct {
		Condition string `json:"condition"`
		Printing  string `json:"finish"`
		Price     string `json:"market_price"` // decimal string
	} `json:"listings"`
}

type codexResponse struct {
	Results []codexCard `json:"results"`
	Message string      `json:"message"`
}

func NewService(apiKey string) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "CardShop-POS/1.0")

	return &Service{
		apiKey:  apiKey,
		client:  client,
		baseURL: "https://api.tcgcodex.com/v1",
	}
}

func (s *Service) Name() string { return "tcgcodex" }

func (s *Service) SearchCards(ctx context.Context, q lookup.SearchQuery) ([]lookup.Card, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("TCGCodex API key is not configured")
	}

	params := map[string]string{"search": q.Query}
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
		Get(fmt.Sprintf("%s/cards/search", s.baseURL))

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &lookup.UpstreamError{Provider: "tcgcodex", Status: resp.StatusCode()}
	}

	var body codexResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, err
	}

	cards := make([]lookup.Card, 0, len(body.Results))
	for _, c := range body.Results {
		card := lookup.Card{
			Name:      c.Name,
			SetName:   c.SetName,
			Number:    c.Number,
			Rarity:    c.Rarity,
			Game:      c.Game,
			CatalogID: strconv.Itoa(c.ID),
		}
		for _, l := range c.Listings {
			price, err := strconv.ParseFloat(l.Price, 64)
			if err != nil {
				continue
			}
			card.Variants = append(card.Variants, lookup.Variant{
				Condition: l.Condition,
				Printing:  l.Printing,
				Price:     price,
			})
		}
		cards = append(cards, card)
	}
	return cards, nil
}
