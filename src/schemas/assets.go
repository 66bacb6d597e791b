package schemas

import "time"

type AssetResponse struct {
	ID          int        `json:"id"`
	Symbol      string     `json:"symbol"`
	ExternalID  string     `json:"external_id"`
	Name        string     `json:"name"`
	LogoURL     *string    `json:"logo_url"`
	LastPrice   *float64   `json:"last_price"`
	LastPriceAt *time.Time `json:"last_price_at"`
}

type MarketResponse struct {
	AssetID        *int     `json:"asset_id"`
	ExternalID     string   `json:"external_id"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	LogoURL        *string  `json:"logo_url"`
	CurrentPrice   *float64 `json:"current_price"`
	MarketCap      *float64 `json:"market_cap"`
	PriceChange24h *float64 `json:"price_change_percentage_24h"`
	PriceSource    string   `json:"price_source"`
}

type ImportAssetsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type RefreshPricesResponse struct {
	Requested int   `json:"requested"`
	Updated   int64 `json:"updated"`
	Failed    int   `json:"failed"`
}
