package coingecko

// SimplePriceResponse maps a coin id to its price per quote currency, e.g.
// {"bitcoin": {"usd": 67187.33}}. Unknown ids are absent from the map.
type SimplePriceResponse map[string]map[string]float64

// Price returns the quote for id in currency, if the provider returned one.
func (r SimplePriceResponse) Price(id, currency string) (float64, bool) {
	quotes, ok := r[id]
	if !ok {
		return 0, false
	}
	price, ok := quotes[currency]
	return price, ok
}

// Market is one entry of the /coins/markets listing.
type Market struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	LastUpdated              string   `json:"last_updated"`
}
