package models

import "time"

type Asset struct {
	ID          int        `db:"id" json:"id"`
	Symbol      string     `db:"symbol" json:"symbol"`
	ExternalID  string     `db:"external_id" json:"external_id"`
	Name        string     `db:"name" json:"name"`
	LogoURL     *string    `db:"logo_url" json:"logo_url"`
	LastPrice   *float64   `db:"last_price" json:"last_price"`
	LastPriceAt *time.Time `db:"last_price_at" json:"last_price_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// CachedPrice returns the last stored price, or 0 and false when none is known.
func (a *Asset) CachedPrice() (float64, bool) {
	if a == nil || a.LastPrice == nil {
		return 0, false
	}
	return *a.LastPrice, true
}

// AssetPrice is one cached price update written by the price refresh job.
type AssetPrice struct {
	ExternalID string
	Price      float64
	FetchedAt  time.Time
}
