package schemas

import "time"

type PortfolioAsset struct {
	ID         int     `json:"id"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	ExternalID string  `json:"external_id"`
	LogoURL    *string `json:"logo_url"`
}

type PortfolioHoldingResponse struct {
	ID               int            `json:"id"`
	Asset            PortfolioAsset `json:"asset"`
	Quantity         float64        `json:"quantity"`
	AverageCost      float64        `json:"average_cost"`
	LastUpdated      time.Time      `json:"last_updated"`
	CurrentPrice     float64        `json:"current_price"`
	CurrentValue     float64        `json:"current_value"`
	CostValue        float64        `json:"cost_value"`
	GainLoss         float64        `json:"gain_loss"`
	PercentageChange float64        `json:"percentage_change"`
	PriceSource      string         `json:"price_source"`
}

type PortfolioSummaryResponse struct {
	TotalCurrentValue     float64 `json:"total_current_value"`
	TotalCostBasis        float64 `json:"total_cost_basis"`
	TotalGainLoss         float64 `json:"total_gain_loss"`
	TotalPercentageChange float64 `json:"total_percentage_change"`
	NumHoldings           int     `json:"num_holdings"`
	PricesDegraded        bool    `json:"prices_degraded"`
}
