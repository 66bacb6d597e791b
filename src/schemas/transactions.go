package schemas

import "time"

// CreateTransactionRequest carries TransactionDate as RFC3339 or YYYY-MM-DD;
// empty means now.
type CreateTransactionRequest struct {
	AssetID         int     `json:"asset_id"`
	TransactionType string  `json:"transaction_type"`
	Quantity        float64 `json:"quantity"`
	PricePerUnit    float64 `json:"price_per_unit"`
	TransactionDate string  `json:"transaction_date"`
	Notes           string  `json:"notes"`
	IdempotencyKey  string  `json:"idempotency_key"`
}

type TransactionResponse struct {
	ID              int       `json:"id"`
	AssetID         int       `json:"asset_id"`
	AssetSymbol     string    `json:"asset_symbol,omitempty"`
	AssetName       string    `json:"asset_name,omitempty"`
	TransactionType string    `json:"transaction_type"`
	Quantity        float64   `json:"quantity"`
	PricePerUnit    float64   `json:"price_per_unit"`
	TotalValue      float64   `json:"total_value"`
	TransactionDate time.Time `json:"transaction_date"`
	Notes           *string   `json:"notes"`
	IdempotencyKey  *string   `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type HoldingResponse struct {
	AssetID     int       `json:"asset_id"`
	Quantity    float64   `json:"quantity"`
	AverageCost float64   `json:"average_cost"`
	LastUpdated time.Time `json:"last_updated"`
}

// CreateTransactionResponse has a null Holding when the transaction closed
// the position or when it replays an earlier submission.
type CreateTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Holding     *HoldingResponse    `json:"holding"`
	Replayed    bool                `json:"replayed"`
}
