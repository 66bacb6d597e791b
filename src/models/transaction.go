package models

import (
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// ParseTransactionType normalizes user input ("BUY", " sell ") to a TransactionType.
func ParseTransactionType(value string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(value))) {
	case TransactionTypeBuy:
		return TransactionTypeBuy, true
	case TransactionTypeSell:
		return TransactionTypeSell, true
	}
	return "", false
}

// Transaction is an immutable ledger entry. TotalValue is always
// Quantity * PricePerUnit.
type Transaction struct {
	ID              int             `db:"id"`
	UserID          int             `db:"user_id"`
	AssetID         int             `db:"asset_id"`
	TransactionType TransactionType `db:"transaction_type"`
	Quantity        float64         `db:"quantity"`
	PricePerUnit    float64         `db:"price_per_unit"`
	TotalValue      float64         `db:"total_value"`
	Date            time.Time       `db:"date"`
	Notes           *string         `db:"notes"`
	IdempotencyKey  *string         `db:"idempotency_key"`
	CreatedAt       time.Time       `db:"created_at"`
}

// TransactionWithAsset is a ledger entry joined with its asset for listings.
type TransactionWithAsset struct {
	Transaction
	AssetSymbol string `db:"symbol"`
	AssetName   string `db:"name"`
}
