package models

import (
	"time"
)

// HoldingEpsilon is the quantity at or below which a position counts as closed.
const HoldingEpsilon = 1e-7

// Holding is the aggregated position of one user in one asset.
type Holding struct {
	ID          int       `db:"id"`
	UserID      int       `db:"user_id"`
	AssetID     int       `db:"asset_id"`
	Quantity    float64   `db:"quantity"`
	AverageCost float64   `db:"average_cost"`
	LastUpdated time.Time `db:"last_updated"`
}

// CostValue is the position's acquisition cost at its average cost basis.
func (h Holding) CostValue() float64 {
	return h.Quantity * h.AverageCost
}

// HoldingWithAsset is a holding joined with its asset metadata.
type HoldingWithAsset struct {
	Holding
	Asset Asset
}
