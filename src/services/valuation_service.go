package services

import (
	"context"
	"fmt"

	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/utils"
)

type PriceSource string

const (
	PriceSourceLive   PriceSource = "live"
	PriceSourceCached PriceSource = "cached"
	PriceSourceNone   PriceSource = "none"
)

// HoldingValuation is a holding priced at the moment of the request.
type HoldingValuation struct {
	models.HoldingWithAsset
	CurrentPrice  float64
	CurrentValue  float64
	CostValue     float64
	GainLoss      float64
	PercentChange float64
	PriceSource   PriceSource
}

type PortfolioSummary struct {
	TotalCurrentValue  float64
	TotalCostBasis     float64
	TotalGainLoss      float64
	TotalPercentChange float64
	NumHoldings        int
}

type PortfolioView struct {
	Holdings []HoldingValuation
	Summary  PortfolioSummary

	// PricesDegraded is set when the live provider failed and cached prices
	// were used instead.
	PricesDegraded bool
}

type ValuationServiceI interface {
	ValuePortfolio(ctx context.Context, userID int) (*PortfolioView, error)
}

type ValuationService struct {
	holdingRepo repositories.HoldingRepository
	provider    PriceProvider
}

func NewValuationService(holdingRepo repositories.HoldingRepository, provider PriceProvider) *ValuationService {
	return &ValuationService{holdingRepo: holdingRepo, provider: provider}
}

func percentOf(gain, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	return gain / cost * 100
}

// ValueHolding prices one holding, preferring the live quote, then the
// asset's cached price, then zero.
func ValueHolding(h models.HoldingWithAsset, livePrices map[string]float64) HoldingValuation {
	v := HoldingValuation{HoldingWithAsset: h, PriceSource: PriceSourceNone}
	if price, ok := livePrices[h.Asset.ExternalID]; ok {
		v.CurrentPrice = price
		v.PriceSource = PriceSourceLive
	} else if price, ok := h.Asset.CachedPrice(); ok {
		v.CurrentPrice = price
		v.PriceSource = PriceSourceCached
	}
	v.CurrentValue = h.Quantity * v.CurrentPrice
	v.CostValue = h.CostValue()
	v.GainLoss = v.CurrentValue - v.CostValue
	v.PercentChange = percentOf(v.GainLoss, v.CostValue)
	return v
}

// BuildPortfolioView values every holding and aggregates the totals.
func BuildPortfolioView(holdings []models.HoldingWithAsset, livePrices map[string]float64) *PortfolioView {
	view := &PortfolioView{Holdings: make([]HoldingValuation, 0, len(holdings))}
	for _, h := range holdings {
		v := ValueHolding(h, livePrices)
		view.Holdings = append(view.Holdings, v)
		view.Summary.TotalCurrentValue += v.CurrentValue
		view.Summary.TotalCostBasis += v.CostValue
	}
	view.Summary.TotalGainLoss = view.Summary.TotalCurrentValue - view.Summary.TotalCostBasis
	view.Summary.TotalPercentChange = percentOf(view.Summary.TotalGainLoss, view.Summary.TotalCostBasis)
	view.Summary.NumHoldings = len(view.Holdings)
	return view
}

// ValuePortfolio never fails because of the price provider: unavailable live
// prices fall back to cached ones and the failure is only logged.
func (s *ValuationService) ValuePortfolio(ctx context.Context, userID int) (*PortfolioView, error) {
	logger := utils.LoggerFromContext(ctx).WithField("user_id", userID)

	holdings, err := s.holdingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list holdings: %w", ErrPersistence, err)
	}
	if len(holdings) == 0 {
		return BuildPortfolioView(nil, nil), nil
	}

	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.Asset.ExternalID)
	}

	var prices map[string]float64
	degraded := false
	if s.provider != nil {
		prices, err = s.provider.GetPrices(ctx, ids)
		if err != nil {
			logger.WithError(err).Warn("live prices unavailable, using cached prices")
			degraded = true
		}
	}

	view := BuildPortfolioView(holdings, prices)
	view.PricesDegraded = degraded
	return view, nil
}
