package controllers

import (
	"context"
	"io"

	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
)

type PortfolioControllerI interface {
	GetPortfolio(ctx context.Context, userID int) ([]*schemas.PortfolioHoldingResponse, error)
	GetPortfolioSummary(ctx context.Context, userID int) (*schemas.PortfolioSummaryResponse, error)
	RenderPortfolioChart(ctx context.Context, userID int, w io.Writer) error
	RenderPortfolioReport(ctx context.Context, userID int, w io.Writer) error
}

type PortfolioController struct {
	ValuationService services.ValuationServiceI
	ReportService    services.ReportServiceI
}

func NewPortfolioController(valuationService services.ValuationServiceI, reportService services.ReportServiceI) *PortfolioController {
	return &PortfolioController{ValuationService: valuationService, ReportService: reportService}
}

func (c *PortfolioController) GetPortfolio(ctx context.Context, userID int) ([]*schemas.PortfolioHoldingResponse, error) {
	view, err := c.ValuationService.ValuePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := make([]*schemas.PortfolioHoldingResponse, len(view.Holdings))
	for i, h := range view.Holdings {
		response[i] = &schemas.PortfolioHoldingResponse{
			ID: h.ID,
			Asset: schemas.PortfolioAsset{
				ID:         h.Asset.ID,
				Symbol:     h.Asset.Symbol,
				Name:       h.Asset.Name,
				ExternalID: h.Asset.ExternalID,
				LogoURL:    h.Asset.LogoURL,
			},
			Quantity:         h.Quantity,
			AverageCost:      h.AverageCost,
			LastUpdated:      h.LastUpdated,
			CurrentPrice:     h.CurrentPrice,
			CurrentValue:     h.CurrentValue,
			CostValue:        h.CostValue,
			GainLoss:         h.GainLoss,
			PercentageChange: h.PercentChange,
			PriceSource:      string(h.PriceSource),
		}
	}
	return response, nil
}

func (c *PortfolioController) GetPortfolioSummary(ctx context.Context, userID int) (*schemas.PortfolioSummaryResponse, error) {
	view, err := c.ValuationService.ValuePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &schemas.PortfolioSummaryResponse{
		TotalCurrentValue:     view.Summary.TotalCurrentValue,
		TotalCostBasis:        view.Summary.TotalCostBasis,
		TotalGainLoss:         view.Summary.TotalGainLoss,
		TotalPercentageChange: view.Summary.TotalPercentChange,
		NumHoldings:           view.Summary.NumHoldings,
		PricesDegraded:        view.PricesDegraded,
	}, nil
}

func (c *PortfolioController) RenderPortfolioChart(ctx context.Context, userID int, w io.Writer) error {
	return c.ReportService.RenderAllocationChart(ctx, userID, w)
}

func (c *PortfolioController) RenderPortfolioReport(ctx context.Context, userID int, w io.Writer) error {
	return c.ReportService.RenderPortfolioPDF(ctx, userID, w)
}
