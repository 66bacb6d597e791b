package controllers

import (
	"context"

	"cryptotracker/src/models"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
)

type AssetsControllerI interface {
	GetAllAssets(ctx context.Context) ([]*schemas.AssetResponse, error)
	GetAssetBySymbol(ctx context.Context, symbol string) (*schemas.AssetResponse, error)
	GetMarkets(ctx context.Context, limit int) ([]*schemas.MarketResponse, error)
}

type AssetsController struct {
	AssetService services.AssetServiceI
}

func NewAssetsController(assetService services.AssetServiceI) *AssetsController {
	return &AssetsController{AssetService: assetService}
}

func toAssetResponse(a *models.Asset) *schemas.AssetResponse {
	return &schemas.AssetResponse{
		ID:          a.ID,
		Symbol:      a.Symbol,
		ExternalID:  a.ExternalID,
		Name:        a.Name,
		LogoURL:     a.LogoURL,
		LastPrice:   a.LastPrice,
		LastPriceAt: a.LastPriceAt,
	}
}

func (c *AssetsController) GetAllAssets(ctx context.Context) ([]*schemas.AssetResponse, error) {
	assets, err := c.AssetService.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	response := make([]*schemas.AssetResponse, len(assets))
	for i := range assets {
		response[i] = toAssetResponse(&assets[i])
	}
	return response, nil
}

func (c *AssetsController) GetAssetBySymbol(ctx context.Context, symbol string) (*schemas.AssetResponse, error) {
	asset, err := c.AssetService.GetAssetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return toAssetResponse(asset), nil
}

func (c *AssetsController) GetMarkets(ctx context.Context, limit int) ([]*schemas.MarketResponse, error) {
	quotes, err := c.AssetService.ListMarkets(ctx, limit)
	if err != nil {
		return nil, err
	}
	response := make([]*schemas.MarketResponse, len(quotes))
	for i, q := range quotes {
		response[i] = &schemas.MarketResponse{
			AssetID:        q.RegisteredAssetID,
			ExternalID:     q.ExternalID,
			Symbol:         q.Symbol,
			Name:           q.Name,
			LogoURL:        q.LogoURL,
			CurrentPrice:   q.CurrentPrice,
			MarketCap:      q.MarketCap,
			PriceChange24h: q.PriceChange24h,
			PriceSource:    string(q.Source),
		}
	}
	return response, nil
}
