package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/utils"
)

const marketsCachePrefix = "markets"

// MarketQuote is a market listing entry, either live or rebuilt from the
// asset registry when the provider is unavailable.
type MarketQuote struct {
	ExternalID        string
	Symbol            string
	Name              string
	LogoURL           *string
	CurrentPrice      *float64
	MarketCap         *float64
	PriceChange24h    *float64
	Source            PriceSource
	RegisteredAssetID *int
}

type AssetServiceI interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetAssetBySymbol(ctx context.Context, symbol string) (*models.Asset, error)
	ListMarkets(ctx context.Context, limit int) ([]MarketQuote, error)
}

type AssetService struct {
	assetRepo repositories.AssetRepository
	client    coingecko.CoinGeckoServiceClientI
	cache     utils.CacheHandlerI
	cacheTTL  time.Duration
	breaker   *utils.CircuitBreaker
}

func NewAssetService(
	assetRepo repositories.AssetRepository,
	client coingecko.CoinGeckoServiceClientI,
	cache utils.CacheHandlerI,
	cacheTTL time.Duration,
	breaker *utils.CircuitBreaker,
) *AssetService {
	if cache == nil {
		cache = utils.NewMemoryCache()
	}
	if breaker == nil {
		breaker = utils.NewCircuitBreaker("coingecko-markets", 5, 30*time.Second, nil)
	}
	return &AssetService{
		assetRepo: assetRepo,
		client:    client,
		cache:     cache,
		cacheTTL:  cacheTTL,
		breaker:   breaker,
	}
}

func (s *AssetService) ListAssets(ctx context.Context) ([]models.Asset, error) {
	assets, err := s.assetRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %w", ErrPersistence, err)
	}
	return assets, nil
}

func (s *AssetService) GetAssetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	asset, err := s.assetRepo.GetBySymbol(ctx, symbol)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get asset: %w", ErrPersistence, err)
	}
	return asset, nil
}

// ListMarkets returns the top limit coins by market cap. When the provider
// fails the registry's cached prices are served instead.
func (s *AssetService) ListMarkets(ctx context.Context, limit int) ([]MarketQuote, error) {
	logger := utils.LoggerFromContext(ctx)
	if limit <= 0 || limit > coingecko.MaxPerPage {
		limit = coingecko.MaxPerPage
	}

	assets, err := s.assetRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %w", ErrPersistence, err)
	}
	registered := make(map[string]int, len(assets))
	for _, a := range assets {
		registered[a.ExternalID] = a.ID
	}

	markets, err := s.liveMarkets(ctx, limit)
	if err != nil {
		logger.WithError(err).Warn("live markets unavailable, serving registry prices")
		return registryQuotes(assets, limit), nil
	}

	quotes := make([]MarketQuote, 0, len(markets))
	for _, m := range markets {
		q := MarketQuote{
			ExternalID:     m.ID,
			Symbol:         strings.ToUpper(m.Symbol),
			Name:           m.Name,
			CurrentPrice:   m.CurrentPrice,
			MarketCap:      m.MarketCap,
			PriceChange24h: m.PriceChangePercentage24h,
			Source:         PriceSourceLive,
		}
		if m.Image != "" {
			image := m.Image
			q.LogoURL = &image
		}
		if id, ok := registered[m.ID]; ok {
			q.RegisteredAssetID = &id
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (s *AssetService) liveMarkets(ctx context.Context, limit int) ([]coingecko.Market, error) {
	key := utils.GenerateCacheKey(marketsCachePrefix, utils.AssetCurrencyUSD, fmt.Sprint(limit))

	var markets []coingecko.Market
	if err := s.cache.Get(ctx, key, &markets); err == nil {
		return markets, nil
	}

	err := s.breaker.Execute(func() error {
		var err error
		markets, err = s.client.GetMarkets(ctx, utils.AssetCurrencyUSD, limit, 1)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPriceProviderUnavailable, err)
	}

	if err := s.cache.Set(ctx, key, markets, s.cacheTTL); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("markets cache write failed")
	}
	return markets, nil
}

func registryQuotes(assets []models.Asset, limit int) []MarketQuote {
	if len(assets) > limit {
		assets = assets[:limit]
	}
	quotes := make([]MarketQuote, 0, len(assets))
	for _, a := range assets {
		id := a.ID
		q := MarketQuote{
			ExternalID:        a.ExternalID,
			Symbol:            a.Symbol,
			Name:              a.Name,
			LogoURL:           a.LogoURL,
			CurrentPrice:      a.LastPrice,
			Source:            PriceSourceCached,
			RegisteredAssetID: &id,
		}
		if a.LastPrice == nil {
			q.Source = PriceSourceNone
		}
		quotes = append(quotes, q)
	}
	return quotes
}
