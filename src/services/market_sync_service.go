package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/database"
	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/utils"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type ImportResult struct {
	Imported int
	Skipped  int
}

type RefreshResult struct {
	Requested int
	Updated   int64
	Failed    int
}

type MarketSyncServiceI interface {
	ImportAssets(ctx context.Context, count int) (*ImportResult, error)
	RefreshPrices(ctx context.Context) (*RefreshResult, error)
}

// MarketSyncService populates the asset registry from CoinGecko and keeps the
// cached last price of every asset current.
type MarketSyncService struct {
	assetRepo   repositories.AssetRepository
	client      coingecko.CoinGeckoServiceClientI
	batchSize   int
	concurrency int
	backoff     func() retry.Backoff
	now         func() time.Time
}

type MarketSyncOption func(*MarketSyncService)

// WithRetryBackoff replaces the backoff used for provider calls. The function
// is called once per retried operation.
func WithRetryBackoff(backoff func() retry.Backoff) MarketSyncOption {
	return func(s *MarketSyncService) {
		s.backoff = backoff
	}
}

func NewMarketSyncService(assetRepo repositories.AssetRepository, client coingecko.CoinGeckoServiceClientI, batchSize, concurrency int, opts ...MarketSyncOption) *MarketSyncService {
	if batchSize <= 0 || batchSize > coingecko.MaxPerPage {
		batchSize = coingecko.MaxPerPage
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	s := &MarketSyncService{
		assetRepo:   assetRepo,
		client:      client,
		batchSize:   batchSize,
		concurrency: concurrency,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withRetry retries fn on transport errors, 5xx and 429 responses.
func (s *MarketSyncService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var httpErr *utils.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError && httpErr.Code != http.StatusTooManyRequests {
			return err
		}
		return retry.RetryableError(err)
	})
}

// ImportAssets registers the top count coins by market cap. Coins whose
// symbol repeats an earlier, larger coin are skipped.
func (s *MarketSyncService) ImportAssets(ctx context.Context, count int) (*ImportResult, error) {
	logger := utils.LoggerFromContext(ctx)
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidInput)
	}

	perPage := min(count, coingecko.MaxPerPage)
	var markets []coingecko.Market
	for page := 1; len(markets) < count; page++ {
		var batch []coingecko.Market
		err := s.withRetry(ctx, func(ctx context.Context) error {
			var err error
			batch, err = s.client.GetMarkets(ctx, utils.AssetCurrencyUSD, perPage, page)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPriceProviderUnavailable, err)
		}
		markets = append(markets, batch...)
		if len(batch) < perPage {
			break
		}
	}
	if len(markets) > count {
		markets = markets[:count]
	}

	result := &ImportResult{}
	seen := make(map[string]struct{}, len(markets))
	fetchedAt := s.now()
	for _, m := range markets {
		symbol := strings.ToUpper(strings.TrimSpace(m.Symbol))
		if symbol == "" || m.ID == "" {
			result.Skipped++
			continue
		}
		if _, ok := seen[symbol]; ok {
			result.Skipped++
			continue
		}
		seen[symbol] = struct{}{}

		asset := &models.Asset{Symbol: symbol, ExternalID: m.ID, Name: m.Name}
		if m.Image != "" {
			image := m.Image
			asset.LogoURL = &image
		}
		if m.CurrentPrice != nil {
			asset.LastPrice = m.CurrentPrice
			asset.LastPriceAt = &fetchedAt
		}

		if err := s.assetRepo.Upsert(ctx, asset); err != nil {
			if database.IsUniqueViolation(err, "") {
				// symbol already taken by a different coin
				logger.WithFields(logrus.Fields{"symbol": symbol, "external_id": m.ID}).Info("skipping asset with duplicate symbol")
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("%w: upsert asset %s: %w", ErrPersistence, symbol, err)
		}
		result.Imported++
	}

	logger.WithFields(logrus.Fields{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("asset import finished")
	return result, nil
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for size < len(ids) {
		ids, batches = ids[size:], append(batches, ids[:size])
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

// RefreshPrices fetches the live price of every registered asset in batches
// and stores it as the asset's cached price. Batches that succeed are stored
// even when others fail.
func (s *MarketSyncService) RefreshPrices(ctx context.Context) (*RefreshResult, error) {
	logger := utils.LoggerFromContext(ctx)

	ids, err := s.assetRepo.GetExternalIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %w", ErrPersistence, err)
	}
	result := &RefreshResult{Requested: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	var (
		mu       sync.Mutex
		prices   []models.AssetPrice
		fetchErr error
	)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, batch := range chunk(ids, s.batchSize) {
		g.Go(func() error {
			var response coingecko.SimplePriceResponse
			err := s.withRetry(ctx, func(ctx context.Context) error {
				var err error
				response, err = s.client.GetSimplePrice(ctx, batch, utils.AssetCurrencyUSD)
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed += len(batch)
				fetchErr = errors.Join(fetchErr, err)
				logger.WithError(err).WithField("batch_size", len(batch)).Warn("price batch failed")
				return nil
			}
			fetchedAt := s.now()
			for _, id := range batch {
				price, ok := response.Price(id, utils.AssetCurrencyUSD)
				if !ok || math.IsNaN(price) || math.IsInf(price, 0) {
					continue
				}
				prices = append(prices, models.AssetPrice{ExternalID: id, Price: price, FetchedAt: fetchedAt})
			}
			return nil
		})
	}
	_ = g.Wait()

	updated, err := s.assetRepo.UpdatePrices(ctx, prices)
	if err != nil {
		return result, fmt.Errorf("%w: update prices: %w", ErrPersistence, err)
	}
	result.Updated = updated

	logger.WithFields(logrus.Fields{
		"requested": result.Requested,
		"updated":   result.Updated,
		"failed":    result.Failed,
	}).Info("price refresh finished")

	if fetchErr != nil {
		return result, fmt.Errorf("%w: %w", ErrPriceProviderUnavailable, fetchErr)
	}
	return result, nil
}
