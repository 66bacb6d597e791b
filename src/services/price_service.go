package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const priceCachePrefix = "price"

// PriceProvider resolves the current USD price of assets by their external
// ids. The returned map omits ids the provider could not price. On error the
// map may still hold the prices that were resolved.
type PriceProvider interface {
	GetPrices(ctx context.Context, externalIDs []string) (map[string]float64, error)
}

type PriceServiceOption func(*PriceService)

func WithPriceCache(cache utils.CacheHandlerI, ttl time.Duration) PriceServiceOption {
	return func(s *PriceService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithPriceTimeout(timeout time.Duration) PriceServiceOption {
	return func(s *PriceService) {
		s.timeout = timeout
	}
}

func WithCircuitBreaker(breaker *utils.CircuitBreaker) PriceServiceOption {
	return func(s *PriceService) {
		s.breaker = breaker
	}
}

// PriceService is the live PriceProvider backed by CoinGecko. Quotes are
// cached per id, concurrent lookups for the same ids share one upstream
// request, and a circuit breaker sheds load while the provider is failing.
type PriceService struct {
	client   coingecko.CoinGeckoServiceClientI
	cache    utils.CacheHandlerI
	cacheTTL time.Duration
	timeout  time.Duration
	breaker  *utils.CircuitBreaker
	group    singleflight.Group
}

func NewPriceService(client coingecko.CoinGeckoServiceClientI, opts ...PriceServiceOption) *PriceService {
	s := &PriceService{
		client:   client,
		cache:    utils.NewMemoryCache(),
		cacheTTL: time.Minute,
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = utils.NewCircuitBreaker("coingecko", 5, 30*time.Second, nil)
	}
	return s
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *PriceService) GetPrices(ctx context.Context, externalIDs []string) (map[string]float64, error) {
	logger := utils.LoggerFromContext(ctx)
	ids := uniqueSorted(externalIDs)
	prices := make(map[string]float64, len(ids))

	var missing []string
	for _, id := range ids {
		var price float64
		err := s.cache.Get(ctx, utils.GenerateCacheKey(priceCachePrefix, id), &price)
		switch {
		case err == nil:
			prices[id] = price
		case errors.Is(err, utils.ErrCacheMiss):
			missing = append(missing, id)
		default:
			logger.WithError(err).Warn("price cache read failed")
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return prices, nil
	}

	ch := s.group.DoChan(strings.Join(missing, ","), func() (interface{}, error) {
		return s.fetch(logger, missing)
	})

	select {
	case <-ctx.Done():
		return prices, fmt.Errorf("%w: %w", ErrPriceProviderUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return prices, fmt.Errorf("%w: %w", ErrPriceProviderUnavailable, res.Err)
		}
		for id, price := range res.Val.(map[string]float64) {
			prices[id] = price
		}
	}
	return prices, nil
}

// fetch runs detached from any single caller's context since its result is
// shared by every caller waiting on the same ids.
func (s *PriceService) fetch(logger *logrus.Entry, ids []string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var response coingecko.SimplePriceResponse
	err := s.breaker.Execute(func() error {
		var err error
		response, err = s.client.GetSimplePrice(ctx, ids, utils.AssetCurrencyUSD)
		return err
	})
	if err != nil {
		return nil, err
	}

	fetched := make(map[string]float64, len(ids))
	for _, id := range ids {
		price, ok := response.Price(id, utils.AssetCurrencyUSD)
		if !ok || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		fetched[id] = price
		if err := s.cache.Set(ctx, utils.GenerateCacheKey(priceCachePrefix, id), price, s.cacheTTL); err != nil {
			logger.WithError(err).Warn("price cache write failed")
		}
	}
	logger.WithFields(logrus.Fields{
		"requested": len(ids),
		"priced":    len(fetched),
	}).Debug("fetched live prices")
	return fetched, nil
}
