package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
}

func market(id, symbol string, price float64) coingecko.Market {
	return coingecko.Market{ID: id, Symbol: symbol, Name: id, Image: "https://img/" + id, CurrentPrice: floatPtr(price)}
}

func TestMarketSyncService_ImportAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("imports top coins with upper-case symbols and skips repeated symbols", func(t *testing.T) {
		store := newMemStore()
		client := &fakeCoinGecko{markets: []coingecko.Market{
			market("bitcoin", "btc", 40000),
			market("ethereum", "eth", 2500),
			market("bitcoin-wrapped", "btc", 39990),
			market("tether", "usdt", 1),
		}}
		svc := services.NewMarketSyncService(memAssetRepo{store}, client, 250, 2, services.WithRetryBackoff(fastRetry))

		result, err := svc.ImportAssets(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Imported)
		assert.Equal(t, 1, result.Skipped)

		btc, err := memAssetRepo{store}.GetBySymbol(ctx, "btc")
		require.NoError(t, err)
		assert.Equal(t, "bitcoin", btc.ExternalID)
		assert.Equal(t, "BTC", btc.Symbol)
		require.NotNil(t, btc.LastPrice)
		assert.Equal(t, 40000.0, *btc.LastPrice)
		require.NotNil(t, btc.LogoURL)
	})

	t.Run("re-importing updates instead of duplicating", func(t *testing.T) {
		store := newMemStore()
		client := &fakeCoinGecko{markets: []coingecko.Market{market("bitcoin", "btc", 40000)}}
		svc := services.NewMarketSyncService(memAssetRepo{store}, client, 250, 1, services.WithRetryBackoff(fastRetry))

		_, err := svc.ImportAssets(ctx, 1)
		require.NoError(t, err)
		client.markets[0].CurrentPrice = floatPtr(41000)
		_, err = svc.ImportAssets(ctx, 1)
		require.NoError(t, err)

		assets, _ := memAssetRepo{store}.GetAll(ctx)
		require.Len(t, assets, 1)
		assert.Equal(t, 41000.0, *assets[0].LastPrice)
	})

	t.Run("transient provider errors are retried", func(t *testing.T) {
		store := newMemStore()
		client := &fakeCoinGecko{
			markets:    []coingecko.Market{market("bitcoin", "btc", 40000)},
			marketErrs: []error{utils.NewHTTPError(http.StatusTooManyRequests, "slow down")},
		}
		svc := services.NewMarketSyncService(memAssetRepo{store}, client, 250, 1, services.WithRetryBackoff(fastRetry))

		result, err := svc.ImportAssets(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 2, client.marketCalls)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		client := &fakeCoinGecko{marketErrs: []error{utils.NewHTTPError(http.StatusUnauthorized, "bad key")}}
		svc := services.NewMarketSyncService(memAssetRepo{newMemStore()}, client, 250, 1, services.WithRetryBackoff(fastRetry))

		_, err := svc.ImportAssets(ctx, 1)
		assert.ErrorIs(t, err, services.ErrPriceProviderUnavailable)
		assert.Equal(t, 1, client.marketCalls)
	})

	t.Run("count must be positive", func(t *testing.T) {
		svc := services.NewMarketSyncService(memAssetRepo{newMemStore()}, &fakeCoinGecko{}, 250, 1)
		_, err := svc.ImportAssets(ctx, 0)
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})
}

func TestMarketSyncService_RefreshPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("prices every asset in bounded batches", func(t *testing.T) {
		store := newMemStore()
		ids := []string{"a", "b", "c", "d", "e"}
		prices := map[string]float64{}
		for i, id := range ids {
			store.addAsset(id, id, nil)
			prices[id] = float64(i + 1)
		}
		client := &fakeCoinGecko{prices: prices}
		svc := services.NewMarketSyncService(memAssetRepo{store}, client, 2, 2, services.WithRetryBackoff(fastRetry))

		result, err := svc.RefreshPrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, result.Requested)
		assert.Equal(t, int64(5), result.Updated)
		assert.Zero(t, result.Failed)

		require.Len(t, client.priceCalls, 3)
		for _, call := range client.priceCalls {
			assert.LessOrEqual(t, len(call), 2)
		}

		e, err := memAssetRepo{store}.GetBySymbol(ctx, "E")
		require.NoError(t, err)
		require.NotNil(t, e.LastPrice)
		assert.Equal(t, 5.0, *e.LastPrice)
		assert.NotNil(t, e.LastPriceAt)
	})

	t.Run("failed batches do not block the others", func(t *testing.T) {
		store := newMemStore()
		store.addAsset("a", "a", nil)
		store.addAsset("b", "b", nil)
		failure := utils.NewHTTPError(http.StatusBadRequest, "bad ids")
		client := &fakeCoinGecko{
			prices:    map[string]float64{"a": 1, "b": 2},
			priceErrs: []error{failure},
		}
		svc := services.NewMarketSyncService(memAssetRepo{store}, client, 1, 1, services.WithRetryBackoff(fastRetry))

		result, err := svc.RefreshPrices(ctx)
		require.ErrorIs(t, err, services.ErrPriceProviderUnavailable)
		require.NotNil(t, result)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, int64(1), result.Updated)
	})

	t.Run("empty registry is a no-op", func(t *testing.T) {
		client := &fakeCoinGecko{}
		svc := services.NewMarketSyncService(memAssetRepo{newMemStore()}, client, 250, 1)
		result, err := svc.RefreshPrices(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.Requested)
		assert.Zero(t, client.priceCallCount())
	})
}
