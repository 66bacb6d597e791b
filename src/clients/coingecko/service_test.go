package coingecko_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/config"
	"cryptotracker/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *coingecko.CoinGeckoServiceClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.Config{}
	cfg.ExternalClients.CoinGecko.BaseURL = ts.URL + "/"
	cfg.ExternalClients.CoinGecko.APIKey = "demo-key"
	cfg.ExternalClients.CoinGecko.Timeout = 5 * time.Second
	return coingecko.NewClient(cfg, nil)
}

func TestCoinGeckoServiceClient(t *testing.T) {
	ctx := context.Background()

	t.Run("GetSimplePrice sends ids and the api key", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/simple/price", r.URL.Path)
			assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
			assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"bitcoin":{"usd":67187.33},"ethereum":{"usd":3500.1}}`))
		})

		prices, err := client.GetSimplePrice(ctx, []string{"bitcoin", "ethereum"}, "usd")
		require.NoError(t, err)
		price, ok := prices.Price("bitcoin", "usd")
		assert.True(t, ok)
		assert.Equal(t, 67187.33, price)
		_, ok = prices.Price("dogecoin", "usd")
		assert.False(t, ok)
	})

	t.Run("GetSimplePrice without ids does not call the provider", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})
		prices, err := client.GetSimplePrice(ctx, nil, "usd")
		require.NoError(t, err)
		assert.Empty(t, prices)
	})

	t.Run("GetMarkets pages by market cap", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "/coins/markets", r.URL.Path)
			assert.Equal(t, "usd", q.Get("vs_currency"))
			assert.Equal(t, "market_cap_desc", q.Get("order"))
			assert.Equal(t, "250", q.Get("per_page"))
			assert.Equal(t, "2", q.Get("page"))
			_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":40000,"market_cap":800000000000,"market_cap_rank":1,"price_change_percentage_24h":-1.5}]`))
		})

		markets, err := client.GetMarkets(ctx, "usd", 1000, 2)
		require.NoError(t, err)
		require.Len(t, markets, 1)
		assert.Equal(t, "btc", markets[0].Symbol)
		require.NotNil(t, markets[0].CurrentPrice)
		assert.Equal(t, 40000.0, *markets[0].CurrentPrice)
		require.NotNil(t, markets[0].MarketCapRank)
		assert.Equal(t, 1, *markets[0].MarketCapRank)
	})

	t.Run("error statuses become HTTP errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.GetMarkets(ctx, "usd", 10, 1)
		var httpErr *utils.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
	})

	t.Run("malformed bodies are decode errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.GetSimplePrice(ctx, []string{"bitcoin"}, "usd")
		assert.Error(t, err)
	})
}
