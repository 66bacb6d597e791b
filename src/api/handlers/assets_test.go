package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"cryptotracker/src/schemas"
	"cryptotracker/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetAssets(t *testing.T) {
	s := newTestServer(t)
	s.assets.On("GetAllAssets", mock.Anything).Return([]*schemas.AssetResponse{{ID: 1, Symbol: "BTC"}}, nil).Once()

	resp := s.do(t, http.MethodGet, "/api/assets", "", map[string]string{"Authorization": bearer(t, 1)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []schemas.AssetResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "BTC", body[0].Symbol)
}

func TestGetAssetBySymbol(t *testing.T) {
	s := newTestServer(t)
	s.assets.On("GetAssetBySymbol", mock.Anything, "eth").Return(&schemas.AssetResponse{ID: 2, Symbol: "ETH"}, nil).Once()
	s.assets.On("GetAssetBySymbol", mock.Anything, "nope").Return(nil, services.ErrAssetNotFound).Once()

	resp := s.do(t, http.MethodGet, "/api/assets/eth", "", map[string]string{"Authorization": bearer(t, 1)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/assets/nope", "", map[string]string{"Authorization": bearer(t, 1)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMarkets(t *testing.T) {
	t.Run("limit defaults to 100", func(t *testing.T) {
		s := newTestServer(t)
		s.assets.On("GetMarkets", mock.Anything, 100).Return([]*schemas.MarketResponse{}, nil).Once()

		resp := s.do(t, http.MethodGet, "/api/assets/markets", "", map[string]string{"Authorization": bearer(t, 1)})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.assets.AssertExpectations(t)
	})

	t.Run("limit is passed through", func(t *testing.T) {
		s := newTestServer(t)
		s.assets.On("GetMarkets", mock.Anything, 10).Return([]*schemas.MarketResponse{}, nil).Once()

		resp := s.do(t, http.MethodGet, "/api/assets/markets?limit=10", "", map[string]string{"Authorization": bearer(t, 1)})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.assets.AssertExpectations(t)
	})

	t.Run("invalid limits are rejected", func(t *testing.T) {
		s := newTestServer(t)
		resp := s.do(t, http.MethodGet, "/api/assets/markets?limit=-3", "", map[string]string{"Authorization": bearer(t, 1)})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
