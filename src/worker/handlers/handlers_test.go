package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"
	"cryptotracker/src/worker/controllers"
	"cryptotracker/src/worker/handlers"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMarketSyncService struct {
	mock.Mock
}

func (m *MockMarketSyncService) ImportAssets(ctx context.Context, count int) (*services.ImportResult, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportResult), args.Error(1)
}

func (m *MockMarketSyncService) RefreshPrices(ctx context.Context) (*services.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RefreshResult), args.Error(1)
}

func newHandler() (*handlers.Handler, *MockMarketSyncService) {
	sync := new(MockMarketSyncService)
	return &handlers.Handler{Controller: controllers.NewController(sync)}, sync
}

func TestImportAssets(t *testing.T) {
	t.Run("count defaults to the configured value", func(t *testing.T) {
		h, sync := newHandler()
		sync.On("ImportAssets", mock.Anything, 100).Return(&services.ImportResult{Imported: 98, Skipped: 2}, nil).Once()

		rec := httptest.NewRecorder()
		h.ImportAssets(100)(rec, httptest.NewRequest(http.MethodPost, "/api/assets/import", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body schemas.ImportAssetsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, 98, body.Imported)
		assert.Equal(t, 2, body.Skipped)
	})

	t.Run("count can be overridden", func(t *testing.T) {
		h, sync := newHandler()
		sync.On("ImportAssets", mock.Anything, 10).Return(&services.ImportResult{Imported: 10}, nil).Once()

		rec := httptest.NewRecorder()
		h.ImportAssets(100)(rec, httptest.NewRequest(http.MethodPost, "/api/assets/import?count=10", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		sync.AssertExpectations(t)
	})

	t.Run("invalid counts are rejected", func(t *testing.T) {
		h, sync := newHandler()
		rec := httptest.NewRecorder()
		h.ImportAssets(100)(rec, httptest.NewRequest(http.MethodPost, "/api/assets/import?count=zero", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		sync.AssertNotCalled(t, "ImportAssets", mock.Anything, mock.Anything)
	})

	t.Run("provider failures are 502", func(t *testing.T) {
		h, sync := newHandler()
		sync.On("ImportAssets", mock.Anything, 100).
			Return(nil, fmt.Errorf("%w: timeout", services.ErrPriceProviderUnavailable)).Once()

		rec := httptest.NewRecorder()
		h.ImportAssets(100)(rec, httptest.NewRequest(http.MethodPost, "/api/assets/import", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestRefreshPrices(t *testing.T) {
	t.Run("full refresh is 200", func(t *testing.T) {
		h, sync := newHandler()
		sync.On("RefreshPrices", mock.Anything).Return(&services.RefreshResult{Requested: 3, Updated: 3}, nil).Once()

		rec := httptest.NewRecorder()
		h.RefreshPrices(rec, httptest.NewRequest(http.MethodPost, "/api/prices/refresh", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body schemas.RefreshPricesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, int64(3), body.Updated)
	})

	t.Run("partial refresh is 207", func(t *testing.T) {
		h, sync := newHandler()
		sync.On("RefreshPrices", mock.Anything).
			Return(&services.RefreshResult{Requested: 3, Updated: 2, Failed: 1}, services.ErrPriceProviderUnavailable).Once()

		rec := httptest.NewRecorder()
		h.RefreshPrices(rec, httptest.NewRequest(http.MethodPost, "/api/prices/refresh", nil))
		assert.Equal(t, http.StatusMultiStatus, rec.Code)
	})

	t.Run("scheduled refresh logs failures", func(t *testing.T) {
		h, sync := newHandler()
		sync.On("RefreshPrices", mock.Anything).Return(nil, services.ErrPriceProviderUnavailable).Once()

		logger, hook := test.NewNullLogger()
		h.RefreshPricesJob(logger, time.Second)(context.Background())

		require.Len(t, hook.Entries, 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "price_refresh", hook.LastEntry().Data["job"])
	})
}

func TestHandleErrors(t *testing.T) {
	h, _ := newHandler()
	cases := map[string]struct {
		err    error
		status int
	}{
		"provider rejected our key": {fmt.Errorf("%w: %w", services.ErrPriceProviderUnavailable, utils.Unauthorized("bad key")), http.StatusBadGateway},
		"bad request":               {utils.BadRequest("count must be a positive integer"), http.StatusBadRequest},
		"invalid input":             {fmt.Errorf("%w: count must be positive", services.ErrInvalidInput), http.StatusBadRequest},
		"deadline":                  {context.DeadlineExceeded, http.StatusGatewayTimeout},
		"anything else":             {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleErrors(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
