package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/config"
	"cryptotracker/src/repositories"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"
	"cryptotracker/src/worker/controllers"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Controller *controllers.Controller
}

func NewHandler(cfg *config.Config, db *pgxpool.Pool) *Handler {
	client := coingecko.NewClient(cfg, nil)
	marketSync := services.NewMarketSyncService(
		repositories.NewAssetRepository(db),
		client,
		cfg.Worker.BatchSize,
		cfg.Worker.Concurrency,
	)
	return &Handler{Controller: controllers.NewController(marketSync)}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps job errors to status codes. Any provider failure is a
// 502, whatever status the provider answered with.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		utils.WriteError(w, utils.GatewayTimeout("Request timed out"))
	case errors.Is(err, services.ErrPriceProviderUnavailable):
		utils.WriteError(w, utils.BadGateway("price provider unavailable"))
	case errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError:
		utils.WriteError(w, httpErr)
	case errors.Is(err, services.ErrInvalidInput):
		utils.WriteError(w, utils.BadRequest(err.Error()))
	default:
		utils.WriteError(w, utils.InternalServerError("Internal Server Error"))
	}
}
