package handlers

import (
	"context"
	"net/http"
	"time"

	"cryptotracker/src/utils"

	"github.com/sirupsen/logrus"
)

func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := h.Controller.RefreshPrices(ctx)
	if err != nil && result == nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("price refresh failed")
		h.HandleErrors(w, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		// some batches failed; the others were stored
		status = http.StatusMultiStatus
	}
	h.respond(w, r, result, status)
}

// RefreshPricesJob is the scheduled form of RefreshPrices.
func (h *Handler) RefreshPricesJob(logger *logrus.Logger, timeout time.Duration) func(ctx context.Context) {
	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		entry := logger.WithField("job", "price_refresh")
		ctx = utils.WithLogger(ctx, entry)
		if _, err := h.Controller.RefreshPrices(ctx); err != nil {
			entry.WithError(err).Warn("scheduled price refresh finished with errors")
		}
	}
}
