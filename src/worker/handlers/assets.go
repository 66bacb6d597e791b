package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cryptotracker/src/utils"
)

// ImportAssets registers the top ?count=N coins by market cap.
func (h *Handler) ImportAssets(defaultCount int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		count := defaultCount
		if countStr := r.URL.Query().Get("count"); countStr != "" {
			parsed, err := strconv.Atoi(countStr)
			if err != nil || parsed <= 0 {
				h.HandleErrors(w, utils.BadRequest("count must be a positive integer"))
				return
			}
			count = parsed
		}

		result, err := h.Controller.ImportAssets(ctx, count)
		if err != nil {
			utils.LoggerFromContext(ctx).WithError(err).Error("asset import failed")
			h.HandleErrors(w, err)
			return
		}

		h.respond(w, r, result, http.StatusOK)
	}
}
