package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cryptotracker/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAllAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assets, err := h.AssetsController.GetAllAssets(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, assets, http.StatusOK)
}

func (h *Handler) GetAssetBySymbol(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	symbol := chi.URLParam(r, "symbol")
	asset, err := h.AssetsController.GetAssetBySymbol(ctx, symbol)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, asset, http.StatusOK)
}

func (h *Handler) GetMarkets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			h.HandleErrors(w, utils.BadRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	markets, err := h.AssetsController.GetMarkets(ctx, limit)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, markets, http.StatusOK)
}
