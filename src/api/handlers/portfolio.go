package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"cryptotracker/src/utils"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	holdings, err := h.PortfolioController.GetPortfolio(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, holdings, http.StatusOK)
}

func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	summary, err := h.PortfolioController.GetPortfolioSummary(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, summary, http.StatusOK)
}

func (h *Handler) GetPortfolioChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.PortfolioController.RenderPortfolioChart(ctx, userID, &buf); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("failed to render portfolio chart")
		h.HandleErrors(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) GetPortfolioReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.PortfolioController.RenderPortfolioReport(ctx, userID, &buf); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("failed to render portfolio report")
		h.HandleErrors(w, err)
		return
	}

	filename := fmt.Sprintf("portfolio_%s.pdf", time.Now().UTC().Format(utils.ShortDashDateLayout))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
