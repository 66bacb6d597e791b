package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	req := new(schemas.CreateTransactionRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	if key := r.Header.Get(idempotencyKeyHeader); key != "" {
		if req.IdempotencyKey != "" && req.IdempotencyKey != key {
			h.HandleErrors(w, utils.BadRequest("idempotency key in header and body differ"))
			return
		}
		req.IdempotencyKey = key
	}

	response, err := h.TransactionsController.CreateTransaction(ctx, userID, req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	status := http.StatusCreated
	if response.Replayed {
		status = http.StatusOK
	}
	h.respond(w, r, response, status)
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	transactions, err := h.TransactionsController.GetTransactions(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, transactions, http.StatusOK)
}

func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.TransactionsController.ExportTransactions(ctx, userID, &buf); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("failed to export transactions")
		h.HandleErrors(w, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().UTC().Format(utils.ShortDashDateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
