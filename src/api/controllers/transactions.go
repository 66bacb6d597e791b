package controllers

import (
	"context"
	"fmt"
	"io"

	"cryptotracker/src/models"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"
)

type TransactionsControllerI interface {
	CreateTransaction(ctx context.Context, userID int, req *schemas.CreateTransactionRequest) (*schemas.CreateTransactionResponse, error)
	GetTransactions(ctx context.Context, userID int) ([]*schemas.TransactionResponse, error)
	ExportTransactions(ctx context.Context, userID int, w io.Writer) error
}

type TransactionsController struct {
	LedgerService services.LedgerServiceI
	ReportService services.ReportServiceI
}

func NewTransactionsController(ledgerService services.LedgerServiceI, reportService services.ReportServiceI) *TransactionsController {
	return &TransactionsController{LedgerService: ledgerService, ReportService: reportService}
}

func toTransactionResponse(t *models.Transaction) schemas.TransactionResponse {
	return schemas.TransactionResponse{
		ID:              t.ID,
		AssetID:         t.AssetID,
		TransactionType: string(t.TransactionType),
		Quantity:        t.Quantity,
		PricePerUnit:    t.PricePerUnit,
		TotalValue:      t.TotalValue,
		TransactionDate: t.Date,
		Notes:           t.Notes,
		IdempotencyKey:  t.IdempotencyKey,
		CreatedAt:       t.CreatedAt,
	}
}

func (c *TransactionsController) CreateTransaction(ctx context.Context, userID int, req *schemas.CreateTransactionRequest) (*schemas.CreateTransactionResponse, error) {
	date, err := utils.ParseTransactionDate(req.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrInvalidInput, err)
	}

	result, err := c.LedgerService.RecordTransaction(ctx, services.RecordTransactionInput{
		UserID:          userID,
		AssetID:         req.AssetID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		PricePerUnit:    req.PricePerUnit,
		Date:            date,
		Notes:           req.Notes,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	response := &schemas.CreateTransactionResponse{
		Transaction: toTransactionResponse(result.Transaction),
		Replayed:    result.Replayed,
	}
	if h := result.Holding; h != nil {
		response.Holding = &schemas.HoldingResponse{
			AssetID:     h.AssetID,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
			LastUpdated: h.LastUpdated,
		}
	}
	return response, nil
}

func (c *TransactionsController) GetTransactions(ctx context.Context, userID int) ([]*schemas.TransactionResponse, error) {
	transactions, err := c.LedgerService.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := make([]*schemas.TransactionResponse, len(transactions))
	for i := range transactions {
		t := toTransactionResponse(&transactions[i].Transaction)
		t.AssetSymbol = transactions[i].AssetSymbol
		t.AssetName = transactions[i].AssetName
		response[i] = &t
	}
	return response, nil
}

func (c *TransactionsController) ExportTransactions(ctx context.Context, userID int, w io.Writer) error {
	return c.ReportService.ExportTransactions(ctx, userID, w)
}
