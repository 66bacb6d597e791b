package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cryptotracker/src/database"
	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

type RecordTransactionInput struct {
	UserID          int
	AssetID         int
	TransactionType string
	Quantity        float64
	PricePerUnit    float64
	Date            time.Time
	Notes           string
	IdempotencyKey  string
}

type RecordTransactionResult struct {
	Transaction *models.Transaction

	// Holding is nil when the transaction closed the position.
	Holding *models.Holding

	// Replayed is set when the idempotency key matched an earlier submission;
	// nothing was written in that case.
	Replayed bool
}

type LedgerServiceI interface {
	RecordTransaction(ctx context.Context, in RecordTransactionInput) (*RecordTransactionResult, error)
	ListTransactions(ctx context.Context, userID int) ([]models.TransactionWithAsset, error)
}

type LedgerService struct {
	txManager       database.TxManager
	transactionRepo repositories.TransactionRepository
	holdingRepo     repositories.HoldingRepository
	assetRepo       repositories.AssetRepository
	reconciler      HoldingsReconcilerI
	now             func() time.Time
}

func NewLedgerService(
	txManager database.TxManager,
	transactionRepo repositories.TransactionRepository,
	holdingRepo repositories.HoldingRepository,
	assetRepo repositories.AssetRepository,
	reconciler HoldingsReconcilerI,
) *LedgerService {
	return &LedgerService{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		assetRepo:       assetRepo,
		reconciler:      reconciler,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// newEntry validates the input and builds the ledger entry to persist.
func (s *LedgerService) newEntry(in RecordTransactionInput) (*models.Transaction, error) {
	kind, ok := models.ParseTransactionType(in.TransactionType)
	if !ok {
		return nil, fmt.Errorf("%w: transaction_type must be 'buy' or 'sell'", ErrInvalidInput)
	}
	if !validPositive(in.Quantity) || !validPositive(in.PricePerUnit) {
		return nil, fmt.Errorf("%w: quantity and price must be positive values", ErrInvalidInput)
	}
	if in.UserID <= 0 {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	if in.AssetID <= 0 {
		return nil, fmt.Errorf("%w: asset_id is required", ErrInvalidInput)
	}

	entry := &models.Transaction{
		UserID:          in.UserID,
		AssetID:         in.AssetID,
		TransactionType: kind,
		Quantity:        in.Quantity,
		PricePerUnit:    in.PricePerUnit,
		TotalValue:      in.Quantity * in.PricePerUnit,
		Date:            in.Date.UTC(),
	}
	if in.Date.IsZero() {
		entry.Date = s.now()
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		entry.Notes = &notes
	}
	if in.IdempotencyKey != "" {
		key, err := uuid.Parse(in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%w: idempotency key must be a UUID", ErrInvalidInput)
		}
		normalized := key.String()
		entry.IdempotencyKey = &normalized
	}
	return entry, nil
}

// RecordTransaction appends a ledger entry and applies it to the user's
// holding in one database transaction: either both are committed or neither.
func (s *LedgerService) RecordTransaction(ctx context.Context, in RecordTransactionInput) (*RecordTransactionResult, error) {
	logger := utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":  in.UserID,
		"asset_id": in.AssetID,
	})

	entry, err := s.newEntry(in)
	if err != nil {
		return nil, err
	}

	if entry.IdempotencyKey != nil {
		replay, err := s.replay(ctx, entry.UserID, *entry.IdempotencyKey)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	if _, err := s.assetRepo.GetByID(ctx, entry.AssetID, nil); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		logger.WithError(err).Error("failed to load asset")
		return nil, fmt.Errorf("%w: load asset: %w", ErrPersistence, err)
	}

	var holding *models.Holding
	err = s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.holdingRepo.LockPair(ctx, tx, entry.UserID, entry.AssetID); err != nil {
			return fmt.Errorf("%w: lock holding: %w", ErrPersistence, err)
		}
		if err := s.transactionRepo.Create(ctx, entry, tx); err != nil {
			return err
		}
		holding, err = s.reconciler.ApplyTransaction(ctx, tx, entry)
		return err
	})

	switch {
	case err == nil:
	case entry.IdempotencyKey != nil && database.IsUniqueViolation(err, repositories.IdempotencyKeyConstraint):
		// a concurrent submission with the same key won the race
		return s.replay(ctx, entry.UserID, *entry.IdempotencyKey)
	case errors.Is(err, ErrInsufficientHoldings), errors.Is(err, ErrInvalidInput):
		logger.WithError(err).Info("transaction rejected")
		return nil, err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, err
	default:
		logger.WithError(err).Error("failed to record transaction")
		if !errors.Is(err, ErrPersistence) {
			err = fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"transaction_id": entry.ID,
		"type":           entry.TransactionType,
		"quantity":       entry.Quantity,
	}).Info("transaction recorded")

	return &RecordTransactionResult{Transaction: entry, Holding: holding}, nil
}

// replay returns the entry previously recorded under key, or nil when the key is unused.
func (s *LedgerService) replay(ctx context.Context, userID int, key string) (*RecordTransactionResult, error) {
	existing, err := s.transactionRepo.GetByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load idempotent transaction: %w", ErrPersistence, err)
	}
	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":         userID,
		"transaction_id":  existing.ID,
		"idempotency_key": key,
	}).Info("replaying transaction for idempotency key")
	return &RecordTransactionResult{Transaction: existing, Replayed: true}, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int) ([]models.TransactionWithAsset, error) {
	transactions, err := s.transactionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrPersistence, err)
	}
	return transactions, nil
}
