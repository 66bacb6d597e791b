package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptotracker/src/models"
	"cryptotracker/src/repositories"

	"github.com/jackc/pgx/v5"
)

type ReconcileAction int

const (
	HoldingCreated ReconcileAction = iota
	HoldingUpdated
	HoldingClosed
)

func (a ReconcileAction) String() string {
	switch a {
	case HoldingCreated:
		return "created"
	case HoldingUpdated:
		return "updated"
	case HoldingClosed:
		return "closed"
	}
	return "unknown"
}

// Reconcile returns the position that results from applying entry to
// existing, which is nil when the user holds none of the asset. existing is
// never modified. For HoldingClosed the returned holding carries the residual
// quantity and must be deleted by the caller.
func Reconcile(existing *models.Holding, entry *models.Transaction, now time.Time) (*models.Holding, ReconcileAction, error) {
	switch entry.TransactionType {
	case models.TransactionTypeBuy:
		if existing == nil {
			return &models.Holding{
				UserID:      entry.UserID,
				AssetID:     entry.AssetID,
				Quantity:    entry.Quantity,
				AverageCost: entry.PricePerUnit,
				LastUpdated: now,
			}, HoldingCreated, nil
		}
		next := *existing
		next.Quantity = existing.Quantity + entry.Quantity
		// weight the prior cost basis by the quantity it was paid for
		next.AverageCost = (existing.Quantity*existing.AverageCost + entry.TotalValue) / next.Quantity
		next.LastUpdated = now
		return &next, HoldingUpdated, nil

	case models.TransactionTypeSell:
		if existing == nil {
			return nil, 0, fmt.Errorf("%w: no holding for asset %d", ErrInsufficientHoldings, entry.AssetID)
		}
		if existing.Quantity < entry.Quantity {
			return nil, 0, fmt.Errorf("%w: held %g, requested %g", ErrInsufficientHoldings, existing.Quantity, entry.Quantity)
		}
		next := *existing
		next.Quantity = existing.Quantity - entry.Quantity
		next.LastUpdated = now
		if next.Quantity <= models.HoldingEpsilon {
			return &next, HoldingClosed, nil
		}
		return &next, HoldingUpdated, nil
	}
	return nil, 0, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, entry.TransactionType)
}

type HoldingsReconcilerI interface {
	ApplyTransaction(ctx context.Context, tx pgx.Tx, entry *models.Transaction) (*models.Holding, error)
}

// HoldingsReconciler keeps the holdings table consistent with the ledger.
type HoldingsReconciler struct {
	holdingRepo repositories.HoldingRepository
	now         func() time.Time
}

func NewHoldingsReconciler(holdingRepo repositories.HoldingRepository) *HoldingsReconciler {
	return &HoldingsReconciler{
		holdingRepo: holdingRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ApplyTransaction must run inside the transaction that wrote entry, after
// the (user, asset) pair has been locked. It returns nil when the position
// was closed.
func (r *HoldingsReconciler) ApplyTransaction(ctx context.Context, tx pgx.Tx, entry *models.Transaction) (*models.Holding, error) {
	existing, err := r.holdingRepo.GetForUpdate(ctx, tx, entry.UserID, entry.AssetID)
	if errors.Is(err, repositories.ErrNotFound) {
		existing = nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: load holding: %w", ErrPersistence, err)
	}

	next, action, err := Reconcile(existing, entry, r.now())
	if err != nil {
		return nil, err
	}

	switch action {
	case HoldingCreated:
		err = r.holdingRepo.Create(ctx, next, tx)
	case HoldingUpdated:
		err = r.holdingRepo.Update(ctx, next, tx)
	case HoldingClosed:
		err = r.holdingRepo.Delete(ctx, existing.ID, tx)
		next = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s holding: %w", ErrPersistence, action, err)
	}

	return next, nil
}
