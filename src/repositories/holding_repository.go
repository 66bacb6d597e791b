package repositories

import (
	"context"

	"cryptotracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldingRepository interface {
	// LockPair serializes writers of one (user, asset) pair until tx ends,
	// including the case where no holding row exists yet.
	LockPair(ctx context.Context, tx pgx.Tx, userID, assetID int) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID, assetID int) (*models.Holding, error)
	GetByUserID(ctx context.Context, userID int) ([]models.HoldingWithAsset, error)
	Create(ctx context.Context, h *models.Holding, tx pgx.Tx) error
	Update(ctx context.Context, h *models.Holding, tx pgx.Tx) error
	Delete(ctx context.Context, id int, tx pgx.Tx) error
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

func (r *holdingRepo) LockPair(ctx context.Context, tx pgx.Tx, userID, assetID int) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1::int4, $2::int4)`, userID, assetID)
	return err
}

func (r *holdingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, assetID int) (*models.Holding, error) {
	var h models.Holding
	err := conn(r.db, tx).QueryRow(ctx,
		`SELECT id, user_id, asset_id, quantity, average_cost, last_updated
		FROM holdings
		WHERE user_id = $1 AND asset_id = $2
		FOR UPDATE`,
		userID, assetID,
	).Scan(&h.ID, &h.UserID, &h.AssetID, &h.Quantity, &h.AverageCost, &h.LastUpdated)
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func (r *holdingRepo) GetByUserID(ctx context.Context, userID int) ([]models.HoldingWithAsset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT h.id, h.user_id, h.asset_id, h.quantity, h.average_cost, h.last_updated,
			a.id, a.symbol, a.external_id, a.name, a.logo_url, a.last_price, a.last_price_at, a.created_at
		FROM holdings h
		JOIN assets a ON a.id = h.asset_id
		WHERE h.user_id = $1
		ORDER BY a.symbol`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.HoldingWithAsset
	for rows.Next() {
		var h models.HoldingWithAsset
		if err := rows.Scan(&h.ID, &h.UserID, &h.AssetID, &h.Quantity, &h.AverageCost, &h.LastUpdated,
			&h.Asset.ID, &h.Asset.Symbol, &h.Asset.ExternalID, &h.Asset.Name, &h.Asset.LogoURL,
			&h.Asset.LastPrice, &h.Asset.LastPriceAt, &h.Asset.CreatedAt); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (r *holdingRepo) Create(ctx context.Context, h *models.Holding, tx pgx.Tx) error {
	return conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO holdings (user_id, asset_id, quantity, average_cost, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		h.UserID, h.AssetID, h.Quantity, h.AverageCost, h.LastUpdated,
	).Scan(&h.ID)
}

func (r *holdingRepo) Update(ctx context.Context, h *models.Holding, tx pgx.Tx) error {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE holdings SET quantity = $2, average_cost = $3, last_updated = $4 WHERE id = $1`,
		h.ID, h.Quantity, h.AverageCost, h.LastUpdated,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *holdingRepo) Delete(ctx context.Context, id int, tx pgx.Tx) error {
	tag, err := conn(r.db, tx).Exec(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
