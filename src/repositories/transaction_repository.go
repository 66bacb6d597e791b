package repositories

import (
	"context"

	"cryptotracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyKeyConstraint is the unique index guarding replayed submissions.
const IdempotencyKeyConstraint = "uq_transactions_user_idempotency_key"

// TransactionRepository is append-only: ledger entries are never updated or deleted.
type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	GetByUserID(ctx context.Context, userID int) ([]models.TransactionWithAsset, error)
	GetByIdempotencyKey(ctx context.Context, userID int, key string) (*models.Transaction, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	query := `
		INSERT INTO transactions (user_id, asset_id, transaction_type, quantity, price_per_unit, total_value, date, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return conn(r.db, tx).QueryRow(ctx, query,
		t.UserID, t.AssetID, string(t.TransactionType), t.Quantity, t.PricePerUnit, t.TotalValue, t.Date, t.Notes, t.IdempotencyKey,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *transactionRepo) GetByUserID(ctx context.Context, userID int) ([]models.TransactionWithAsset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.user_id, t.asset_id, t.transaction_type, t.quantity, t.price_per_unit, t.total_value,
			t.date, t.notes, t.idempotency_key::text, t.created_at, a.symbol, a.name
		FROM transactions t
		JOIN assets a ON a.id = t.asset_id
		WHERE t.user_id = $1
		ORDER BY t.date DESC, t.id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.TransactionWithAsset
	for rows.Next() {
		var t models.TransactionWithAsset
		var kind string
		if err := rows.Scan(&t.ID, &t.UserID, &t.AssetID, &kind, &t.Quantity, &t.PricePerUnit, &t.TotalValue,
			&t.Date, &t.Notes, &t.IdempotencyKey, &t.CreatedAt, &t.AssetSymbol, &t.AssetName); err != nil {
			return nil, err
		}
		t.TransactionType = models.TransactionType(kind)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) GetByIdempotencyKey(ctx context.Context, userID int, key string) (*models.Transaction, error) {
	var t models.Transaction
	var kind string
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, asset_id, transaction_type, quantity, price_per_unit, total_value, date, notes,
			idempotency_key::text, created_at
		FROM transactions
		WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key,
	).Scan(&t.ID, &t.UserID, &t.AssetID, &kind, &t.Quantity, &t.PricePerUnit, &t.TotalValue, &t.Date, &t.Notes,
		&t.IdempotencyKey, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	t.TransactionType = models.TransactionType(kind)
	return &t, nil
}
