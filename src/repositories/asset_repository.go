package repositories

import (
	"context"
	"strings"
	"time"

	"cryptotracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssetRepository interface {
	GetAll(ctx context.Context) ([]models.Asset, error)
	GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Asset, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error)
	GetExternalIDs(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, asset *models.Asset) error
	UpdatePrices(ctx context.Context, prices []models.AssetPrice) (int64, error)
}

type assetRepo struct {
	db *pgxpool.Pool
}

func NewAssetRepository(db *pgxpool.Pool) AssetRepository {
	return &assetRepo{db: db}
}

const assetColumns = `id, symbol, external_id, name, logo_url, last_price, last_price_at, created_at`

func scanAsset(row pgx.Row, asset *models.Asset) error {
	return row.Scan(&asset.ID, &asset.Symbol, &asset.ExternalID, &asset.Name,
		&asset.LogoURL, &asset.LastPrice, &asset.LastPriceAt, &asset.CreatedAt)
}

func (r *assetRepo) GetAll(ctx context.Context) ([]models.Asset, error) {
	rows, err := r.db.Query(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		if err := scanAsset(rows, &asset); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func (r *assetRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Asset, error) {
	var asset models.Asset
	row := conn(r.db, tx).QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	if err := scanAsset(row, &asset); err != nil {
		return nil, notFound(err)
	}
	return &asset, nil
}

func (r *assetRepo) GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	var asset models.Asset
	row := r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE symbol = $1`, strings.ToUpper(symbol))
	if err := scanAsset(row, &asset); err != nil {
		return nil, notFound(err)
	}
	return &asset, nil
}

func (r *assetRepo) GetExternalIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT external_id FROM assets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Upsert inserts the asset or refreshes the metadata of the asset sharing its
// external id.
func (r *assetRepo) Upsert(ctx context.Context, asset *models.Asset) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO assets (symbol, external_id, name, logo_url, last_price, last_price_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (external_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			logo_url = EXCLUDED.logo_url,
			last_price = COALESCE(EXCLUDED.last_price, assets.last_price),
			last_price_at = COALESCE(EXCLUDED.last_price_at, assets.last_price_at)
		 RETURNING id, created_at`,
		strings.ToUpper(asset.Symbol), asset.ExternalID, asset.Name, asset.LogoURL, asset.LastPrice, asset.LastPriceAt,
	).Scan(&asset.ID, &asset.CreatedAt)
}

func (r *assetRepo) UpdatePrices(ctx context.Context, prices []models.AssetPrice) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	ids := make([]string, len(prices))
	values := make([]float64, len(prices))
	fetchedAt := make([]time.Time, len(prices))
	for i, p := range prices {
		ids[i] = p.ExternalID
		values[i] = p.Price
		fetchedAt[i] = p.FetchedAt
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE assets AS a
		 SET last_price = p.price, last_price_at = p.fetched_at
		 FROM unnest($1::text[], $2::float8[], $3::timestamptz[]) AS p(external_id, price, fetched_at)
		 WHERE a.external_id = p.external_id`,
		ids, values, fetchedAt,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
