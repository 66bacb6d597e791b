package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cryptotracker/src/models"
	"cryptotracker/src/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory stand-in for the Postgres schema. WithinTx
// serializes units of work and restores the previous state when fn fails,
// which is what the real transaction gives the services.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	assets        map[int]models.Asset
	transactions  []models.Transaction
	holdings      map[int]models.Holding
	nextAssetID   int
	nextTxID      int
	nextHoldingID int

	failHoldingWrite error
	priceUpdates     [][]models.AssetPrice
}

func newMemStore() *memStore {
	return &memStore{
		assets:   map[int]models.Asset{},
		holdings: map[int]models.Holding{},
	}
}

type snapshot struct {
	transactions  []models.Transaction
	holdings      map[int]models.Holding
	nextTxID      int
	nextHoldingID int
}

func (s *memStore) WithinTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := snapshot{
		transactions:  append([]models.Transaction(nil), s.transactions...),
		holdings:      make(map[int]models.Holding, len(s.holdings)),
		nextTxID:      s.nextTxID,
		nextHoldingID: s.nextHoldingID,
	}
	for id, h := range s.holdings {
		snap.holdings[id] = h
	}
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.transactions = snap.transactions
		s.holdings = snap.holdings
		s.nextTxID = snap.nextTxID
		s.nextHoldingID = snap.nextHoldingID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) addAsset(symbol, externalID string, lastPrice *float64) models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAssetID++
	asset := models.Asset{
		ID:         s.nextAssetID,
		Symbol:     strings.ToUpper(symbol),
		ExternalID: externalID,
		Name:       symbol,
		LastPrice:  lastPrice,
		CreatedAt:  time.Now().UTC(),
	}
	s.assets[asset.ID] = asset
	return asset
}

func (s *memStore) holding(userID, assetID int) (models.Holding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.holdings {
		if h.UserID == userID && h.AssetID == assetID {
			return h, true
		}
	}
	return models.Holding{}, false
}

func (s *memStore) ledger(userID int) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type memAssetRepo struct{ *memStore }

func (r memAssetRepo) GetAll(_ context.Context) ([]models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assets := make([]models.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })
	return assets, nil
}

func (r memAssetRepo) GetByID(_ context.Context, id int, _ pgx.Tx) (*models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r memAssetRepo) GetBySymbol(_ context.Context, symbol string) (*models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.Symbol == strings.ToUpper(symbol) {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memAssetRepo) GetExternalIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.assets))
	for id := range r.assets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.assets[id].ExternalID
	}
	return out, nil
}

func (r memAssetRepo) Upsert(_ context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset.Symbol = strings.ToUpper(asset.Symbol)
	for id, a := range r.assets {
		if a.Symbol == asset.Symbol && a.ExternalID != asset.ExternalID {
			return uniqueViolation("assets_symbol_key")
		}
		if a.ExternalID == asset.ExternalID {
			asset.ID = id
			asset.CreatedAt = a.CreatedAt
			r.assets[id] = *asset
			return nil
		}
	}
	r.nextAssetID++
	asset.ID = r.nextAssetID
	asset.CreatedAt = time.Now().UTC()
	r.assets[asset.ID] = *asset
	return nil
}

func (r memAssetRepo) UpdatePrices(_ context.Context, prices []models.AssetPrice) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.priceUpdates = append(r.priceUpdates, prices)
	var updated int64
	for _, p := range prices {
		for id, a := range r.assets {
			if a.ExternalID == p.ExternalID {
				price, at := p.Price, p.FetchedAt
				a.LastPrice, a.LastPriceAt = &price, &at
				r.assets[id] = a
				updated++
			}
		}
	}
	return updated, nil
}

type memTransactionRepo struct{ *memStore }

func (r memTransactionRepo) Create(_ context.Context, t *models.Transaction, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.IdempotencyKey != nil {
		for _, existing := range r.transactions {
			if existing.UserID == t.UserID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *t.IdempotencyKey {
				return uniqueViolation(repositories.IdempotencyKeyConstraint)
			}
		}
	}
	r.nextTxID++
	t.ID = r.nextTxID
	t.CreatedAt = time.Now().UTC()
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r memTransactionRepo) GetByUserID(_ context.Context, userID int) ([]models.TransactionWithAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TransactionWithAsset
	for _, t := range r.transactions {
		if t.UserID != userID {
			continue
		}
		a := r.assets[t.AssetID]
		out = append(out, models.TransactionWithAsset{Transaction: t, AssetSymbol: a.Symbol, AssetName: a.Name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r memTransactionRepo) GetByIdempotencyKey(_ context.Context, userID int, key string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.UserID == userID && t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			found := t
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type memHoldingRepo struct{ *memStore }

func (r memHoldingRepo) LockPair(_ context.Context, _ pgx.Tx, _, _ int) error { return nil }

func (r memHoldingRepo) GetForUpdate(_ context.Context, _ pgx.Tx, userID, assetID int) (*models.Holding, error) {
	h, ok := r.holding(userID, assetID)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &h, nil
}

func (r memHoldingRepo) GetByUserID(_ context.Context, userID int) ([]models.HoldingWithAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HoldingWithAsset
	for _, h := range r.holdings {
		if h.UserID == userID {
			out = append(out, models.HoldingWithAsset{Holding: h, Asset: r.assets[h.AssetID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset.Symbol < out[j].Asset.Symbol })
	return out, nil
}

func (r memHoldingRepo) Create(_ context.Context, h *models.Holding, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failHoldingWrite != nil {
		return r.failHoldingWrite
	}
	for _, existing := range r.holdings {
		if existing.UserID == h.UserID && existing.AssetID == h.AssetID {
			return uniqueViolation("uq_holdings_user_asset")
		}
	}
	r.nextHoldingID++
	h.ID = r.nextHoldingID
	r.holdings[h.ID] = *h
	return nil
}

func (r memHoldingRepo) Update(_ context.Context, h *models.Holding, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failHoldingWrite != nil {
		return r.failHoldingWrite
	}
	if _, ok := r.holdings[h.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.holdings[h.ID] = *h
	return nil
}

func (r memHoldingRepo) Delete(_ context.Context, id int, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failHoldingWrite != nil {
		return r.failHoldingWrite
	}
	if _, ok := r.holdings[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.holdings, id)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users []models.User
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.ID = len(r.users) + 1
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users = append(r.users, *u)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}
