package handlers_test

import (
	"context"
	"io"

	"cryptotracker/src/schemas"

	"github.com/stretchr/testify/mock"
)

type MockAuthController struct {
	mock.Mock
}

func (m *MockAuthController) Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.UserResponse), args.Error(1)
}

func (m *MockAuthController) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.TokenResponse), args.Error(1)
}

func (m *MockAuthController) GoogleLogin(ctx context.Context, req *schemas.GoogleLoginRequest) (*schemas.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.TokenResponse), args.Error(1)
}

type MockAssetsController struct {
	mock.Mock
}

func (m *MockAssetsController) GetAllAssets(ctx context.Context) ([]*schemas.AssetResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schemas.AssetResponse), args.Error(1)
}

func (m *MockAssetsController) GetAssetBySymbol(ctx context.Context, symbol string) (*schemas.AssetResponse, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.AssetResponse), args.Error(1)
}

func (m *MockAssetsController) GetMarkets(ctx context.Context, limit int) ([]*schemas.MarketResponse, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schemas.MarketResponse), args.Error(1)
}

type MockTransactionsController struct {
	mock.Mock
}

func (m *MockTransactionsController) CreateTransaction(ctx context.Context, userID int, req *schemas.CreateTransactionRequest) (*schemas.CreateTransactionResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.CreateTransactionResponse), args.Error(1)
}

func (m *MockTransactionsController) GetTransactions(ctx context.Context, userID int) ([]*schemas.TransactionResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schemas.TransactionResponse), args.Error(1)
}

func (m *MockTransactionsController) ExportTransactions(ctx context.Context, userID int, w io.Writer) error {
	args := m.Called(ctx, userID, w)
	return args.Error(0)
}

type MockPortfolioController struct {
	mock.Mock
}

func (m *MockPortfolioController) GetPortfolio(ctx context.Context, userID int) ([]*schemas.PortfolioHoldingResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schemas.PortfolioHoldingResponse), args.Error(1)
}

func (m *MockPortfolioController) GetPortfolioSummary(ctx context.Context, userID int) (*schemas.PortfolioSummaryResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.PortfolioSummaryResponse), args.Error(1)
}

func (m *MockPortfolioController) RenderPortfolioChart(ctx context.Context, userID int, w io.Writer) error {
	args := m.Called(ctx, userID, w)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, "<html>chart</html>")
	}
	return args.Error(0)
}

func (m *MockPortfolioController) RenderPortfolioReport(ctx context.Context, userID int, w io.Writer) error {
	args := m.Called(ctx, userID, w)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, "%PDF-1.4")
	}
	return args.Error(0)
}
