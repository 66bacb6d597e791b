package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cryptotracker/src/api/controllers"
	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/clients/googleauth"
	"cryptotracker/src/config"
	"cryptotracker/src/database"
	"cryptotracker/src/repositories"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	AuthController         controllers.AuthControllerI
	AssetsController       controllers.AssetsControllerI
	TransactionsController controllers.TransactionsControllerI
	PortfolioController    controllers.PortfolioControllerI
}

// NewHandler wires repositories, services and controllers for the API
// service. cache backs both the price and the markets caches.
func NewHandler(cfg *config.Config, db *pgxpool.Pool, cache utils.CacheHandlerI, tokenAuth *jwtauth.JWTAuth, logger *logrus.Logger) *Handler {
	cgCfg := cfg.ExternalClients.CoinGecko
	client := coingecko.NewClient(cfg, nil)
	breaker := utils.NewCircuitBreaker("coingecko", cgCfg.BreakerThreshold, cgCfg.BreakerReset, logrus.NewEntry(logger))

	assetRepo := repositories.NewAssetRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	holdingRepo := repositories.NewHoldingRepository(db)
	userRepo := repositories.NewUserRepository(db)

	priceService := services.NewPriceService(client,
		services.WithPriceCache(cache, cgCfg.CacheTTL),
		services.WithPriceTimeout(cgCfg.Timeout),
		services.WithCircuitBreaker(breaker),
	)
	ledgerService := services.NewLedgerService(
		database.NewTxManager(db),
		transactionRepo,
		holdingRepo,
		assetRepo,
		services.NewHoldingsReconciler(holdingRepo),
	)
	valuationService := services.NewValuationService(holdingRepo, priceService)
	reportService := services.NewReportService(ledgerService, valuationService)
	assetService := services.NewAssetService(assetRepo, client, cache, cgCfg.CacheTTL, breaker)
	authService := services.NewAuthService(userRepo, tokenAuth, cfg.Auth.TokenTTL,
		services.WithGoogleValidator(googleauth.NewTokenValidator(cfg.Auth.GoogleClientID)),
	)

	return &Handler{
		AuthController:         controllers.NewAuthController(authService, cfg.Auth.TokenTTL),
		AssetsController:       controllers.NewAssetsController(assetService),
		TransactionsController: controllers.NewTransactionsController(ledgerService, reportService),
		PortfolioController:    controllers.NewPortfolioController(valuationService, reportService),
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps service errors to status codes. Unexpected errors are
// reported with a generic message so internal details never leak.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case err == nil:
		utils.WriteError(w, utils.InternalServerError("Unhandled error"))
	case errors.As(err, &httpErr):
		utils.WriteError(w, httpErr)
	case errors.Is(err, context.DeadlineExceeded):
		utils.WriteError(w, utils.GatewayTimeout("Request timed out"))
	case errors.Is(err, services.ErrInsufficientHoldings):
		utils.WriteError(w, utils.BadRequest(services.ErrInsufficientHoldings.Error()))
	case errors.Is(err, services.ErrInvalidInput):
		utils.WriteError(w, utils.BadRequest(err.Error()))
	case errors.Is(err, services.ErrNotFound):
		utils.WriteError(w, utils.NotFound(err.Error()))
	case errors.Is(err, services.ErrConflict):
		utils.WriteError(w, utils.Conflict(err.Error()))
	case errors.Is(err, services.ErrUnauthorized):
		utils.WriteError(w, utils.Unauthorized(err.Error()))
	default:
		utils.WriteError(w, utils.InternalServerError("Internal Server Error"))
	}
}

// currentUserID returns the authenticated user's id from the verified token.
func currentUserID(r *http.Request) (int, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, utils.Unauthorized("missing or invalid token")
	}
	id, err := services.UserIDFromClaims(claims)
	if err != nil {
		return 0, utils.Unauthorized(err.Error())
	}
	return id, nil
}
