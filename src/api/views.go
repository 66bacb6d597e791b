package api

import (
	"net/http"
	"time"

	handlers "cryptotracker/src/api/handlers"
	"cryptotracker/src/config"
	"cryptotracker/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router    *chi.Mux
	Handler   *handlers.Handler
	TokenAuth *jwtauth.JWTAuth
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewServer(cfg *config.Config, logger *logrus.Logger, handler *handlers.Handler, tokenAuth *jwtauth.JWTAuth) *Server {
	server := &Server{
		Router:    chi.NewRouter(),
		Handler:   handler,
		TokenAuth: tokenAuth,
		cfg:       cfg,
		logger:    logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(utils.RequestLogger(s.logger))
	s.Router.Use(middleware.Recoverer)
	if s.cfg.Service.RequestTimeout > 0 {
		s.Router.Use(middleware.Timeout(s.cfg.Service.RequestTimeout))
	}
	s.Router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Service.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler)

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.Handler.Register)
		r.Post("/auth/login", s.Handler.Login)
		r.Post("/auth/google", s.Handler.GoogleLogin)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.TokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", s.Handler.GetAllAssets)
				r.Get("/markets", s.Handler.GetMarkets)
				r.Get("/{symbol}", s.Handler.GetAssetBySymbol)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.Handler.GetTransactions)
				r.Post("/", s.Handler.CreateTransaction)
				r.Get("/export", s.Handler.ExportTransactions)
			})

			r.Route("/portfolio", func(r chi.Router) {
				r.Get("/", s.Handler.GetPortfolio)
				r.Get("/summary", s.Handler.GetPortfolioSummary)
				r.Get("/chart", s.Handler.GetPortfolioChart)
				r.Get("/report.pdf", s.Handler.GetPortfolioReport)
			})
		})
	})
}

func NewHTTPServer(cfg *config.Config, server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Service.RequestTimeout + 10*time.Second,
		Handler:      server,
	}
	return httpServer
}
