package worker

import (
	"net/http"
	"time"

	"cryptotracker/src/config"
	"cryptotracker/src/utils"
	handlers "cryptotracker/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const priceRefreshJob = "price_refresh"

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	cfg     *config.Config
	logger  *logrus.Logger
}

func NewServer(cfg *config.Config, logger *logrus.Logger, handler *handlers.Handler) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		cfg:     cfg,
		logger:  logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(utils.RequestLogger(s.logger))
	s.Router.Use(middleware.Recoverer)

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/assets/import", s.Handler.ImportAssets(s.cfg.Worker.ImportCount))
		r.Post("/prices/refresh", s.Handler.RefreshPrices)
	})
}

// StartSchedulers registers the periodic price refresh. An empty cron spec
// disables it.
func (s *Server) StartSchedulers() error {
	spec := s.cfg.Worker.PriceRefreshCron
	if spec == "" {
		return nil
	}
	if err := s.Handler.Controller.Schedule(priceRefreshJob, spec, s.Handler.RefreshPricesJob(s.logger, 2*time.Minute)); err != nil {
		return err
	}
	s.logger.WithField("cron", spec).Info("price refresh scheduled")
	return nil
}

func (s *Server) StopSchedulers() {
	s.Handler.Controller.StopSchedulers()
}

func NewHTTPServer(cfg *config.Config, server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
