package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptotracker/src/api"
	apihandlers "cryptotracker/src/api/handlers"
	"cryptotracker/src/config"
	"cryptotracker/src/database"
	"cryptotracker/src/utils"
	aws_handler "cryptotracker/src/utils/aws"
	redis_utils "cryptotracker/src/utils/redis"
	"cryptotracker/src/worker"
	workerhandlers "cryptotracker/src/worker/handlers"

	"github.com/go-chi/jwtauth"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// a missing .env file is fine outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}

	logger := utils.NewLogger(utils.ParseLevel(cfg.Logging.Level), cfg.Logging.ToFile, cfg.Logging.FilePath)

	if cfg.AWS.SecretID != "" {
		secrets, err := aws_handler.NewSecretManager(cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			logger.WithError(err).Fatal("Couldn't create AWS session")
		}
		secretsCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = config.ApplySecrets(secretsCtx, cfg, secrets)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Couldn't load secrets")
		}
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errC, err := run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		logger.WithError(err).Error("Error while running")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (<-chan error, error) {
	db, err := database.SetupDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var (
		httpServer *http.Server
		onShutdown []func()
	)
	onShutdown = append(onShutdown, db.Close)

	switch cfg.Service.Type {
	case config.API:
		var cache utils.CacheHandlerI = utils.NewMemoryCache()
		if cfg.Databases.Redis.Enabled {
			redisHandler, err := redis_utils.NewRedisHandler(ctx, cfg)
			if err != nil {
				db.Close()
				return nil, err
			}
			cache = redisHandler
			onShutdown = append(onShutdown, func() { _ = redisHandler.Close() })
		}

		tokenAuth := jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil)
		handler := apihandlers.NewHandler(cfg, db, cache, tokenAuth, logger)
		httpServer = api.NewHTTPServer(cfg, api.NewServer(cfg, logger, handler, tokenAuth))

	case config.WORKER:
		server := worker.NewServer(cfg, logger, workerhandlers.NewHandler(cfg, db))
		if err := server.StartSchedulers(); err != nil {
			db.Close()
			return nil, err
		}
		onShutdown = append([]func(){server.StopSchedulers}, onShutdown...)
		httpServer = worker.NewHTTPServer(cfg, server)
	}

	errC := make(chan error, 1)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := httpServer.Shutdown(ctxTimeout)
		for _, fn := range onShutdown {
			fn()
		}
		errC <- err
	}()

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Service.Port,
			"service": cfg.Service.Type,
		}).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	return errC, nil
}
