package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/analytics"
	"github.com/iliyamo/movie-watchlist/internal/config"
	"github.com/iliyamo/movie-watchlist/internal/database"
	"github.com/iliyamo/movie-watchlist/internal/handler"
	"github.com/iliyamo/movie-watchlist/internal/logging"
	"github.com/iliyamo/movie-watchlist/internal/middleware"
	"github.com/iliyamo/movie-watchlist/internal/omdb"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/repository"
	"github.com/iliyamo/movie-watchlist/internal/router"
	"github.com/iliyamo/movie-watchlist/internal/watchlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		logger.WithError(err).Fatal("connect to database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("migrate database")
	}

	repo := watchlist.NewRepository(repository.NewMovieRepo(db))
	omdbClient := omdb.NewCachedClient(omdb.NewClient(omdb.Config{
		BaseURL: cfg.OMDbBaseURL,
		APIKey:  cfg.OMDbAPIKey,
		Timeout: cfg.OMDbTimeout,
	}, logger), cfg.OMDbCacheSize, cfg.OMDbCacheTTL)

	var events handler.EventPublisher = queue.NopPublisher{}
	if cfg.QueueEnabled {
		events = queue.NewPublisher(cfg.RabbitMQURL, logger)
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.RabbitMQURL, cfg.ActivityLog, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("activity consumer stopped")
			}
		}()
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig(), logger)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(logger))

	watchlistHandler := &handler.WatchlistHandler{
		Watchlist: repo,
		OMDb:      omdbClient,
		Events:    events,
		Logger:    logger,
	}
	omdbMiddleware := []echo.MiddlewareFunc{
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger),
	}
	router.RegisterRoutes(e, router.Handlers{
		Search:         &handler.SearchHandler{OMDb: omdbClient, Logger: logger},
		Watchlist:      watchlistHandler,
		Analytics:      &handler.AnalyticsHandler{Engine: analytics.NewEngine(repo), Logger: logger},
		OMDbMiddleware: omdbMiddleware,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
	logger.Info("stopped")
}
