package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/api/handler"
	"dispetcher/backend/internal/api/router"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/internal/service"
	"dispetcher/backend/internal/store"
	"dispetcher/backend/pkg/database"
	"dispetcher/backend/pkg/jwt"
	applogger "dispetcher/backend/pkg/logger"
	"dispetcher/backend/pkg/notify"
	"dispetcher/backend/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("DISPETCHER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting dispatch backend",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("notify_driver", cfg.Notify.Driver),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// 4. redis is optional: without it the mirror, rate limiting and the
	// shared token blacklist are off
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	}

	// 5. store → repository
	var remote *store.RemoteStore
	if rdb != nil && cfg.Store.RemoteEnabled {
		remote = store.NewRemoteStore(rdb, cfg.Store.RemoteTTL)
	}
	backend := store.NewFallbackStore(store.NewGormStore(db), remote, cfg.Store.RemoteTimeout, logger)
	repo := repository.NewRepository(backend, cfg.Business.LogLimit)

	if _, err := service.BootstrapPasswords(context.Background(), repo, cfg.Auth.BootstrapPassword, logger); err != nil {
		logger.Fatal("failed to bootstrap dispatcher passwords", zap.Error(err))
	}

	// 6. notifications: configured driver plus live sockets
	base, err := notify.New(&cfg.Notify, logger)
	if err != nil {
		logger.Fatal("failed to init notifier", zap.Error(err))
	}
	hub := notify.NewHub(logger)
	notifier := notify.Fanout{base, hub}

	// 7. auth
	jwtMgr := jwt.NewManager(&cfg.Auth)
	var blacklist service.TokenBlacklist = service.NewMemoryBlacklist(time.Now)
	deps := router.Deps{JWT: jwtMgr, Logger: logger}
	if rdb != nil {
		blacklist = rdb
		deps.Limiter = rdb
	}
	deps.Revoked = blacklist

	// 8. service → handler → router
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, notifier, logger)
	h := handler.NewHandler(cfg, svc, jwtMgr, hub)
	engine := router.Setup(cfg, h, deps)

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked websockets are not tracked by Shutdown
	if err := notifier.Close(); err != nil {
		logger.Warn("failed to close notifiers", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	_ = sqlDB.Close()
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
