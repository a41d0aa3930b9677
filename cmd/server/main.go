package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/rose-backend-go/internal/api"
	"github.com/jengzang/rose-backend-go/internal/config"
	"github.com/jengzang/rose-backend-go/internal/database"
	"github.com/jengzang/rose-backend-go/internal/middleware"
	"github.com/jengzang/rose-backend-go/internal/repository"
	"github.com/jengzang/rose-backend-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := config.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		sugar.Fatalw("failed to create data directory", "error", err)
	}
	db, err := database.Open(ctx, database.Config{Path: cfg.DBPath})
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	defer db.Close()

	roseService, err := service.NewRoseService(ctx,
		repository.NewDatasetRepository(db),
		repository.NewGeometryRepository(db),
		cfg.Geometry,
	)
	if err != nil {
		sugar.Fatalw("failed to load document", "error", err)
	}
	defer roseService.Close()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	router := api.SetupRouter(roseService, api.Options{
		JWTSecret: cfg.JWTSecret,
		Limiter:   limiter,
		Logger:    sugar.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}
