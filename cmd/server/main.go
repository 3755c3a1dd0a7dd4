package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tour_ops/internal/config"
	"tour_ops/internal/logger"
	"tour_ops/internal/middleware"
	"tour_ops/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize structured logging to file
	logger.Setup(cfg.LogFile, cfg.LogLevel)

	db, err := config.OpenDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := config.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	tokens := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	r := routes.SetupRouter(routes.NewDeps(db, tokens, cfg.DefaultCurrency))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server running at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
