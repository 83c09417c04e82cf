package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmoraes/aportebtc-backend/internal/adapter/httpapi"
	"github.com/dmoraes/aportebtc-backend/internal/adapter/rates"
	"github.com/dmoraes/aportebtc-backend/internal/adapter/repository/postgres"
	"github.com/dmoraes/aportebtc-backend/internal/config"
	"github.com/dmoraes/aportebtc-backend/internal/logger"
	"github.com/dmoraes/aportebtc-backend/internal/usecase/aggregation"
	"github.com/dmoraes/aportebtc-backend/internal/usecase/importer"
)

func main() {
	// 1. Configuration and logging
	config.Load()
	logger.Init(config.Cfg.LogLevel)

	// 2. Database
	db, err := postgres.NewDB(config.Cfg.DatabaseURL)
	if err != nil {
		logger.L.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3. Repositories and collaborators
	recordRepo := postgres.NewRecordRepository(db)
	rateClient := rates.NewClient(config.Cfg.RateAPIBaseURL, config.Cfg.RateCacheTTL)

	// 4. Services (use cases)
	importerService := importer.NewService(recordRepo)
	aggregationService := aggregation.NewService(recordRepo, rateClient)

	// 5. HTTP API
	api := httpapi.NewServer(importerService, aggregationService, recordRepo, config.Cfg.MaxUploadSizeBytes)
	server := &http.Server{
		Addr:              ":" + config.Cfg.Port,
		Handler:           httpapi.RequireToken(config.Cfg.APIToken, api.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down
// the server.
func waitForShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.L.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("graceful shutdown failed", "error", err)
	}
}
