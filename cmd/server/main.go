// Package main is the entry point for the Folio market-data service.
// It exposes cached stock, bond and currency data over a REST API for
// portfolio tracking frontends.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avramidis/folio/internal/clients/exchangerate"
	"github.com/avramidis/folio/internal/clients/fmp"
	"github.com/avramidis/folio/internal/clients/yahoo"
	"github.com/avramidis/folio/internal/config"
	currencyhandlers "github.com/avramidis/folio/internal/modules/currency/handlers"
	marketdatahandlers "github.com/avramidis/folio/internal/modules/marketdata/handlers"
	"github.com/avramidis/folio/internal/server"
	"github.com/avramidis/folio/internal/services"
	"github.com/avramidis/folio/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Folio market-data service")

	// Provider clients
	yahooClient := yahoo.NewClient(log)
	fmpClient := fmp.NewClient(cfg.FMPAPIKey, log)
	rateClient := exchangerate.NewClient(log)

	if cfg.FMPAPIKey == "" {
		log.Warn().Msg("FMP_API_KEY not configured, bond pricing will be unavailable")
	}

	// Services own the caches and circuit breakers
	stockService := services.NewStockPriceService(yahooClient, log)
	bondService := services.NewBondPriceService(fmpClient, log)
	currencyService := services.NewCurrencyService(rateClient, log)

	srv := server.New(
		server.Config{
			Port:    cfg.Port,
			DevMode: cfg.DevMode,
		},
		marketdatahandlers.NewHandler(stockService, bondService, log),
		currencyhandlers.NewHandler(currencyService, log),
		log,
	)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
