package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medtrace/medtrace/internal/config"
	"github.com/medtrace/medtrace/internal/domain/medicine"
	"github.com/medtrace/medtrace/internal/domain/registry"
	"github.com/medtrace/medtrace/internal/platform/ledger"
	"github.com/medtrace/medtrace/internal/platform/middleware"
	"github.com/medtrace/medtrace/internal/platform/telemetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medtrace-server",
		Short: "Medicine Supply Chain Tracking API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the supply chain API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the baseline sample medicines into the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := ledger.WithTxTime(context.Background(), time.Now().UTC())
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			medSvc := medicine.NewService(medicine.NewLedgerRepository(store))
			if err := medSvc.InitLedger(ctx); err != nil {
				return fmt.Errorf("seed ledger: %w", err)
			}

			logger.Info().Str("backend", cfg.LedgerBackend).Msg("ledger seeded")
			return nil
		},
	}
}

// openStore builds the ledger backend named by LEDGER_BACKEND. Config
// validation has already checked the backend-specific settings.
func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, error) {
	switch cfg.LedgerBackend {
	case config.BackendMemory:
		return ledger.NewMemoryStore(), nil
	case config.BackendLevelDB:
		return ledger.OpenLevelDB(cfg.LedgerPath)
	case config.BackendPostgres:
		pool, err := ledger.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		return ledger.NewPostgresStore(ctx, pool)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Ledger backend
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open ledger store")
	}
	defer store.Close()
	logger.Info().Str("backend", cfg.LedgerBackend).Msg("ledger store ready")

	// Services
	medSvc := medicine.NewService(medicine.NewLedgerRepository(store))
	regSvc := registry.NewService(registry.NewLedgerRepository(store))

	if cfg.SeedOnStart {
		seedCtx := ledger.WithTxTime(ctx, time.Now().UTC())
		if err := medSvc.InitLedger(seedCtx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed ledger")
		}
		logger.Info().Msg("baseline medicines seeded")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.TxTime())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API group
	apiV1 := e.Group("/api/v1")

	medHandler := medicine.NewHandler(medSvc)
	medHandler.RegisterRoutes(apiV1)

	regHandler := registry.NewHandler(regSvc)
	regHandler.RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(telemetry.Handler()))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
