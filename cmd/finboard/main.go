package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/categorize"
	"finboard/internal/config"
	"finboard/internal/consolidate"
	apphttp "finboard/internal/http"
	"finboard/internal/ledger"
	applog "finboard/internal/log"
	"finboard/internal/transform"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(slog.LevelInfo, "finboard")
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	rules, err := categorize.LoadRules(cfg.RulesFile)
	if err != nil {
		logger.Error("Failed to load categorizer rules", "error", err, "file", cfg.RulesFile)
		os.Exit(1)
	}

	transformer := transform.New(categorize.New(rules), time.Month(cfg.FiscalStartMonth))
	consolidator := consolidate.New(consolidate.Options{
		InputDir:         cfg.InputDir,
		OutputPath:       cfg.LedgerPath,
		Strict:           cfg.StrictIngest,
		PersistMandatory: cfg.PersistMandatory,
	}, transformer)
	svc := ledger.NewService(consolidator)

	if cfg.ReloadOnStart {
		if _, err := svc.Reload(context.Background()); err != nil {
			// The server still starts; /readyz stays unready until a
			// successful reload.
			logger.Warn("Initial ledger load failed", "error", err)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, cfg.CacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finboard server", "port", cfg.Port, "input_dir", cfg.InputDir, "ledger_path", cfg.LedgerPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
