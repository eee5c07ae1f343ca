// Terminology API: versioned MedDRA and WHO Drug dictionary server with
// ranked search, hierarchy browsing and coding resolution.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "net/http/pprof"

	"github.com/ravenmed/terminology-api/coding"
	"github.com/ravenmed/terminology-api/config"
	"github.com/ravenmed/terminology-api/handlers"
	"github.com/ravenmed/terminology-api/health"
	"github.com/ravenmed/terminology-api/importer"
	"github.com/ravenmed/terminology-api/logging"
	"github.com/ravenmed/terminology-api/scheduler"
	"github.com/ravenmed/terminology-api/search"
	"github.com/ravenmed/terminology-api/server"
	"github.com/ravenmed/terminology-api/store"
	"github.com/ravenmed/terminology-api/validation"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	logging.InitLogger("logs")

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	termStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logging.Error("Failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer termStore.Close()

	// Wire the dependency graph
	imp := importer.NewImporter(termStore, cfg.ImportBatchSize)
	engine := search.NewEngine(termStore, 0)
	resolver := coding.NewResolver(termStore)
	validator := validation.NewDataValidator()
	checker := health.NewHealthChecker(termStore, imp)
	handler := handlers.NewHTTPHandler(termStore, engine, resolver, imp, validator, checker)

	watchdog := scheduler.NewScheduler(termStore, imp)
	if err := watchdog.Start(); err != nil {
		logging.Error("Failed to start watchdog", "error", err)
		os.Exit(1)
	}
	defer watchdog.Stop()

	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
