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

	"github.com/wolfman30/ambutrack-notify/internal/app/bootstrap"
	appconfig "github.com/wolfman30/ambutrack-notify/internal/config"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

func main() {
	// Local development keeps secrets in .env; production injects them.
	dotenvErr := appconfig.LoadDotEnv()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil && !cfg.IsProduction() {
		logger.Debug("no .env file loaded", "error", dotenvErr)
	}
	logger.Info("starting ambutrack notify API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	srv := newServer(cfg, logger)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newServer(cfg *appconfig.Config, logger *logging.Logger) *http.Server {
	return &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: bootstrap.BuildHTTPHandler(cfg, logger),
		// Outbound provider calls run inside the request, so the write
		// timeout must outlast three sequential provider timeouts.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.ProviderHTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
