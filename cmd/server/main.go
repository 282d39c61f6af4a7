package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/henarth-agravat/stockcard/internal/api"
	"github.com/henarth-agravat/stockcard/internal/config"
	"github.com/henarth-agravat/stockcard/internal/extract"
	"github.com/henarth-agravat/stockcard/internal/screener"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local runs.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	sc := screener.NewClient(cfg.ScreenerBaseURL, screener.Options{
		Timeout:          cfg.FetchTimeout,
		Retries:          cfg.FetchRetries,
		UserAgents:       cfg.UserAgents,
		MaxPageBytes:     cfg.MaxPageBytes,
		MaxDocumentBytes: cfg.MaxDocumentBytes,
		StatsWindow:      cfg.StatsWindow,
	}, log)
	ex := extract.NewExtractor(extract.SlogNotices(log))

	// Initialize HTTP server.
	srv := api.NewServer(sc, ex, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		sc.Close()
	}()

	log.Info("starting stockcard", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
