package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shorts-discovery/internal/discovery"
	"shorts-discovery/internal/platform/config"
	"shorts-discovery/internal/platform/logger"
	"shorts-discovery/internal/platform/metrics"
	"shorts-discovery/internal/youtube"

	"github.com/go-chi/chi/v5"
)

const defaultShutdownSeconds = 10

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "5000")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	apiKey := config.GetEnv("YOUTUBE_API_KEY", "")
	timeout := config.GetEnvDuration("YOUTUBE_TIMEOUT", youtube.DefaultTimeout)
	maxRPS := config.GetEnvFloat("YOUTUBE_MAX_RPS", 0)
	categoryRegion := config.GetEnv("CATEGORY_REGION", discovery.DefaultCategoryRegion)
	shutdownTimeout := time.Duration(config.GetEnvInt("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownSeconds)) * time.Second

	log := logger.New(logLevel, logFormat)

	client, err := youtube.NewClient(context.Background(), youtube.Config{
		APIKey:  apiKey,
		Timeout: timeout,
		MaxRPS:  maxRPS,
	})
	if err != nil {
		var cfgErr *discovery.ConfigError
		if errors.As(err, &cfgErr) {
			log.Error("invalid configuration", "setting", cfgErr.Setting, "reason", cfgErr.Reason)
		} else {
			log.Error("youtube client init failed", "error", err)
		}
		os.Exit(1)
	}

	ledger := discovery.NewQuotaLedger(nil)
	repo := discovery.NewInMemoryResultRepository()
	svc := discovery.NewService(client, ledger, repo, log, discovery.WithCategoryRegion(categoryRegion))
	met := metrics.New()
	h := discovery.NewHandler(svc, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			info := ledger.Info(0)
			met.SetQuota(info.CurrentCost, info.RemainingQuota, info.EstimatedSearchesLeft)
		}).ServeHTTP(w, r)
	})
	r.Post("/search", h.Search)
	r.Get("/quota", h.Quota)
	r.Get("/export.csv", h.ExportCSV)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"api_key", youtube.MaskKey(apiKey),
		"youtube_timeout", timeout.String(),
		"youtube_max_rps", maxRPS,
		"category_region", categoryRegion,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
