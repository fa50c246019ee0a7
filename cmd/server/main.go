package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "reelkit/viralservice/internal/api/http"
	"reelkit/viralservice/internal/app"
	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/metrics"
	"reelkit/viralservice/internal/providers/tiktok"
	"reelkit/viralservice/internal/providers/youtube"
	"reelkit/viralservice/internal/telemetry"
	"reelkit/viralservice/internal/viral"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "viral-search")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "viral-search"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("requestTimeout", cfg.RequestTimeout),
		slog.Bool("hasYouTubeKey", cfg.YouTubeAPIKey != ""),
		slog.String("tiktokEndpoint", cfg.TikTokEndpoint),
		slog.Any("defaultRegions", cfg.DefaultRegions),
		slog.Int("fallbackMinResults", cfg.FallbackMinResults),
		slog.Bool("hasCategoryConfig", cfg.CategoryConfigPath != ""),
	)

	catalog, err := domain.LoadCategoryCatalog(cfg.CategoryConfigPath)
	if err != nil {
		logger.Error("category catalog load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	youtubeClient := &http.Client{Timeout: cfg.RequestTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	tiktokClient := &http.Client{Timeout: cfg.RequestTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}

	trendingService := viral.NewService([]viral.Adapter{
		youtube.NewProvider(youtube.Config{
			APIKey:    cfg.YouTubeAPIKey,
			Endpoint:  cfg.YouTubeEndpoint,
			UserAgent: cfg.UserAgent,
			Client:    youtubeClient,
		}),
		tiktok.NewProvider(tiktok.Config{
			Endpoint:  cfg.TikTokEndpoint,
			DeviceID:  cfg.TikTokDeviceID,
			UserAgent: cfg.UserAgent,
			Client:    tiktokClient,
		}),
	}, cfg.RequestTimeout,
		viral.WithDefaultRegions(cfg.DefaultRegions),
		viral.WithCatalog(catalog),
		viral.WithFallbackMinResults(cfg.FallbackMinResults),
		viral.WithAdapterRateLimit(cfg.ProviderRateRPS, cfg.ProviderRateBurst),
		viral.WithLogger(logger),
	)

	handler := apihttp.NewServer(trendingService, apihttp.WithLogger(logger)).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("viral search service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Duration("timeout", cfg.RequestTimeout),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("viral search service stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
