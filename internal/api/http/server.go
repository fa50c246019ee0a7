package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/providers/common"
	"reelkit/viralservice/internal/viral"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type TrendingService interface {
	Trending(ctx context.Context, request domain.TrendingRequest) (domain.TrendingResponse, error)
	Adapters() []domain.AdapterInfo
	ProviderDiagnostics() []domain.ProviderDiagnostics
	Catalog() *domain.CategoryCatalog
}

type Server struct {
	trending TrendingService
	logger   *slog.Logger
}

const maxIdentifierLength = 200

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(trendingService TrendingService, options ...ServerOption) *Server {
	server := &Server{
		trending: trendingService,
		logger:   slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/trending/categories", s.handleCategories)
	mux.HandleFunc("/trending/platforms/health", s.handlePlatformsHealth)
	mux.HandleFunc("/trending/platforms", s.handlePlatforms)
	mux.HandleFunc("/trending", s.handleTrending)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "viral-search",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/trending" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.trending == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "trending service is not configured")
		return
	}

	request, err := parseTrendingRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	response, err := s.trending.Trending(r.Context(), request)
	if err != nil {
		s.logger.Warn("trending request failed",
			slog.String("platform", string(request.Platform)),
			slog.String("category", request.CategoryRef),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, domain.ErrUnknownCategory):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, viral.ErrUnknownPlatform):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, viral.ErrEmptyIdentifier):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, viral.ErrNoAdapters):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		case common.IsNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err.Error())
		case common.IsQuota(err):
			writeError(w, http.StatusServiceUnavailable, "quota_exceeded", "platform quota exceeded, retry after quota reset")
		case common.IsAuth(err):
			writeError(w, http.StatusBadGateway, "auth_failed", "platform credential rejected, reconfigure the API key")
		default:
			writeError(w, http.StatusBadGateway, "upstream_error", "all requested platforms failed")
		}
		return
	}

	failedProviders := make([]string, 0, len(response.Providers))
	for _, providerStatus := range response.Providers {
		if !providerStatus.OK {
			failedProviders = append(failedProviders, providerStatus.Name)
		}
	}
	s.logger.Info("trending completed",
		slog.String("platform", string(request.Platform)),
		slog.String("category", request.CategoryRef),
		slog.Int("total", response.Total),
		slog.Bool("fallback", response.Fallback),
		slog.Int64("elapsedMs", response.ElapsedMS),
		slog.Int("failedProviders", len(failedProviders)),
	)
	if len(failedProviders) > 0 {
		s.logger.Warn("trending platforms partially failed",
			slog.String("platform", string(request.Platform)),
			slog.Any("failedProviders", failedProviders),
		)
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/trending/categories" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.trending == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "trending service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.trending.Catalog().List(),
	})
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/trending/platforms" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.trending == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "trending service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.trending.Adapters(),
	})
}

func (s *Server) handlePlatformsHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/trending/platforms/health" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.trending == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "trending service is not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"checkedAt": time.Now().UTC(),
		"items":     s.trending.ProviderDiagnostics(),
	})
}

func parseTrendingRequest(r *http.Request) (domain.TrendingRequest, error) {
	q := r.URL.Query()
	var request domain.TrendingRequest

	platform := strings.ToLower(strings.TrimSpace(q.Get("platform")))
	switch platform {
	case "", "both", "youtube", "tiktok":
		request.Platform = domain.NormalizePlatform(platform)
	default:
		return request, errors.New("invalid platform: expected youtube, tiktok or both")
	}

	request.Regions = parseCSVUpper(q.Get("region"))

	maxResults, err := parsePositiveInt(r, "maxResults", 50)
	if err != nil {
		return request, errors.New("invalid maxResults")
	}
	request.MaxResults = maxResults

	if v := strings.TrimSpace(q.Get("minLikes")); v != "" {
		n, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil || n < 0 {
			return request, errors.New("invalid minLikes")
		}
		request.Filters.MinLikes = n
	}
	if v := strings.TrimSpace(q.Get("maxDaysAgo")); v != "" {
		n, parseErr := strconv.Atoi(v)
		if parseErr != nil || n < 0 {
			return request, errors.New("invalid maxDaysAgo")
		}
		request.Filters.MaxDaysAgo = n
	}
	if v := strings.TrimSpace(q.Get("minLikesPerDay")); v != "" {
		n, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil || n < 0 {
			return request, errors.New("invalid minLikesPerDay")
		}
		request.Filters.MinLikesPerDay = n
	}
	request.Filters.ShortsOnly = parseOptionalBool(q.Get("shortsOnly"))
	request.Filters.ExcludeSynthetic = parseOptionalBool(q.Get("excludeSynthetic"))

	request.SortBy = domain.NormalizeSortPolicy(strings.TrimSpace(q.Get("sortBy")))
	request.CategoryRef = strings.TrimSpace(q.Get("category"))

	request.ChannelIdentifier = strings.TrimSpace(q.Get("channelIdentifier"))
	if len(request.ChannelIdentifier) > maxIdentifierLength {
		return request, errors.New("channelIdentifier too long (max 200 characters)")
	}
	kind := strings.ToLower(strings.TrimSpace(q.Get("identifierKind")))
	switch kind {
	case "", "id", "handle", "username":
		request.IdentifierKind = kind
	default:
		return request, errors.New("invalid identifierKind: expected id, handle or username")
	}
	if request.IdentifierKind != "" && request.ChannelIdentifier == "" {
		return request, errors.New("channelIdentifier is required when identifierKind is set")
	}

	return request, nil
}

func parseCSVUpper(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.ToUpper(strings.TrimSpace(part))
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func parsePositiveInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid value")
	}
	return parsed, nil
}

func parseOptionalBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
