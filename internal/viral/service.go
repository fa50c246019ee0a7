// Package viral implements the trending-content aggregation pipeline: a query
// planner fans out across platform adapters, results are normalized into
// canonical records, deduplicated, filtered, scored, and ranked. The pipeline
// is stateless per request; only provider configuration and observability
// counters outlive a call.
package viral

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"reelkit/viralservice/internal/domain"
)

var (
	ErrNoAdapters      = errors.New("no platform adapters configured")
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrEmptyIdentifier = errors.New("channelIdentifier is required in channel mode")
)

// MaxStatsBatchSize caps a single FetchStatsBatch call; the orchestrator
// chunks larger id lists.
const MaxStatsBatchSize = 50

// maxConcurrentPerAdapter limits simultaneous queries to one platform so the
// fan-out cannot trip upstream rate limits on its own.
const maxConcurrentPerAdapter = 10

// Adapter is the narrow per-platform capability the pipeline consumes. All
// calls are side-effect free beyond the network request, return classified
// errors (common.ProviderError), and never panic.
type Adapter interface {
	Name() string
	Platform() domain.Platform
	Info() domain.AdapterInfo
	FetchTrending(ctx context.Context, region, categoryID string, limit int) ([]domain.RawItem, error)
	FetchByKeyword(ctx context.Context, query string, limit int) ([]domain.RawItem, error)
	FetchChannel(ctx context.Context, identifier, kind string, limit int) ([]domain.RawItem, error)
	FetchStatsBatch(ctx context.Context, ids []string) ([]domain.RawItem, error)
	// StatsRequireLookup reports whether keyword/channel payloads omit
	// engagement counts and need a stats batch backfill.
	StatsRequireLookup() bool
}

type Service struct {
	adapters       map[domain.Platform]Adapter
	timeout        time.Duration
	defaultRegions []string
	catalog        *domain.CategoryCatalog
	fallbackMin    int
	limiters       map[domain.Platform]*rate.Limiter
	logger         *slog.Logger

	healthMu sync.Mutex
	health   map[string]*adapterHealth
}

type ServiceOption func(*Service)

func WithDefaultRegions(regions []string) ServiceOption {
	return func(s *Service) {
		if len(regions) > 0 {
			s.defaultRegions = regions
		}
	}
}

func WithCatalog(catalog *domain.CategoryCatalog) ServiceOption {
	return func(s *Service) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithFallbackMinResults sets the post-filter floor below which the one-shot
// keyword expansion fires.
func WithFallbackMinResults(min int) ServiceOption {
	return func(s *Service) {
		if min > 0 {
			s.fallbackMin = min
		}
	}
}

// WithAdapterRateLimit installs a per-platform token bucket ahead of every
// upstream call.
func WithAdapterRateLimit(rps float64, burst int) ServiceOption {
	return func(s *Service) {
		if rps <= 0 || burst <= 0 {
			return
		}
		for platform := range s.adapters {
			s.limiters[platform] = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(adapters []Adapter, timeout time.Duration, opts ...ServiceOption) *Service {
	registry := make(map[domain.Platform]Adapter, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		registry[adapter.Platform()] = adapter
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	svc := &Service{
		adapters:       registry,
		timeout:        timeout,
		defaultRegions: []string{"US"},
		catalog:        domain.BuiltinCategoryCatalog(),
		fallbackMin:    1,
		limiters:       make(map[domain.Platform]*rate.Limiter),
		logger:         slog.Default(),
		health:         make(map[string]*adapterHealth),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) Catalog() *domain.CategoryCatalog { return s.catalog }

// Adapters lists the registered platform adapters, sorted by name.
func (s *Service) Adapters() []domain.AdapterInfo {
	items := make([]domain.AdapterInfo, 0, len(s.adapters))
	for _, adapter := range s.adapters {
		info := adapter.Info()
		if info.Name == "" {
			info.Name = strings.ToLower(strings.TrimSpace(adapter.Name()))
		}
		if info.Label == "" {
			info.Label = info.Name
		}
		items = append(items, info)
	}
	sortAdapterInfos(items)
	return items
}

// resolveAdapters returns the adapters a request addresses, in a fixed order
// so planning stays deterministic.
func (s *Service) resolveAdapters(platform domain.Platform) ([]Adapter, error) {
	if len(s.adapters) == 0 {
		return nil, ErrNoAdapters
	}
	if platform == domain.PlatformBoth {
		ordered := make([]Adapter, 0, 2)
		for _, p := range []domain.Platform{domain.PlatformYouTube, domain.PlatformTikTok} {
			if adapter, ok := s.adapters[p]; ok {
				ordered = append(ordered, adapter)
			}
		}
		if len(ordered) == 0 {
			return nil, ErrNoAdapters
		}
		return ordered, nil
	}
	adapter, ok := s.adapters[platform]
	if !ok {
		return nil, ErrUnknownPlatform
	}
	return []Adapter{adapter}, nil
}

func (s *Service) waitAdapterRateLimit(ctx context.Context, platform domain.Platform) error {
	limiter, ok := s.limiters[platform]
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
