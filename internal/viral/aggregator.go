package viral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/metrics"
	"reelkit/viralservice/internal/providers/common"
)

// branchStatus tracks one platform's fate across a request so the response
// can distinguish a degraded branch from a dead one.
type branchStatus struct {
	queries  int
	failures int
	skipped  int
	count    int
	lastErr  error
	fatalErr error
}

func (b *branchStatus) dead() bool {
	if b.fatalErr != nil && b.count == 0 {
		return true
	}
	return b.queries > 0 && b.count == 0 && b.failures+b.skipped == b.queries
}

// fatalLatch is the per-request fail-fast switch: once a platform reports a
// quota or auth error, its remaining queries are skipped while other
// platforms continue.
type fatalLatch struct {
	mu    sync.Mutex
	fatal map[domain.Platform]error
}

func newFatalLatch() *fatalLatch {
	return &fatalLatch{fatal: make(map[domain.Platform]error)}
}

func (l *fatalLatch) tripped(platform domain.Platform) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fatal[platform]
}

func (l *fatalLatch) trip(platform domain.Platform, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.fatal[platform]; !exists {
		l.fatal[platform] = err
	}
}

// Trending executes the full pipeline: plan → fan out → normalize → dedupe →
// filter → score → (one-shot fallback) → sort → rank.
func (s *Service) Trending(ctx context.Context, req domain.TrendingRequest) (domain.TrendingResponse, error) {
	startedAt := time.Now()
	now := startedAt.UTC()

	if req.MaxResults <= 0 {
		req.MaxResults = 50
	}
	if req.MaxResults > 200 {
		req.MaxResults = 200
	}
	req.SortBy = domain.NormalizeSortPolicy(string(req.SortBy))
	if req.IdentifierKind != "" && strings.TrimSpace(req.ChannelIdentifier) == "" {
		return domain.TrendingResponse{}, ErrEmptyIdentifier
	}

	adapters, err := s.resolveAdapters(req.Platform)
	if err != nil {
		return domain.TrendingResponse{}, err
	}
	category, err := s.catalog.ResolveCategoryRef(req.CategoryRef)
	if err != nil {
		return domain.TrendingResponse{}, err
	}
	if category.Niche != nil {
		req.Filters.Category = category.Niche
	}

	latch := newFatalLatch()
	statuses := make(map[domain.Platform]*branchStatus, len(adapters))
	for _, adapter := range adapters {
		statuses[adapter.Platform()] = &branchStatus{}
	}

	queries := s.planQueries(req, category, adapters)
	records := s.runWave(ctx, queries, adapters, latch, statuses, now)

	pool := dedupe(records)
	filtered, stages, applied := s.applyFilters(pool, req.Filters, now)

	fallbackUsed := false
	// The expansion only widens discovery keyword queries; a channel listing
	// stays scoped to that channel no matter how few records survive.
	if category.Niche != nil && strings.TrimSpace(req.ChannelIdentifier) == "" && len(filtered) < s.fallbackMin {
		// One extra wave with generic terms, then one re-filter. Never loops.
		fallbackUsed = true
		metrics.FallbackExpansionsTotal.Inc()
		fallbackQueries := s.planFallbackQueries(req, category.Niche, adapters)
		s.logger.Info("fallback keyword expansion",
			slog.String("category", category.Niche.ID),
			slog.Int("primaryResults", len(filtered)),
			slog.Int("fallbackQueries", len(fallbackQueries)),
		)
		extra := s.runWave(ctx, fallbackQueries, adapters, latch, statuses, now)
		pool = dedupe(append(pool, extra...))
		filtered, stages, applied = s.applyFilters(pool, req.Filters, now)
	}

	for i := range filtered {
		filtered[i].ViralityScore = ViralityScore(filtered[i], now)
	}
	sortRecords(filtered, req.SortBy)

	total := len(filtered)
	if total > req.MaxResults {
		filtered = filtered[:req.MaxResults]
	}
	for i := range filtered {
		filtered[i].TrendingRank = i + 1
	}

	response := domain.TrendingResponse{
		Videos:         filtered,
		Total:          len(filtered),
		Platform:       req.Platform,
		FiltersApplied: applied,
		Stages:         stages,
		Fallback:       fallbackUsed,
		ElapsedMS:      time.Since(startedAt).Milliseconds(),
	}
	s.attachBranchOutcome(&response, adapters, statuses)

	if err := aggregateFailure(req, adapters, statuses); err != nil {
		return domain.TrendingResponse{}, err
	}
	return response, nil
}

// runWave executes one planned query set concurrently. Results are collected
// per planned slot and concatenated in plan order, which keeps the dedup
// outcome deterministic even though network completion order is not.
func (s *Service) runWave(
	ctx context.Context,
	queries []domain.QueryDescriptor,
	adapters []Adapter,
	latch *fatalLatch,
	statuses map[domain.Platform]*branchStatus,
	now time.Time,
) []domain.VideoRecord {
	adapterByPlatform := make(map[domain.Platform]Adapter, len(adapters))
	sems := make(map[domain.Platform]*semaphore.Weighted, len(adapters))
	for _, adapter := range adapters {
		adapterByPlatform[adapter.Platform()] = adapter
		sems[adapter.Platform()] = semaphore.NewWeighted(maxConcurrentPerAdapter)
	}

	type slot struct {
		items []domain.RawItem
	}
	slots := make([]slot, len(queries))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, query := range queries {
		adapter, ok := adapterByPlatform[query.Platform]
		if !ok {
			continue
		}
		metrics.QueriesPlannedTotal.WithLabelValues(string(query.Mode)).Inc()
		wg.Add(1)
		go func(index int, q domain.QueryDescriptor, a Adapter) {
			defer wg.Done()

			if fatalErr := latch.tripped(q.Platform); fatalErr != nil {
				mu.Lock()
				statuses[q.Platform].queries++
				statuses[q.Platform].skipped++
				mu.Unlock()
				return
			}

			sem := sems[q.Platform]
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				statuses[q.Platform].queries++
				statuses[q.Platform].failures++
				statuses[q.Platform].lastErr = err
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			if err := s.waitAdapterRateLimit(ctx, q.Platform); err != nil {
				mu.Lock()
				statuses[q.Platform].queries++
				statuses[q.Platform].failures++
				statuses[q.Platform].lastErr = err
				mu.Unlock()
				return
			}

			// Re-check after waiting: a sibling may have tripped the latch.
			if fatalErr := latch.tripped(q.Platform); fatalErr != nil {
				mu.Lock()
				statuses[q.Platform].queries++
				statuses[q.Platform].skipped++
				mu.Unlock()
				return
			}

			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			callStarted := time.Now()
			items, err := dispatchQuery(callCtx, a, q)
			if err == nil {
				items, err = s.backfillStats(callCtx, a, items)
			}
			latency := time.Since(callStarted)
			s.recordAdapterResult(a.Name(), err, latency, time.Now())

			if err != nil {
				if common.FatalForProvider(err) {
					latch.trip(q.Platform, err)
				}
				s.logger.Warn("query failed",
					slog.String("query", queryLabel(q)),
					slog.String("kind", string(common.KindOf(err))),
					slog.Int64("elapsedMs", latency.Milliseconds()),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				statuses[q.Platform].queries++
				statuses[q.Platform].failures++
				statuses[q.Platform].lastErr = err
				if common.FatalForProvider(err) {
					statuses[q.Platform].fatalErr = err
				}
				mu.Unlock()
				return
			}

			s.logger.Debug("query completed",
				slog.String("query", queryLabel(q)),
				slog.Int("items", len(items)),
				slog.Int64("elapsedMs", latency.Milliseconds()),
			)
			mu.Lock()
			slots[index].items = items
			statuses[q.Platform].queries++
			statuses[q.Platform].count += len(items)
			mu.Unlock()
		}(i, query, adapter)
	}
	wg.Wait()

	var records []domain.VideoRecord
	for i, query := range queries {
		for _, item := range slots[i].items {
			records = append(records, Normalize(item, query.Platform, now))
		}
	}
	return records
}

func dispatchQuery(ctx context.Context, adapter Adapter, q domain.QueryDescriptor) ([]domain.RawItem, error) {
	switch q.Mode {
	case domain.ModeTrending:
		return adapter.FetchTrending(ctx, q.Region, q.CategoryID, q.PageSize)
	case domain.ModeChannel:
		return adapter.FetchChannel(ctx, q.Identifier, q.Kind, q.PageSize)
	default:
		return adapter.FetchByKeyword(ctx, strings.Join(q.Keywords, " "), q.PageSize)
	}
}

// backfillStats fills engagement counts for providers whose search payload
// omits them, chunking ids to the batch cap. A fatal classification aborts the
// branch; a transient one degrades to zeroed metrics instead of losing the
// whole query.
func (s *Service) backfillStats(ctx context.Context, adapter Adapter, items []domain.RawItem) ([]domain.RawItem, error) {
	if !adapter.StatsRequireLookup() {
		return items, nil
	}
	var missing []string
	for _, item := range items {
		if !item.HasStats && item.ID != "" {
			missing = append(missing, item.ID)
		}
	}
	if len(missing) == 0 {
		return items, nil
	}
	for _, chunk := range chunkIDs(missing, MaxStatsBatchSize) {
		stats, err := adapter.FetchStatsBatch(ctx, chunk)
		if err != nil {
			if common.FatalForProvider(err) {
				return nil, err
			}
			s.logger.Warn("stats backfill failed",
				slog.String("adapter", adapter.Name()),
				slog.Int("ids", len(chunk)),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = mergeStats(items, stats)
	}
	return items, nil
}

// attachBranchOutcome fills per-provider statuses, per-platform counts, and a
// warning when exactly one branch of a both-platform request died.
func (s *Service) attachBranchOutcome(
	response *domain.TrendingResponse,
	adapters []Adapter,
	statuses map[domain.Platform]*branchStatus,
) {
	perPlatform := make(map[string]int)
	for _, video := range response.Videos {
		perPlatform[string(video.Platform)]++
	}
	if response.Platform == domain.PlatformBoth {
		response.PerPlatform = perPlatform
	}

	var warnings []string
	for _, adapter := range adapters {
		platform := adapter.Platform()
		status := statuses[platform]
		providerStatus := domain.ProviderStatus{
			Name:    adapter.Name(),
			OK:      !status.dead(),
			Queries: status.queries,
			Count:   status.count,
		}
		if status.lastErr != nil {
			providerStatus.Error = status.lastErr.Error()
		}
		response.Providers = append(response.Providers, providerStatus)

		if status.dead() && len(adapters) > 1 {
			warnings = append(warnings, branchWarning(adapter.Name(), status))
		}
	}
	response.Warning = strings.Join(warnings, "; ")
}

func branchWarning(name string, status *branchStatus) string {
	err := status.fatalErr
	if err == nil {
		err = status.lastErr
	}
	switch common.KindOf(err) {
	case common.KindQuota:
		return fmt.Sprintf("%s quota exceeded, retry after reset; results exclude %s", name, name)
	case common.KindAuth:
		return fmt.Sprintf("%s credential invalid, reconfigure the API key; results exclude %s", name, name)
	default:
		if err != nil {
			return fmt.Sprintf("%s unavailable (%v); results exclude %s", name, err, name)
		}
		return fmt.Sprintf("%s returned no results", name)
	}
}

// aggregateFailure decides fatal-vs-partial: the request fails only when every
// requested branch died (or a channel lookup resolved nowhere).
func aggregateFailure(req domain.TrendingRequest, adapters []Adapter, statuses map[domain.Platform]*branchStatus) error {
	deadCount := 0
	var firstErr error
	notFoundCount := 0
	for _, adapter := range adapters {
		status := statuses[adapter.Platform()]
		if !status.dead() {
			continue
		}
		deadCount++
		err := status.fatalErr
		if err == nil {
			err = status.lastErr
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if common.IsNotFound(err) {
			notFoundCount++
		}
	}
	if deadCount < len(adapters) {
		return nil
	}

	if req.ChannelIdentifier != "" && notFoundCount > 0 {
		return common.NewProviderError("aggregate", common.KindNotFound,
			fmt.Errorf("channel %q not found on any requested platform", req.ChannelIdentifier))
	}
	if firstErr != nil {
		return firstErr
	}
	// Every branch planned queries yet produced nothing and recorded no error:
	// treat as empty, not failed.
	anyFailures := false
	for _, status := range statuses {
		if status.failures > 0 || status.skipped > 0 {
			anyFailures = true
		}
	}
	if !anyFailures {
		return nil
	}
	return errors.New("all requested platforms failed")
}
