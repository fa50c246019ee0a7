package viral

import (
	"log/slog"
	"time"

	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/metrics"
)

// shortFormMaxSeconds is the inclusive duration ceiling for the shorts-only
// criterion.
const shortFormMaxSeconds = 60

type filterStage struct {
	name    string
	enabled bool
	keep    func(domain.VideoRecord) bool
}

// applyFilters runs the conjunctive predicate chain in its fixed order,
// recording before→after counts per active stage. Stages whose criterion sits
// at its disabled default are skipped entirely so the diagnostics reflect
// only what the caller asked for.
func (s *Service) applyFilters(records []domain.VideoRecord, criteria domain.FilterCriteria, now time.Time) ([]domain.VideoRecord, []domain.StageCount, domain.FiltersApplied) {
	applied := domain.FiltersApplied{
		ShortsOnly:       criteria.ShortsOnly,
		MinLikes:         criteria.MinLikes > 0,
		MaxDaysAgo:       criteria.MaxDaysAgo > 0,
		MinLikesPerDay:   criteria.MinLikesPerDay > 0,
		Category:         criteria.Category != nil,
		ExcludeSynthetic: criteria.ExcludeSynthetic,
	}

	// The publish-date floor compares dates truncated to the day, so a video
	// from any moment N days ago still passes maxDaysAgo=N.
	cutoff := now.Truncate(24 * time.Hour).AddDate(0, 0, -criteria.MaxDaysAgo)

	stages := []filterStage{
		{
			name:    "shortsOnly",
			enabled: applied.ShortsOnly,
			keep: func(v domain.VideoRecord) bool {
				return v.DurationSeconds > 0 && v.DurationSeconds <= shortFormMaxSeconds
			},
		},
		{
			name:    "minLikes",
			enabled: applied.MinLikes,
			keep: func(v domain.VideoRecord) bool {
				return v.LikeCount >= criteria.MinLikes
			},
		},
		{
			name:    "maxDaysAgo",
			enabled: applied.MaxDaysAgo,
			keep: func(v domain.VideoRecord) bool {
				return !v.PublishedAt.Truncate(24 * time.Hour).Before(cutoff)
			},
		},
		{
			name:    "minLikesPerDay",
			enabled: applied.MinLikesPerDay,
			keep: func(v domain.VideoRecord) bool {
				return v.LikesPerDay >= criteria.MinLikesPerDay
			},
		},
		{
			name:    "category",
			enabled: applied.Category,
			keep: func(v domain.VideoRecord) bool {
				return matchesCategory(v, criteria.Category)
			},
		},
		{
			name:    "excludeSynthetic",
			enabled: applied.ExcludeSynthetic,
			keep: func(v domain.VideoRecord) bool {
				return !LooksSynthetic(v.Title, v.Description)
			},
		},
	}

	counts := make([]domain.StageCount, 0, len(stages))
	current := records
	for _, stage := range stages {
		if !stage.enabled {
			continue
		}
		before := len(current)
		next := current[:0:0]
		for _, record := range current {
			if stage.keep(record) {
				next = append(next, record)
			}
		}
		current = next
		counts = append(counts, domain.StageCount{Stage: stage.name, Before: before, After: len(current)})
		metrics.FilteredOutTotal.WithLabelValues(stage.name).Add(float64(before - len(current)))
		s.logger.Debug("filter stage",
			slog.String("stage", stage.name),
			slog.Int("before", before),
			slog.Int("after", len(current)),
		)
	}
	return current, counts, applied
}

// matchesCategory implements the strict-then-lenient-then-exclude relevance
// test. Strict: any primary keyword appears (case-folded substring) in
// title+description. Lenient niches additionally accept fallback-term matches;
// in that mode an exclude-keyword hit rejects outright.
func matchesCategory(v domain.VideoRecord, category *domain.CategoryDefinition) bool {
	haystack := v.Title + " " + v.Description

	for _, kw := range category.Keywords {
		if containsFold(haystack, kw) {
			return true
		}
	}
	if !category.Lenient {
		return false
	}

	for _, excluded := range category.ExcludeKeywords {
		if containsFold(haystack, excluded) {
			return false
		}
	}
	for _, fallback := range category.FallbackKeywords {
		if containsFold(haystack, fallback) {
			return true
		}
	}
	return false
}
