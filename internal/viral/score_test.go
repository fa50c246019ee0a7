package viral

import (
	"testing"
	"time"

	"reelkit/viralservice/internal/domain"
)

func TestViralityScoreExactValue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	v := domain.VideoRecord{
		ViewCount:      1_000_000,
		LikeCount:      100_000,
		CommentCount:   5_000,
		EngagementRate: 10.5,
		PublishedAt:    now.Add(-6 * time.Hour),
	}

	// (1000000*0.4 + 100000*0.3 + 5000*0.2 + 10.5*0.1) * 1.5
	// = (400000 + 30000 + 1000 + 1.05) * 1.5 = 646501.575 -> 646502
	if got := ViralityScore(v, now); got != 646502 {
		t.Fatalf("expected 646502, got %d", got)
	}
}

func TestViralityScoreTimeBoostWindows(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	base := domain.VideoRecord{ViewCount: 1000} // base contribution 400

	fresh := base
	fresh.PublishedAt = now.Add(-23 * time.Hour)
	if got := ViralityScore(fresh, now); got != 600 {
		t.Fatalf("expected 1.5x boost under 24h, got %d", got)
	}

	recent := base
	recent.PublishedAt = now.Add(-24 * time.Hour)
	if got := ViralityScore(recent, now); got != 480 {
		t.Fatalf("expected 1.2x boost at exactly 24h, got %d", got)
	}

	weekOld := base
	weekOld.PublishedAt = now.Add(-167 * time.Hour)
	if got := ViralityScore(weekOld, now); got != 480 {
		t.Fatalf("expected 1.2x boost under 168h, got %d", got)
	}

	old := base
	old.PublishedAt = now.Add(-168 * time.Hour)
	if got := ViralityScore(old, now); got != 400 {
		t.Fatalf("expected no boost at exactly 168h, got %d", got)
	}
}
