package viral

import (
	"math"
	"testing"
	"time"

	"reelkit/viralservice/internal/domain"
)

func TestNormalizeDerivedMetrics(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	v := Normalize(domain.RawItem{
		ID:           "abc",
		Title:        "  hello  ",
		ViewCount:    2000,
		LikeCount:    100,
		CommentCount: 10,
		PublishedAt:  now.Add(-48 * time.Hour),
	}, domain.PlatformYouTube, now)

	if v.Title != "hello" {
		t.Fatalf("expected trimmed title, got %q", v.Title)
	}
	if math.Abs(v.DaysSincePublished-2) > 1e-9 {
		t.Fatalf("expected 2 days since publish, got %f", v.DaysSincePublished)
	}
	if math.Abs(v.LikesPerDay-50) > 1e-9 {
		t.Fatalf("expected 50 likes/day, got %f", v.LikesPerDay)
	}
	// (100+10)/2000*100 = 5.5
	if math.Abs(v.EngagementRate-5.5) > 1e-9 {
		t.Fatalf("expected engagement 5.5, got %f", v.EngagementRate)
	}
}

func TestNormalizeDefendsAgainstBadInput(t *testing.T) {
	now := time.Now().UTC()
	v := Normalize(domain.RawItem{
		ID:           "x",
		ViewCount:    -5,
		LikeCount:    -1,
		CommentCount: 40,
	}, domain.PlatformTikTok, now)

	if v.Title != placeholderTitle {
		t.Fatalf("expected placeholder title, got %q", v.Title)
	}
	if v.ViewCount != 0 || v.LikeCount != 0 {
		t.Fatalf("negative counts must clamp to zero: %#v", v)
	}
	if v.PublishedAt.IsZero() {
		t.Fatalf("missing publish time must fall back to now")
	}
	if v.DaysSincePublished != minDaysSincePublished {
		t.Fatalf("age floor expected, got %f", v.DaysSincePublished)
	}
	// Views floor at 1 keeps the rate finite.
	if math.IsInf(v.EngagementRate, 0) || math.IsNaN(v.EngagementRate) {
		t.Fatalf("engagement rate must stay finite, got %f", v.EngagementRate)
	}
	if v.EngagementRate != 4000 {
		t.Fatalf("expected 40/1*100, got %f", v.EngagementRate)
	}
}

func TestDedupeFirstSeenWins(t *testing.T) {
	records := []domain.VideoRecord{
		{ID: "a", Platform: domain.PlatformYouTube, ViewCount: 1},
		{ID: "a", Platform: domain.PlatformTikTok, ViewCount: 2},
		{ID: "a", Platform: domain.PlatformYouTube, ViewCount: 3},
		{ID: "b", Platform: domain.PlatformYouTube, ViewCount: 4},
	}

	out := dedupe(records)
	if len(out) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(out))
	}
	if out[0].ViewCount != 1 {
		t.Fatalf("dedup must keep the first occurrence, got %#v", out[0])
	}
	if out[1].Platform != domain.PlatformTikTok {
		t.Fatalf("same id on another platform must survive: %#v", out)
	}
}

func TestContainsFoldUnicode(t *testing.T) {
	if !containsFold("GROSSE Küche Tour", "große küche") {
		t.Fatalf("expected case-folded unicode match")
	}
	if containsFold("anything", "  ") {
		t.Fatalf("blank needle must not match")
	}
}

func TestMergeStats(t *testing.T) {
	items := []domain.RawItem{
		{ID: "a"},
		{ID: "b", HasStats: true, ViewCount: 7},
		{ID: "c"},
	}
	stats := []domain.RawItem{
		{ID: "a", ViewCount: 100, LikeCount: 10, DurationSeconds: 42, HasStats: true},
	}

	merged := mergeStats(items, stats)
	if !merged[0].HasStats || merged[0].ViewCount != 100 || merged[0].DurationSeconds != 42 {
		t.Fatalf("expected stats merged onto 'a': %#v", merged[0])
	}
	if merged[1].ViewCount != 7 {
		t.Fatalf("items that already carry stats must not be overwritten: %#v", merged[1])
	}
	if merged[2].HasStats {
		t.Fatalf("unmatched items stay without stats: %#v", merged[2])
	}
}

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 120)
	chunks := chunkIDs(ids, 50)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 50 || len(chunks[2]) != 20 {
		t.Fatalf("unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if got := chunkIDs(nil, 50); got != nil {
		t.Fatalf("no ids means no chunks, got %#v", got)
	}
}
