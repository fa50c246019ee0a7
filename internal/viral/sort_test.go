package viral

import (
	"testing"
	"time"

	"reelkit/viralservice/internal/domain"
)

func TestSortRecordsPolicies(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []domain.VideoRecord{
		{ID: "a", ViewCount: 100, LikeCount: 300, CommentCount: 5, LikesPerDay: 10, ViralityScore: 50, PublishedAt: now.Add(-time.Hour)},
		{ID: "b", ViewCount: 300, LikeCount: 100, CommentCount: 15, LikesPerDay: 30, ViralityScore: 150, PublishedAt: now.Add(-3 * time.Hour)},
		{ID: "c", ViewCount: 200, LikeCount: 200, CommentCount: 10, LikesPerDay: 20, ViralityScore: 100, PublishedAt: now.Add(-2 * time.Hour)},
	}

	cases := []struct {
		policy domain.SortPolicy
		want   []string
	}{
		{domain.SortByViews, []string{"b", "c", "a"}},
		{domain.SortByLikes, []string{"a", "c", "b"}},
		{domain.SortByComments, []string{"b", "c", "a"}},
		{domain.SortByGrowth, []string{"b", "c", "a"}},
		{domain.SortByVirality, []string{"b", "c", "a"}},
		{domain.SortByRecency, []string{"a", "c", "b"}},
	}
	for _, tc := range cases {
		ordered := append([]domain.VideoRecord(nil), records...)
		sortRecords(ordered, tc.policy)
		for i, id := range tc.want {
			if ordered[i].ID != id {
				t.Fatalf("policy %s: expected %v, got %#v", tc.policy, tc.want, ordered)
			}
		}
	}
}

func TestSortRecordsTieBreaksByID(t *testing.T) {
	records := []domain.VideoRecord{
		{ID: "zeta", ViewCount: 100},
		{ID: "alpha", ViewCount: 100},
		{ID: "mid", ViewCount: 100},
	}
	sortRecords(records, domain.SortByViews)

	want := []string{"alpha", "mid", "zeta"}
	for i, id := range want {
		if records[i].ID != id {
			t.Fatalf("expected id ascending on ties, got %#v", records)
		}
	}
}

func TestSortRecordsDeterministicAcrossRuns(t *testing.T) {
	build := func() []domain.VideoRecord {
		return []domain.VideoRecord{
			{ID: "d", ViewCount: 5},
			{ID: "b", ViewCount: 10},
			{ID: "a", ViewCount: 10},
			{ID: "c", ViewCount: 5},
		}
	}
	first := build()
	sortRecords(first, domain.SortByViews)
	for i := 0; i < 10; i++ {
		again := build()
		sortRecords(again, domain.SortByViews)
		for j := range first {
			if first[j].ID != again[j].ID {
				t.Fatalf("sort is not deterministic: %#v vs %#v", first, again)
			}
		}
	}
}
