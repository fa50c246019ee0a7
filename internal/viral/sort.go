package viral

import (
	"sort"
	"strings"

	"reelkit/viralservice/internal/domain"
)

// sortRecords applies the requested total order. Every policy sorts its key
// descending (recency: newest first) with ties broken by id ascending, so the
// same candidate set always yields the same ordering.
func sortRecords(records []domain.VideoRecord, policy domain.SortPolicy) {
	sort.SliceStable(records, func(i, j int) bool {
		left, right := records[i], records[j]
		if cmp := comparePolicy(left, right, policy); cmp != 0 {
			return cmp > 0
		}
		return left.ID < right.ID
	})
}

func comparePolicy(left, right domain.VideoRecord, policy domain.SortPolicy) int {
	switch policy {
	case domain.SortByLikes:
		return compareInt64(left.LikeCount, right.LikeCount)
	case domain.SortByComments:
		return compareInt64(left.CommentCount, right.CommentCount)
	case domain.SortByGrowth:
		return compareFloat64(left.LikesPerDay, right.LikesPerDay)
	case domain.SortByVirality:
		return compareInt64(left.ViralityScore, right.ViralityScore)
	case domain.SortByRecency:
		switch {
		case left.PublishedAt.After(right.PublishedAt):
			return 1
		case left.PublishedAt.Before(right.PublishedAt):
			return -1
		default:
			return 0
		}
	default:
		return compareInt64(left.ViewCount, right.ViewCount)
	}
}

func compareInt64(left, right int64) int {
	switch {
	case left < right:
		return -1
	case left > right:
		return 1
	default:
		return 0
	}
}

func compareFloat64(left, right float64) int {
	switch {
	case left < right:
		return -1
	case left > right:
		return 1
	default:
		return 0
	}
}

func sortAdapterInfos(items []domain.AdapterInfo) {
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
