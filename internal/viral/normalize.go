package viral

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"reelkit/viralservice/internal/domain"
)

// minDaysSincePublished clamps the age used for per-day rates so a video
// published seconds ago cannot divide by zero (~15 minutes).
const minDaysSincePublished = 0.01

const placeholderTitle = "(untitled)"

// Normalize converts a raw provider item into the canonical record. It never
// fails: missing fields degrade to safe defaults because partial upstream
// payloads are expected, and a zero-metric record is more useful than an
// aborted pipeline. Derived metrics are computed here, once.
func Normalize(item domain.RawItem, platform domain.Platform, now time.Time) domain.VideoRecord {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = placeholderTitle
	}

	publishedAt := item.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}

	days := now.Sub(publishedAt).Hours() / 24
	if days < minDaysSincePublished {
		days = minDaysSincePublished
	}

	views := item.ViewCount
	if views < 0 {
		views = 0
	}
	likes := item.LikeCount
	if likes < 0 {
		likes = 0
	}
	comments := item.CommentCount
	if comments < 0 {
		comments = 0
	}
	duration := item.DurationSeconds
	if duration < 0 {
		duration = 0
	}

	viewsFloor := views
	if viewsFloor < 1 {
		viewsFloor = 1
	}

	return domain.VideoRecord{
		ID:              strings.TrimSpace(item.ID),
		Platform:        platform,
		Title:           title,
		Description:     strings.TrimSpace(item.Description),
		ThumbnailURL:    strings.TrimSpace(item.ThumbnailURL),
		AuthorName:      strings.TrimSpace(item.AuthorName),
		AuthorID:        strings.TrimSpace(item.AuthorID),
		PublishedAt:     publishedAt.UTC(),
		ViewCount:       views,
		LikeCount:       likes,
		CommentCount:    comments,
		DurationSeconds: duration,
		CanonicalURL:    strings.TrimSpace(item.CanonicalURL),

		DaysSincePublished: days,
		LikesPerDay:        float64(likes) / days,
		EngagementRate:     float64(likes+comments) / float64(viewsFloor) * 100,
	}
}

var foldCaser = cases.Fold()

// containsFold reports whether needle occurs in haystack under Unicode case
// folding, so keyword matching works beyond ASCII titles.
func containsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(foldCaser.String(haystack), foldCaser.String(needle))
}

// dedupe collapses records sharing a (platform, id) identity, keeping the
// first occurrence in fetch order. Deterministic for a fixed candidate order.
func dedupe(records []domain.VideoRecord) []domain.VideoRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.VideoRecord, 0, len(records))
	for _, record := range records {
		key := record.DedupKey()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, record)
	}
	return out
}

// mergeStats copies engagement counts from a stats lookup onto search items
// that arrived without them, matching by id.
func mergeStats(items []domain.RawItem, stats []domain.RawItem) []domain.RawItem {
	if len(stats) == 0 {
		return items
	}
	byID := make(map[string]domain.RawItem, len(stats))
	for _, stat := range stats {
		byID[stat.ID] = stat
	}
	for i := range items {
		if items[i].HasStats {
			continue
		}
		stat, ok := byID[items[i].ID]
		if !ok {
			continue
		}
		items[i].ViewCount = stat.ViewCount
		items[i].LikeCount = stat.LikeCount
		items[i].CommentCount = stat.CommentCount
		if stat.DurationSeconds > 0 {
			items[i].DurationSeconds = stat.DurationSeconds
		}
		if items[i].PublishedAt.IsZero() {
			items[i].PublishedAt = stat.PublishedAt
		}
		items[i].HasStats = true
	}
	return items
}

// chunkIDs splits an id list into batches no larger than size.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxStatsBatchSize
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func queryLabel(q domain.QueryDescriptor) string {
	switch q.Mode {
	case domain.ModeTrending:
		return fmt.Sprintf("%s/trending/%s", q.Platform, q.Region)
	case domain.ModeChannel:
		return fmt.Sprintf("%s/channel/%s", q.Platform, q.Identifier)
	default:
		return fmt.Sprintf("%s/keyword/%s", q.Platform, strings.Join(q.Keywords, " "))
	}
}
