package viral

import (
	"math"
	"time"

	"reelkit/viralservice/internal/domain"
)

// Weight constants and time thresholds of the virality formula. These are a
// fixed product decision, not tunables: ranked output must be reproducible
// across deployments.
const (
	viewWeight       = 0.4
	likeWeight       = 0.3
	commentWeight    = 0.2
	engagementWeight = 0.1

	freshBoost   = 1.5
	recentBoost  = 1.2
	freshWindow  = 24 * time.Hour
	recentWindow = 168 * time.Hour
)

// ViralityScore computes the composite, time-boosted score for one record.
// Rounded to the nearest integer for display stability.
func ViralityScore(v domain.VideoRecord, now time.Time) int64 {
	base := float64(v.ViewCount)*viewWeight +
		float64(v.LikeCount)*likeWeight +
		float64(v.CommentCount)*commentWeight +
		v.EngagementRate*engagementWeight

	return int64(math.Round(base * timeBoost(now.Sub(v.PublishedAt))))
}

func timeBoost(age time.Duration) float64 {
	switch {
	case age < freshWindow:
		return freshBoost
	case age < recentWindow:
		return recentBoost
	default:
		return 1.0
	}
}
