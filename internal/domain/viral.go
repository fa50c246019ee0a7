package domain

import "time"

type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTikTok  Platform = "tiktok"
	PlatformBoth    Platform = "both"
)

func NormalizePlatform(raw string) Platform {
	switch Platform(raw) {
	case PlatformYouTube:
		return PlatformYouTube
	case PlatformTikTok:
		return PlatformTikTok
	default:
		return PlatformBoth
	}
}

type SortPolicy string

const (
	SortByViews    SortPolicy = "views"
	SortByLikes    SortPolicy = "likes"
	SortByComments SortPolicy = "comments"
	SortByGrowth   SortPolicy = "growth"
	SortByVirality SortPolicy = "virality"
	SortByRecency  SortPolicy = "recency"
)

func NormalizeSortPolicy(raw string) SortPolicy {
	switch SortPolicy(raw) {
	case SortByLikes:
		return SortByLikes
	case SortByComments:
		return SortByComments
	case SortByGrowth:
		return SortByGrowth
	case SortByVirality:
		return SortByVirality
	case SortByRecency:
		return SortByRecency
	default:
		return SortByViews
	}
}

type QueryMode string

const (
	ModeTrending QueryMode = "trending"
	ModeKeyword  QueryMode = "keyword"
	ModeChannel  QueryMode = "channel"
)

// RawItem is what a provider adapter hands back before normalization. Fields a
// provider cannot supply stay at their zero value; Normalize turns every
// RawItem into a usable record regardless.
type RawItem struct {
	ID              string
	Title           string
	Description     string
	ThumbnailURL    string
	AuthorName      string
	AuthorID        string
	PublishedAt     time.Time
	ViewCount       int64
	LikeCount       int64
	CommentCount    int64
	DurationSeconds int
	CanonicalURL    string
	// HasStats is false when the source endpoint omits engagement counts and a
	// stats batch lookup is still pending.
	HasStats bool
}

// VideoRecord is the canonical, platform-agnostic unit of output. Source
// fields are set once at normalization; only score and rank mutate afterwards.
type VideoRecord struct {
	ID              string   `json:"id"`
	Platform        Platform `json:"platform"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	ThumbnailURL    string   `json:"thumbnailUrl,omitempty"`
	AuthorName      string   `json:"authorName,omitempty"`
	AuthorID        string   `json:"authorId,omitempty"`
	PublishedAt     time.Time `json:"publishedAt"`
	ViewCount       int64    `json:"viewCount"`
	LikeCount       int64    `json:"likeCount"`
	CommentCount    int64    `json:"commentCount"`
	DurationSeconds int      `json:"durationSeconds"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty"`

	DaysSincePublished float64 `json:"daysSincePublished"`
	LikesPerDay        float64 `json:"likesPerDay"`
	EngagementRate     float64 `json:"engagementRate"`

	ViralityScore int64 `json:"viralityScore"`
	TrendingRank  int   `json:"trendingRank,omitempty"`
}

// DedupKey identifies a record across queries and regions.
func (v VideoRecord) DedupKey() string {
	return string(v.Platform) + ":" + v.ID
}

// QueryDescriptor is one unit of fan-out work produced by the planner.
type QueryDescriptor struct {
	Platform   Platform
	Mode       QueryMode
	Region     string
	Keywords   []string
	CategoryID string
	Identifier string
	Kind       string
	PageSize   int
}

type FilterCriteria struct {
	MinLikes         int64
	MaxDaysAgo       int
	MinLikesPerDay   float64
	ShortsOnly       bool
	ExcludeSynthetic bool
	Category         *CategoryDefinition
}

type FiltersApplied struct {
	ShortsOnly       bool `json:"shortsOnly"`
	MinLikes         bool `json:"minLikes"`
	MaxDaysAgo       bool `json:"maxDaysAgo"`
	MinLikesPerDay   bool `json:"minLikesPerDay"`
	Category         bool `json:"category"`
	ExcludeSynthetic bool `json:"excludeSynthetic"`
}

// StageCount records a filter stage's before→after candidate counts.
type StageCount struct {
	Stage  string `json:"stage"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

type TrendingRequest struct {
	Platform          Platform
	Regions           []string
	MaxResults        int
	Filters           FilterCriteria
	SortBy            SortPolicy
	CategoryRef       string
	ChannelIdentifier string
	IdentifierKind    string
}

type ProviderStatus struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Queries int    `json:"queries"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

type TrendingResponse struct {
	Videos         []VideoRecord    `json:"videos"`
	Total          int              `json:"total"`
	Platform       Platform         `json:"platform"`
	FiltersApplied FiltersApplied   `json:"filtersApplied"`
	Stages         []StageCount     `json:"stages,omitempty"`
	PerPlatform    map[string]int   `json:"perPlatform,omitempty"`
	Providers      []ProviderStatus `json:"providers,omitempty"`
	Fallback       bool             `json:"fallbackExpanded,omitempty"`
	Warning        string           `json:"warning,omitempty"`
	ElapsedMS      int64            `json:"elapsedMs"`
}

type AdapterInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

type ProviderDiagnostics struct {
	Name                string     `json:"name"`
	Label               string     `json:"label"`
	Kind                string     `json:"kind"`
	Enabled             bool       `json:"enabled"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastError           string     `json:"lastError,omitempty"`
	LastErrorKind       string     `json:"lastErrorKind,omitempty"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *time.Time `json:"lastFailureAt,omitempty"`
	LastLatencyMS       int64      `json:"lastLatencyMs,omitempty"`
	TotalRequests       int64      `json:"totalRequests,omitempty"`
	TotalFailures       int64      `json:"totalFailures,omitempty"`
}
