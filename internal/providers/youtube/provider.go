// Package youtube adapts the YouTube Data API v3 to the aggregation pipeline.
// Trending uses videos.list (stats inline); keyword and channel listings go
// through search.list, whose payload omits statistics, so the adapter reports
// StatsRequireLookup and serves batched videos.list backfills.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/providers/common"
)

const (
	defaultEndpoint  = "https://www.googleapis.com/youtube/v3"
	defaultUserAgent = "viral-video-search/1.0"

	maxPageSize = 50
)

type Config struct {
	APIKey    string
	Endpoint  string
	UserAgent string
	Client    *http.Client
}

type Provider struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	userAgent string
}

func NewProvider(cfg Config) *Provider {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Provider{
		client:    client,
		endpoint:  endpoint,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		userAgent: userAgent,
	}
}

func (p *Provider) Name() string { return "youtube" }

func (p *Provider) Platform() domain.Platform { return domain.PlatformYouTube }

func (p *Provider) Info() domain.AdapterInfo {
	return domain.AdapterInfo{
		Name:    p.Name(),
		Label:   "YouTube",
		Kind:    "official-api",
		Enabled: p.apiKey != "",
	}
}

func (p *Provider) StatsRequireLookup() bool { return true }

type snippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   struct {
		Medium struct {
			URL string `json:"url"`
		} `json:"medium"`
		High struct {
			URL string `json:"url"`
		} `json:"high"`
	} `json:"thumbnails"`
}

type videoItem struct {
	ID         string  `json:"id"`
	Snippet    snippet `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet snippet `json:"snippet"`
}

type searchListResponse struct {
	Items []searchItem `json:"items"`
}

type channelListResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

func (p *Provider) FetchTrending(ctx context.Context, region, categoryID string, limit int) ([]domain.RawItem, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("chart", "mostPopular")
	if region = strings.TrimSpace(region); region != "" {
		params.Set("regionCode", region)
	}
	if categoryID = strings.TrimSpace(categoryID); categoryID != "" {
		params.Set("videoCategoryId", categoryID)
	}
	params.Set("maxResults", fmt.Sprint(clampPageSize(limit)))

	var payload videoListResponse
	if err := p.doGet(ctx, "/videos", params, &payload); err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		raw, ok := p.toRawItem(item)
		if !ok {
			continue
		}
		items = append(items, raw)
	}
	return items, nil
}

func (p *Provider) FetchByKeyword(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", strings.TrimSpace(query))
	params.Set("order", "viewCount")
	params.Set("maxResults", fmt.Sprint(clampPageSize(limit)))

	return p.search(ctx, params)
}

func (p *Provider) FetchChannel(ctx context.Context, identifier, kind string, limit int) ([]domain.RawItem, error) {
	channelID, err := p.resolveChannelID(ctx, identifier, kind)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("maxResults", fmt.Sprint(clampPageSize(limit)))

	return p.search(ctx, params)
}

func (p *Provider) FetchStatsBatch(ctx context.Context, ids []string) ([]domain.RawItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))
	params.Set("maxResults", fmt.Sprint(maxPageSize))

	var payload videoListResponse
	if err := p.doGet(ctx, "/videos", params, &payload); err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		raw, ok := p.toRawItem(item)
		if !ok {
			continue
		}
		items = append(items, raw)
	}
	return items, nil
}

func (p *Provider) search(ctx context.Context, params url.Values) ([]domain.RawItem, error) {
	var payload searchListResponse
	if err := p.doGet(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		id := strings.TrimSpace(item.ID.VideoID)
		if id == "" {
			continue
		}
		items = append(items, domain.RawItem{
			ID:           id,
			Title:        common.CleanText(item.Snippet.Title),
			Description:  common.CleanText(item.Snippet.Description),
			ThumbnailURL: pickThumbnail(item.Snippet),
			AuthorName:   strings.TrimSpace(item.Snippet.ChannelTitle),
			AuthorID:     strings.TrimSpace(item.Snippet.ChannelID),
			PublishedAt:  common.ParseRFC3339(item.Snippet.PublishedAt),
			CanonicalURL: watchURL(id),
			HasStats:     false,
		})
	}
	return items, nil
}

// resolveChannelID maps handle/username identifiers to a channel id via
// channels.list; an "id" identifier passes through untouched.
func (p *Provider) resolveChannelID(ctx context.Context, identifier, kind string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	params := url.Values{}
	params.Set("part", "id")

	switch kind {
	case "handle":
		if !strings.HasPrefix(identifier, "@") {
			identifier = "@" + identifier
		}
		params.Set("forHandle", identifier)
	case "username":
		params.Set("forUsername", identifier)
	default:
		return identifier, nil
	}

	var payload channelListResponse
	if err := p.doGet(ctx, "/channels", params, &payload); err != nil {
		return "", err
	}
	for _, item := range payload.Items {
		if id := strings.TrimSpace(item.ID); id != "" {
			return id, nil
		}
	}
	return "", common.NewProviderError(p.Name(), common.KindNotFound,
		fmt.Errorf("channel %q (%s) did not resolve", identifier, kind))
}

func (p *Provider) doGet(ctx context.Context, path string, params url.Values, out any) error {
	if p.apiKey == "" {
		return common.NewProviderError(p.Name(), common.KindAuth, fmt.Errorf("api key is not configured"))
	}
	params.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return common.WrapTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return common.ClassifyHTTP(p.Name(), resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return common.WrapTransport(p.Name(), err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return common.NewProviderError(p.Name(), common.KindUpstream, fmt.Errorf("unexpected provider payload: %w", err))
	}
	return nil
}

func (p *Provider) toRawItem(item videoItem) (domain.RawItem, bool) {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return domain.RawItem{}, false
	}
	return domain.RawItem{
		ID:              id,
		Title:           common.CleanText(item.Snippet.Title),
		Description:     common.CleanText(item.Snippet.Description),
		ThumbnailURL:    pickThumbnail(item.Snippet),
		AuthorName:      strings.TrimSpace(item.Snippet.ChannelTitle),
		AuthorID:        strings.TrimSpace(item.Snippet.ChannelID),
		PublishedAt:     common.ParseRFC3339(item.Snippet.PublishedAt),
		ViewCount:       common.ParseCount(item.Statistics.ViewCount),
		LikeCount:       common.ParseCount(item.Statistics.LikeCount),
		CommentCount:    common.ParseCount(item.Statistics.CommentCount),
		DurationSeconds: common.ParseISODuration(item.ContentDetails.Duration),
		CanonicalURL:    watchURL(id),
		HasStats:        true,
	}, true
}

func pickThumbnail(s snippet) string {
	if s.Thumbnails.High.URL != "" {
		return s.Thumbnails.High.URL
	}
	return s.Thumbnails.Medium.URL
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

func clampPageSize(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
