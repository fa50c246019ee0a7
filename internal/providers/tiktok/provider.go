// Package tiktok adapts an unofficial TikTok web API to the aggregation
// pipeline. Every listing payload carries engagement counts inline, so no
// stats backfill is needed. Field names and timestamp conventions follow the
// web client: snake_case keys, Unix-seconds create times, counts as numbers.
package tiktok

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
	defaultEndpoint  = "https://www.tiktok.com/api"
	defaultUserAgent = "viral-video-search/1.0"

	maxPageSize = 30
)

type Config struct {
	Endpoint  string
	DeviceID  string
	UserAgent string
	Client    *http.Client
}

type Provider struct {
	client    *http.Client
	endpoint  string
	deviceID  string
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
		deviceID:  strings.TrimSpace(cfg.DeviceID),
		userAgent: userAgent,
	}
}

func (p *Provider) Name() string { return "tiktok" }

func (p *Provider) Platform() domain.Platform { return domain.PlatformTikTok }

func (p *Provider) Info() domain.AdapterInfo {
	return domain.AdapterInfo{
		Name:    p.Name(),
		Label:   "TikTok",
		Kind:    "web-api",
		Enabled: true,
	}
}

func (p *Provider) StatsRequireLookup() bool { return false }

type apiVideo struct {
	ID     string `json:"id"`
	Desc   string `json:"desc"`
	Create int64  `json:"createTime"`
	Video  struct {
		Duration int    `json:"duration"`
		Cover    string `json:"cover"`
	} `json:"video"`
	Author struct {
		ID       string `json:"id"`
		UniqueID string `json:"uniqueId"`
		Nickname string `json:"nickname"`
	} `json:"author"`
	Stats struct {
		PlayCount    int64 `json:"playCount"`
		DiggCount    int64 `json:"diggCount"`
		CommentCount int64 `json:"commentCount"`
		ShareCount   int64 `json:"shareCount"`
	} `json:"stats"`
}

type listResponse struct {
	StatusCode int `json:"status_code"`
	Items      []struct {
		Item apiVideo `json:"item"`
	} `json:"item_list"`
	Videos []apiVideo `json:"itemList"`
}

func (p *Provider) FetchTrending(ctx context.Context, region, categoryID string, limit int) ([]domain.RawItem, error) {
	params := url.Values{}
	if region = strings.TrimSpace(region); region != "" {
		params.Set("region", region)
	}
	if categoryID = strings.TrimSpace(categoryID); categoryID != "" {
		params.Set("category", categoryID)
	}
	params.Set("count", fmt.Sprint(clampPageSize(limit)))

	return p.list(ctx, "/recommend/item_list/", params)
}

func (p *Provider) FetchByKeyword(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	params := url.Values{}
	params.Set("keyword", strings.TrimSpace(query))
	params.Set("count", fmt.Sprint(clampPageSize(limit)))

	return p.list(ctx, "/search/item/full/", params)
}

func (p *Provider) FetchChannel(ctx context.Context, identifier, kind string, limit int) ([]domain.RawItem, error) {
	identifier = strings.TrimSpace(identifier)
	params := url.Values{}
	// The post listing keys on secUid for ids and uniqueId for handles and
	// usernames, which TikTok treats as the same namespace.
	switch kind {
	case "id":
		params.Set("secUid", identifier)
	default:
		params.Set("uniqueId", strings.TrimPrefix(identifier, "@"))
	}
	params.Set("count", fmt.Sprint(clampPageSize(limit)))

	return p.list(ctx, "/post/item_list/", params)
}

// FetchStatsBatch is unreachable for this adapter: listings carry stats
// inline and StatsRequireLookup reports false.
func (p *Provider) FetchStatsBatch(ctx context.Context, ids []string) ([]domain.RawItem, error) {
	return nil, nil
}

func (p *Provider) list(ctx context.Context, path string, params url.Values) ([]domain.RawItem, error) {
	if p.deviceID != "" {
		params.Set("device_id", p.deviceID)
	}
	params.Set("aid", "1988")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, common.WrapTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, common.ClassifyHTTP(p.Name(), resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, common.WrapTransport(p.Name(), err)
	}

	var parsed listResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, common.NewProviderError(p.Name(), common.KindUpstream, fmt.Errorf("unexpected provider payload: %w", err))
	}
	if parsed.StatusCode != 0 {
		return nil, common.NewProviderError(p.Name(), common.KindUpstream,
			fmt.Errorf("provider status_code %d", parsed.StatusCode))
	}

	videos := parsed.Videos
	for _, wrapped := range parsed.Items {
		videos = append(videos, wrapped.Item)
	}

	items := make([]domain.RawItem, 0, len(videos))
	for _, video := range videos {
		raw, ok := p.toRawItem(video)
		if !ok {
			continue
		}
		items = append(items, raw)
	}
	return items, nil
}

func (p *Provider) toRawItem(video apiVideo) (domain.RawItem, bool) {
	id := strings.TrimSpace(video.ID)
	if id == "" {
		return domain.RawItem{}, false
	}
	handle := strings.TrimSpace(video.Author.UniqueID)
	authorName := strings.TrimSpace(video.Author.Nickname)
	if authorName == "" {
		authorName = handle
	}

	canonical := ""
	if handle != "" {
		canonical = "https://www.tiktok.com/@" + url.PathEscape(handle) + "/video/" + url.PathEscape(id)
	}

	return domain.RawItem{
		ID:              id,
		Title:           common.CleanText(video.Desc),
		ThumbnailURL:    strings.TrimSpace(video.Video.Cover),
		AuthorName:      authorName,
		AuthorID:        strings.TrimSpace(video.Author.ID),
		PublishedAt:     common.ParseUnix(video.Create),
		ViewCount:       nonNegative(video.Stats.PlayCount),
		LikeCount:       nonNegative(video.Stats.DiggCount),
		CommentCount:    nonNegative(video.Stats.CommentCount),
		DurationSeconds: video.Video.Duration,
		CanonicalURL:    canonical,
		HasStats:        true,
	}, true
}

func nonNegative(value int64) int64 {
	if value < 0 {
		return 0
	}
	return value
}

func clampPageSize(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
