package apihttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/providers/common"
)

type stubService struct {
	response domain.TrendingResponse
	err      error
	lastReq  domain.TrendingRequest
}

func (s *stubService) Trending(ctx context.Context, request domain.TrendingRequest) (domain.TrendingResponse, error) {
	s.lastReq = request
	return s.response, s.err
}

func (s *stubService) Adapters() []domain.AdapterInfo {
	return []domain.AdapterInfo{{Name: "youtube", Label: "YouTube", Kind: "official-api", Enabled: true}}
}

func (s *stubService) ProviderDiagnostics() []domain.ProviderDiagnostics {
	return []domain.ProviderDiagnostics{{Name: "youtube", Enabled: true}}
}

func (s *stubService) Catalog() *domain.CategoryCatalog {
	return domain.NewCategoryCatalog([]domain.CategoryDefinition{
		{ID: "tech", DisplayName: "Tech", Keywords: []string{"gadget"}},
	})
}

func doRequest(t *testing.T, service TrendingService, target string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewServer(service).Handler()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestHandleTrendingParsesParams(t *testing.T) {
	stub := &stubService{response: domain.TrendingResponse{Platform: domain.PlatformYouTube}}

	recorder := doRequest(t, stub,
		"/trending?platform=youtube&region=us,de&maxResults=25&minLikes=100&maxDaysAgo=7&minLikesPerDay=50.5&shortsOnly=true&excludeSynthetic=1&sortBy=virality&category=prod:tech")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	req := stub.lastReq
	if req.Platform != domain.PlatformYouTube {
		t.Fatalf("unexpected platform: %s", req.Platform)
	}
	if len(req.Regions) != 2 || req.Regions[0] != "US" || req.Regions[1] != "DE" {
		t.Fatalf("unexpected regions: %#v", req.Regions)
	}
	if req.MaxResults != 25 {
		t.Fatalf("unexpected maxResults: %d", req.MaxResults)
	}
	if req.Filters.MinLikes != 100 || req.Filters.MaxDaysAgo != 7 || req.Filters.MinLikesPerDay != 50.5 {
		t.Fatalf("unexpected filters: %#v", req.Filters)
	}
	if !req.Filters.ShortsOnly || !req.Filters.ExcludeSynthetic {
		t.Fatalf("boolean filters not parsed: %#v", req.Filters)
	}
	if req.SortBy != domain.SortByVirality {
		t.Fatalf("unexpected sort: %s", req.SortBy)
	}
	if req.CategoryRef != "prod:tech" {
		t.Fatalf("unexpected category: %s", req.CategoryRef)
	}
}

func TestHandleTrendingInvalidParams(t *testing.T) {
	stub := &stubService{}
	cases := []string{
		"/trending?platform=vimeo",
		"/trending?maxResults=0",
		"/trending?maxResults=abc",
		"/trending?minLikes=-1",
		"/trending?maxDaysAgo=x",
		"/trending?identifierKind=email",
		"/trending?identifierKind=handle", // kind without identifier
	}
	for _, target := range cases {
		recorder := doRequest(t, stub, target)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, recorder.Code)
		}
	}
}

func TestHandleTrendingErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: \"prod:nope\"", domain.ErrUnknownCategory), http.StatusBadRequest},
		{common.NewProviderError("youtube", common.KindNotFound, fmt.Errorf("channel missing")), http.StatusNotFound},
		{common.NewProviderError("youtube", common.KindQuota, fmt.Errorf("quotaExceeded")), http.StatusServiceUnavailable},
		{common.NewProviderError("youtube", common.KindAuth, fmt.Errorf("bad key")), http.StatusBadGateway},
		{fmt.Errorf("all requested platforms failed"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		recorder := doRequest(t, &stubService{err: tc.err}, "/trending")
		if recorder.Code != tc.want {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.want, recorder.Code)
		}
		var payload struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid error payload: %v", err)
		}
		if payload.Error.Code == "" {
			t.Fatalf("expected a machine-readable error code, got %s", recorder.Body.String())
		}
	}
}

func TestHandleTrendingMethodNotAllowed(t *testing.T) {
	handler := NewServer(&stubService{}).Handler()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/trending", nil))
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}

func TestHandleCategories(t *testing.T) {
	recorder := doRequest(t, &stubService{}, "/trending/categories")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var payload struct {
		Items []domain.CategoryDefinition `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].ID != "tech" {
		t.Fatalf("unexpected catalog: %#v", payload.Items)
	}
}

func TestHandlePlatformsAndHealth(t *testing.T) {
	recorder := doRequest(t, &stubService{}, "/trending/platforms")
	if recorder.Code != http.StatusOK {
		t.Fatalf("platforms: expected 200, got %d", recorder.Code)
	}

	recorder = doRequest(t, &stubService{}, "/trending/platforms/health")
	if recorder.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", recorder.Code)
	}
	var payload struct {
		Items []domain.ProviderDiagnostics `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Name != "youtube" {
		t.Fatalf("unexpected diagnostics: %#v", payload.Items)
	}
}

func TestHandleHealth(t *testing.T) {
	recorder := doRequest(t, &stubService{}, "/health")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestNormalizeRoute(t *testing.T) {
	cases := map[string]string{
		"/trending":                  "/trending",
		"/trending/categories":       "/trending/categories",
		"/trending/platforms":        "/trending/platforms",
		"/trending/platforms/health": "/trending/platforms",
		"/health":                    "/health",
		"/whatever":                  "/other",
	}
	for path, want := range cases {
		if got := normalizeRoute(path); got != want {
			t.Fatalf("normalizeRoute(%q) = %q, want %q", path, got, want)
		}
	}
}
