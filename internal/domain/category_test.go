package domain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveCategoryRef(t *testing.T) {
	catalog := NewCategoryCatalog(builtinCategories)

	resolved, err := catalog.ResolveCategoryRef("all")
	if err != nil || resolved.NativeID != "" || resolved.Niche != nil {
		t.Fatalf("'all' must resolve to no category: %#v, %v", resolved, err)
	}
	if resolved, err = catalog.ResolveCategoryRef(""); err != nil || resolved.Niche != nil {
		t.Fatalf("empty ref must resolve to no category: %#v, %v", resolved, err)
	}

	resolved, err = catalog.ResolveCategoryRef("yt:20")
	if err != nil || resolved.NativeID != "20" || resolved.Niche != nil {
		t.Fatalf("unexpected yt resolution: %#v, %v", resolved, err)
	}

	resolved, err = catalog.ResolveCategoryRef("PROD:Gaming")
	if err != nil || resolved.Niche == nil || resolved.Niche.ID != "gaming" {
		t.Fatalf("prod refs are case-insensitive: %#v, %v", resolved, err)
	}

	for _, ref := range []string{"prod:doesnotexist", "yt:", "weird:thing"} {
		if _, err := catalog.ResolveCategoryRef(ref); !errors.Is(err, ErrUnknownCategory) {
			t.Fatalf("%q: expected ErrUnknownCategory, got %v", ref, err)
		}
	}
}

func TestLoadCategoryCatalogBuiltin(t *testing.T) {
	catalog, err := LoadCategoryCatalog("")
	if err != nil {
		t.Fatalf("builtin catalog load: %v", err)
	}
	if len(catalog.List()) == 0 {
		t.Fatalf("builtin catalog must not be empty")
	}
	if _, ok := catalog.Lookup("gaming"); !ok {
		t.Fatalf("builtin catalog missing gaming niche")
	}
}

func TestLoadCategoryCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")
	payload := `[{"id":"Pets","displayName":"Pets","keywords":["funny cats"],"lenient":true}]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog, err := LoadCategoryCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def, ok := catalog.Lookup("pets")
	if !ok || !def.Lenient {
		t.Fatalf("unexpected definition: %#v, %v", def, ok)
	}

	if _, err := LoadCategoryCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file must fail loudly")
	}
}

func TestDedupKey(t *testing.T) {
	v := VideoRecord{ID: "abc", Platform: PlatformTikTok}
	if v.DedupKey() != "tiktok:abc" {
		t.Fatalf("unexpected dedup key: %q", v.DedupKey())
	}
}

func TestNormalizePlatformAndSort(t *testing.T) {
	if NormalizePlatform("youtube") != PlatformYouTube {
		t.Fatalf("youtube must normalize to itself")
	}
	if NormalizePlatform("") != PlatformBoth || NormalizePlatform("junk") != PlatformBoth {
		t.Fatalf("unknown platforms default to both")
	}
	if NormalizeSortPolicy("") != SortByViews || NormalizeSortPolicy("junk") != SortByViews {
		t.Fatalf("unknown sort policies default to views")
	}
	if NormalizeSortPolicy("recency") != SortByRecency {
		t.Fatalf("recency must normalize to itself")
	}
}
