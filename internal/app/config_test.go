package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != ":8091" {
		t.Fatalf("unexpected default addr: %s", cfg.HTTPAddr)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected default timeout: %s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected log defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if len(cfg.DefaultRegions) != 1 || cfg.DefaultRegions[0] != "US" {
		t.Fatalf("unexpected default regions: %#v", cfg.DefaultRegions)
	}
	if cfg.FallbackMinResults != 1 {
		t.Fatalf("unexpected fallback floor: %d", cfg.FallbackMinResults)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DEFAULT_REGIONS", "de, fr ,de")
	t.Setenv("YOUTUBE_API_KEY", "  secret  ")
	t.Setenv("PROVIDER_RATE_LIMIT_RPS", "2.5")

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("addr override ignored: %s", cfg.HTTPAddr)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("timeout override ignored: %s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level must lowercase: %s", cfg.LogLevel)
	}
	if len(cfg.DefaultRegions) != 2 || cfg.DefaultRegions[0] != "DE" || cfg.DefaultRegions[1] != "FR" {
		t.Fatalf("regions must uppercase and dedupe: %#v", cfg.DefaultRegions)
	}
	if cfg.YouTubeAPIKey != "secret" {
		t.Fatalf("api key must be trimmed: %q", cfg.YouTubeAPIKey)
	}
	if cfg.ProviderRateRPS != 2.5 {
		t.Fatalf("rate override ignored: %f", cfg.ProviderRateRPS)
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-3")
	t.Setenv("PROVIDER_RATE_LIMIT_RPS", "zero")
	t.Setenv("FALLBACK_MIN_RESULTS", "abc")

	cfg := LoadConfig()
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("invalid timeout must fall back: %s", cfg.RequestTimeout)
	}
	if cfg.ProviderRateRPS != 8 {
		t.Fatalf("invalid rps must fall back: %f", cfg.ProviderRateRPS)
	}
	if cfg.FallbackMinResults != 1 {
		t.Fatalf("invalid floor must fall back: %d", cfg.FallbackMinResults)
	}
}
