package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	RequestTimeout     time.Duration
	LogLevel           string
	LogFormat          string
	UserAgent          string
	YouTubeAPIKey      string
	YouTubeEndpoint    string
	TikTokEndpoint     string
	TikTokDeviceID     string
	DefaultRegions     []string
	ProviderRateRPS    float64
	ProviderRateBurst  int
	FallbackMinResults int
	CategoryConfigPath string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8091"),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UserAgent:          getEnv("USER_AGENT", "viral-video-search/1.0"),
		YouTubeAPIKey:      strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")),
		YouTubeEndpoint:    getEnv("YOUTUBE_ENDPOINT", "https://www.googleapis.com/youtube/v3"),
		TikTokEndpoint:     getEnv("TIKTOK_ENDPOINT", "https://www.tiktok.com/api"),
		TikTokDeviceID:     strings.TrimSpace(os.Getenv("TIKTOK_DEVICE_ID")),
		DefaultRegions:     splitRegions(getEnv("DEFAULT_REGIONS", "US")),
		ProviderRateRPS:    getEnvFloat("PROVIDER_RATE_LIMIT_RPS", 8),
		ProviderRateBurst:  getEnvInt("PROVIDER_RATE_LIMIT_BURST", 16),
		FallbackMinResults: getEnvInt("FALLBACK_MIN_RESULTS", 1),
		CategoryConfigPath: strings.TrimSpace(os.Getenv("CATEGORY_CONFIG_PATH")),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitRegions(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.ToUpper(strings.TrimSpace(part))
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
