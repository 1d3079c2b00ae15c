package infra

import (
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"promptstudio/internal/domain"
)

// Config represents proxy configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	Port                  string
	GeminiAPIKey          string
	GeminiBaseURL         string
	TextModel             string
	ImageModel            string
	VideoModel            string
	DownloadHostAllowlist []string
	AllowedOrigins        []string
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	UpstreamTimeout       time.Duration
	RateLimitPerMin       int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A missing API key is an error: the proxy must not serve without it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		GeminiAPIKey:     strings.TrimSpace(getEnv("API_KEY", os.Getenv("GEMINI_API_KEY"))),
		GeminiBaseURL:    strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		TextModel:        getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		ImageModel:       getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		VideoModel:       getEnv("GEMINI_VIDEO_MODEL", "veo-2.0-generate-001"),
		AllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		UpstreamTimeout:  time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 120)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	cfg.DownloadHostAllowlist = buildHostAllowlist(
		cfg.GeminiBaseURL,
		getEnv("DOWNLOAD_HOST_ALLOWLIST", "generativelanguage.googleapis.com"),
	)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildHostAllowlist merges the provider base URL host with the explicit list,
// lowercased, deduplicated and sorted.
func buildHostAllowlist(baseURL, explicit string) []string {
	seen := make(map[string]struct{})
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		seen[strings.ToLower(u.Hostname())] = struct{}{}
	}
	for _, host := range splitCSV(explicit) {
		seen[strings.ToLower(host)] = struct{}{}
	}
	hosts := make([]string, 0, len(seen))
	for host := range seen {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}
