package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const (
	DispatchInline = "inline"
	DispatchNATS   = "nats"

	OracleOpenAI = "openai"
	OracleOllama = "ollama"
	OracleNone   = "none"
)

type Config struct {
	APIPort  string
	LogLevel string

	GoogleAPIKey         string
	GoogleSearchEngineID string
	BingAPIKey           string
	BingSearchEndpoint   string
	DuckDuckGoEnabled    bool
	GoogleMapsAPIKey     string

	OracleProvider string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	OllamaURL      string
	OllamaGenModel string

	MaxRequestsPerMinute     int
	SearchResultsPerProvider int
	ExtractConcurrency       int
	MaxAttempts              int

	SearchTimeoutSeconds int
	PageTimeoutSeconds   int
	EnrichTimeoutSeconds int
	OracleTimeoutSeconds int

	DiscoveryDispatch         string
	NATSURL                   string
	NATSSubject               string
	NATSRequestTimeoutSeconds int
	WorkerMetricsPort         string

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	ResilienceRetryMaxAttempts      int
	ResilienceRetryInitialBackoffMS int
	ResilienceRetryMaxBackoffMS     int
	ResilienceBreakerEnabled        bool
	ResilienceBreakerMinRequests    int
	ResilienceBreakerFailureRatio   float64
	ResilienceBreakerOpenTimeoutMS  int
}

// Load reads .env from the working directory (when present) and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GoogleAPIKey:         credential("GOOGLE_API_KEY"),
		GoogleSearchEngineID: credential("GOOGLE_SEARCH_ENGINE_ID"),
		BingAPIKey:           credential("BING_API_KEY"),
		BingSearchEndpoint:   mustEnv("BING_SEARCH_ENDPOINT", "https://api.bing.microsoft.com/v7.0/search"),
		DuckDuckGoEnabled:    mustEnvBool("DUCKDUCKGO_ENABLED", false),
		GoogleMapsAPIKey:     credential("GOOGLE_MAPS_API_KEY"),

		OracleProvider: strings.ToLower(mustEnv("ORACLE_PROVIDER", OracleOpenAI)),
		OpenAIAPIKey:   credential("OPENAI_API_KEY"),
		OpenAIModel:    mustEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL:  mustEnv("OPENAI_BASE_URL", ""),
		OllamaURL:      mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel: mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),

		MaxRequestsPerMinute:     mustEnvInt("MAX_REQUESTS_PER_MINUTE", 60),
		SearchResultsPerProvider: mustEnvInt("SEARCH_RESULTS_PER_PROVIDER", 10),
		ExtractConcurrency:       mustEnvInt("EXTRACT_CONCURRENCY", 4),
		MaxAttempts:              mustEnvInt("DISCOVERY_MAX_ATTEMPTS", 2),

		SearchTimeoutSeconds: mustEnvInt("SEARCH_TIMEOUT_SECONDS", 10),
		PageTimeoutSeconds:   mustEnvInt("PAGE_TIMEOUT_SECONDS", 8),
		EnrichTimeoutSeconds: mustEnvInt("ENRICH_TIMEOUT_SECONDS", 5),
		OracleTimeoutSeconds: mustEnvInt("ORACLE_TIMEOUT_SECONDS", 8),

		DiscoveryDispatch:         strings.ToLower(mustEnv("DISCOVERY_DISPATCH", DispatchInline)),
		NATSURL:                   mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:               mustEnv("NATS_SUBJECT", "vendors.discover"),
		NATSRequestTimeoutSeconds: mustEnvInt("NATS_REQUEST_TIMEOUT_SECONDS", 60),
		WorkerMetricsPort:         mustEnv("WORKER_METRICS_PORT", "9090"),

		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 16),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		ResilienceRetryMaxAttempts:      mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 2),
		ResilienceRetryInitialBackoffMS: mustEnvInt("RESILIENCE_RETRY_INITIAL_BACKOFF_MS", 200),
		ResilienceRetryMaxBackoffMS:     mustEnvInt("RESILIENCE_RETRY_MAX_BACKOFF_MS", 800),
		ResilienceBreakerEnabled:        mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
		ResilienceBreakerMinRequests:    mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", 10),
		ResilienceBreakerFailureRatio:   mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", 0.5),
		ResilienceBreakerOpenTimeoutMS:  mustEnvInt("RESILIENCE_BREAKER_OPEN_TIMEOUT_MS", 30000),
	}
}

// MissingCredentials lists the search and enrichment keys that are absent.
// The advisory model key is optional and never reported.
func (c Config) MissingCredentials() []string {
	missing := make([]string, 0, 4)
	if c.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if c.GoogleSearchEngineID == "" {
		missing = append(missing, "GOOGLE_SEARCH_ENGINE_ID")
	}
	if c.BingAPIKey == "" {
		missing = append(missing, "BING_API_KEY")
	}
	if c.GoogleMapsAPIKey == "" {
		missing = append(missing, "GOOGLE_MAPS_API_KEY")
	}
	return missing
}

func (c Config) ResilienceConfig() resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:    c.ResilienceRetryMaxAttempts,
		RetryInitialBackoff: time.Duration(c.ResilienceRetryInitialBackoffMS) * time.Millisecond,
		RetryMaxBackoff:     time.Duration(c.ResilienceRetryMaxBackoffMS) * time.Millisecond,
		RetryMultiplier:     2,

		BreakerEnabled:          c.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(c.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     c.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(c.ResilienceBreakerOpenTimeoutMS) * time.Millisecond,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// credential treats template values such as "your_bing_api_key_here" as unset.
func credential(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if isPlaceholder(v) {
		return ""
	}
	return v
}

func isPlaceholder(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "your_") && strings.HasSuffix(lower, "_here")
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
