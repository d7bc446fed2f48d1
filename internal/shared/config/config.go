package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	LLMProvider       string
	GeminiAPIKey      string
	LLMModel          string
	LLMReasoningModel string
	LLMThinkingBudget int
	LLMTimeout        time.Duration
	AnalysisTimeout   time.Duration
	SearchTimeout     time.Duration

	SessionTTL      time.Duration
	DatabaseURL     string
	CVLocalExtract  []string
	MaxUploadBytes  int64
	RateLimitRPS    float64
	RateLimitBurst  int
	ProviderRPS     float64
	ProviderBurst   int
	LogoURLTemplate string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))
	apiKey := os.Getenv("GEMINI_API_KEY")

	if env == "production" && provider == "gemini" && apiKey == "" {
		log.Printf("GEMINI_API_KEY is required in production")
	}

	return Config{
		Port:              getEnv("PORT", "8080"),
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LLMProvider:       provider,
		GeminiAPIKey:      apiKey,
		LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
		LLMReasoningModel: getEnv("LLM_REASONING_MODEL", "gemini-3-pro-preview"),
		LLMThinkingBudget: getEnvInt("LLM_THINKING_BUDGET", 32768),
		LLMTimeout:        getEnvSeconds("LLM_TIMEOUT_SECONDS", 45),
		AnalysisTimeout:   getEnvSeconds("ANALYSIS_TIMEOUT_SECONDS", 120),
		SearchTimeout:     getEnvSeconds("SEARCH_TIMEOUT_SECONDS", 60),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CVLocalExtract:    splitAndTrim(strings.ToLower(getEnv("CV_LOCAL_EXTRACT", ""))),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 20),
		ProviderRPS:       getEnvFloat("PROVIDER_RATE_LIMIT_RPS", 0.5),
		ProviderBurst:     getEnvInt("PROVIDER_RATE_LIMIT_BURST", 5),
		LogoURLTemplate:   getEnv("LOGO_URL_TEMPLATE", "https://logo.clearbit.com/%s"),
	}
}

// IsDevLike reports whether the environment tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("config %s invalid float %q, using %g", key, raw, def)
		return def
	}
	return val
}

func getEnvSeconds(key string, def int) time.Duration {
	secs := getEnvInt(key, def)
	if secs == 0 {
		secs = def
	}
	return time.Duration(secs) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "placeholder", "none", "off":
		return "placeholder"
	default:
		return "gemini"
	}
}
