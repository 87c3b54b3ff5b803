package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
)

type Config struct {
	OpenRouter OpenRouterConfig
	Gemini     GeminiConfig
	Models     ModelsConfig
	Batch      BatchConfig
	Paths      PathsConfig
	Generation GenerationConfig
	Response   ResponseConfig
	Scraper    ScraperConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Logging    LoggingConfig
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type ModelsConfig struct {
	// ConfigPath overrides the embedded model registry when set.
	ConfigPath string
}

type BatchConfig struct {
	Concurrency int
}

type PathsConfig struct {
	TrendTitles    string
	RawCSV         string
	CSVTextColumn  string
	CSVPosts       string
	GeneratedPosts string
	CleanedPosts   string
	SDGOutput      string
	SDGFailed      string
	EmotionOutput  string
	EmotionFailed  string
	Responses      string
	Distribution   string
}

type GenerationConfig struct {
	PostsPerTrend int
}

type ResponseConfig struct {
	TopKSDGs  int
	UseLLM    bool
	TrendList string
}

type ScraperConfig struct {
	URL      string
	Selector string
	Timeout  time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			BaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Referer: getEnv("OPENROUTER_REFERER", "https://github.com/mahgol/social-computing-project"),
			Title:   getEnv("OPENROUTER_TITLE", "social_computing_project"),
			Timeout: time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EnableFallback: getEnvBool("GEMINI_ENABLE_FALLBACK", false),
		},
		Models: ModelsConfig{
			ConfigPath: getEnv("MODEL_CONFIG_PATH", ""),
		},
		Batch: BatchConfig{
			Concurrency: getEnvInt("BATCH_CONCURRENCY", 5),
		},
		Paths: PathsConfig{
			TrendTitles:    getEnv("TREND_TITLES_PATH", "data/input/trend_titles.json"),
			RawCSV:         getEnv("RAW_CSV_PATH", "data/input/twitter_dataset.csv"),
			CSVTextColumn:  getEnv("CSV_TEXT_COLUMN", "Text"),
			CSVPosts:       getEnv("CSV_POSTS_PATH", "data/input/twitter_dataset.json"),
			GeneratedPosts: getEnv("GENERATED_POSTS_PATH", "data/generated_posts.json"),
			CleanedPosts:   getEnv("CLEANED_POSTS_PATH", "data/cleaned_posts.json"),
			SDGOutput:      getEnv("SDG_OUTPUT_PATH", "data/output/sdg_output.json"),
			SDGFailed:      getEnv("SDG_FAILED_PATH", "data/logs/sdg_failed.json"),
			EmotionOutput:  getEnv("EMOTION_OUTPUT_PATH", "data/output/emotion_output.json"),
			EmotionFailed:  getEnv("EMOTION_FAILED_PATH", "data/logs/emotion_failed.json"),
			Responses:      getEnv("RESPONSES_PATH", "data/output/responses.json"),
			Distribution:   getEnv("DISTRIBUTION_PATH", "data/output/sdg_distribution.json"),
		},
		Generation: GenerationConfig{
			PostsPerTrend: getEnvInt("POSTS_PER_TREND", 10),
		},
		Response: ResponseConfig{
			TopKSDGs:  getEnvInt("TOP_K_SDGS", 1),
			UseLLM:    getEnvBool("USE_LLM", true),
			TrendList: getEnv("RESPONSE_TREND_LIST", ""),
		},
		Scraper: ScraperConfig{
			URL:      getEnv("TRENDS_URL", ""),
			Selector: getEnv("TRENDS_SELECTOR", ".trend-card__list li a"),
			Timeout:  time.Duration(getEnvInt("TRENDS_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("CACHE_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("CACHE_TTL_HOURS", 24)) * time.Hour,
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "sdgpulse"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "sdgpulse"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks settings every command depends on. The API key is checked
// separately by ValidateCredentials so offline stages can run without one.
func (c *Config) Validate() error {
	if c.OpenRouter.BaseURL == "" {
		return fmt.Errorf("OPENROUTER_BASE_URL is required")
	}
	if c.OpenRouter.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1")
	}
	if c.Response.TopKSDGs < 1 {
		return fmt.Errorf("TOP_K_SDGS must be at least 1")
	}
	if c.Generation.PostsPerTrend < 1 {
		return fmt.Errorf("POSTS_PER_TREND must be at least 1")
	}
	return nil
}

// ValidateCredentials must pass before any command talks to the completion service.
func (c *Config) ValidateCredentials() error {
	if c.OpenRouter.APIKey == "" {
		return apperrors.NewConfigError("OPENROUTER_API_KEY is required", "OPENROUTER_API_KEY")
	}
	if c.Gemini.EnableFallback && c.Gemini.APIKey == "" {
		return apperrors.NewConfigError("GEMINI_API_KEY is required when GEMINI_ENABLE_FALLBACK is set", "GEMINI_API_KEY")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// ParseCommaSeparated splits a comma-separated flag or env value, dropping blanks.
func ParseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
