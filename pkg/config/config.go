package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	LLMProvider     string
	OllamaURL       string
	GoogleApiKey    string
	AnthropicApiKey string
	PlannerModel    string
	WorkerModel     string
	LLMTimeout      time.Duration

	SearxngURL      string
	SearchProviders []string
	SearchTimeout   time.Duration
	FetchTimeout    time.Duration
	MistralApiKey   string

	MaxContextLength     int
	MaxIterations        int
	MinIterations        int
	MaxContentForSummary int
	MaxScrapeLength      int

	EnableTranslation bool
	WorkingLanguage   string

	Port     string
	LogLevel slog.Level
}

// Load reads the configuration from the environment. Call godotenv.Load first
// if a .env file should be honoured.
func Load() *Config {
	return &Config{
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		GoogleApiKey:    getEnv("GOOGLE_API_KEY", ""),
		AnthropicApiKey: getEnv("ANTHROPIC_API_KEY", ""),
		PlannerModel:    getEnv("PLANNER_MODEL", "deepseek-r1:7b"),
		WorkerModel:     getEnv("WORKER_MODEL", "qwen2.5:3b"),
		LLMTimeout:      getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),

		SearxngURL:      strings.TrimRight(getEnv("SEARXNG_URL", "http://localhost:8080"), "/"),
		SearchProviders: getEnvAsList("SEARCH_PROVIDERS", []string{"searxng"}),
		SearchTimeout:   getEnvAsDuration("SEARCH_TIMEOUT", 10*time.Second),
		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
		MistralApiKey:   getEnv("MISTRAL_API_KEY", ""),

		MaxContextLength:     getEnvAsInt("MAX_CONTEXT_LENGTH", 4096),
		MaxIterations:        getEnvAsInt("MAX_ITERATIONS", 5),
		MinIterations:        getEnvAsInt("MIN_ITERATIONS", 2),
		MaxContentForSummary: getEnvAsInt("MAX_CONTENT_FOR_SUMMARY", 8000),
		MaxScrapeLength:      getEnvAsInt("MAX_SCRAPE_LENGTH", 50000),

		EnableTranslation: getEnvAsBool("ENABLE_TRANSLATION", true),
		WorkingLanguage:   strings.ToLower(getEnv("WORKING_LANGUAGE", "en")),

		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case "ollama":
		if c.OllamaURL == "" {
			errs = append(errs, errors.New("OLLAMA_URL must be set for the ollama provider"))
		}
	case "google":
		if c.GoogleApiKey == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY must be set for the google provider"))
		}
	case "anthropic":
		if c.AnthropicApiKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY must be set for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	if c.PlannerModel == "" || c.WorkerModel == "" {
		errs = append(errs, errors.New("PLANNER_MODEL and WORKER_MODEL must not be empty"))
	}
	if len(c.SearchProviders) == 0 {
		errs = append(errs, errors.New("SEARCH_PROVIDERS must name at least one provider"))
	}
	for _, p := range c.SearchProviders {
		if p != "searxng" && p != "arxiv" {
			errs = append(errs, fmt.Errorf("unknown search provider %q", p))
		}
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("MAX_ITERATIONS must be positive, got %d", c.MaxIterations))
	}
	if c.MinIterations < 0 {
		errs = append(errs, fmt.Errorf("MIN_ITERATIONS must not be negative, got %d", c.MinIterations))
	}
	if c.MinIterations > c.MaxIterations {
		errs = append(errs, fmt.Errorf("MIN_ITERATIONS (%d) exceeds MAX_ITERATIONS (%d)", c.MinIterations, c.MaxIterations))
	}
	if c.MaxContentForSummary <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONTENT_FOR_SUMMARY must be positive, got %d", c.MaxContentForSummary))
	}
	if c.MaxScrapeLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_SCRAPE_LENGTH must be positive, got %d", c.MaxScrapeLength))
	}
	if c.MaxContextLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONTEXT_LENGTH must be positive, got %d", c.MaxContextLength))
	}
	if c.WorkingLanguage == "" {
		errs = append(errs, errors.New("WORKING_LANGUAGE must not be empty"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(valueStr)); err != nil {
		return defaultValue
	}
	return level
}
