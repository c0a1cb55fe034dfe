package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"newsbrief/internal/domain"
)

const DefaultPrompt = "Identify the language of the following article and summarize it " +
	"in the same language, in maximum of 3 paragraphs, beginning each with a relevant emoji. " +
	"Answer only with the summary. The article is the following:"

type Config struct {
	Port     int        `env:"PORT"      envDefault:"8000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	AI      string `env:"AI"`
	AIModel string `env:"AI_MODEL"`
	AIKey   string `env:"AI_KEY"`
	Prompt  string `env:"PROMPT"`

	Articles    int    `env:"ARTICLES"     envDefault:"5"`
	MinArticles int    `env:"MIN_ARTICLES" envDefault:"1"`
	MaxArticles int    `env:"MAX_ARTICLES" envDefault:"15"`
	Language    string `env:"LANGUAGE"     envDefault:"it"`
	Country     string `env:"COUNTRY"      envDefault:"IT"`

	DocumentCacheTTL time.Duration `env:"DOCUMENT_CACHE_TTL" envDefault:"12h"`
	SummaryCacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL"  envDefault:"12h"`
	ListingCacheTTL  time.Duration `env:"LISTING_CACHE_TTL"  envDefault:"5m"`

	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"   envDefault:"20s"`
	SummaryTimeout time.Duration `env:"SUMMARY_TIMEOUT" envDefault:"60s"`
	StreamWorkers  int           `env:"STREAM_WORKERS"  envDefault:"16"`
	UserAgent      string        `env:"USER_AGENT"      envDefault:"Mozilla/5.0 (compatible; newsbrief/1.0)"`
	HTTPRetryMax   int           `env:"HTTP_RETRY_MAX"  envDefault:"2"`

	CORSOrigins     []string      `env:"CORS_ORIGINS"     envDefault:"*"`
	WarmupSchedule  string        `env:"WARMUP_SCHEDULE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the configuration from the environment once.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = DefaultPrompt
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// SummaryDefaults is the backend used when a request does not name one.
func (c Config) SummaryDefaults() domain.SummaryOptions {
	return domain.SummaryOptions{
		Provider: strings.TrimSpace(c.AI),
		Model:    strings.TrimSpace(c.AIModel),
		APIKey:   strings.TrimSpace(c.AIKey),
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.MinArticles < 1 {
		errs = append(errs, fmt.Errorf("MIN_ARTICLES must be positive (got %d)", c.MinArticles))
	}
	if c.MaxArticles < c.MinArticles {
		errs = append(errs, fmt.Errorf(
			"MAX_ARTICLES must not be below MIN_ARTICLES (got %d < %d)",
			c.MaxArticles, c.MinArticles))
	}
	if c.Articles < c.MinArticles || c.Articles > c.MaxArticles {
		errs = append(errs, fmt.Errorf(
			"ARTICLES must be within [%d, %d] (got %d)",
			c.MinArticles, c.MaxArticles, c.Articles))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"DOCUMENT_CACHE_TTL", c.DocumentCacheTTL},
		{"SUMMARY_CACHE_TTL", c.SummaryCacheTTL},
		{"LISTING_CACHE_TTL", c.ListingCacheTTL},
		{"FETCH_TIMEOUT", c.FetchTimeout},
		{"SUMMARY_TIMEOUT", c.SummaryTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive (got %s)", d.name, d.value))
		}
	}

	if c.StreamWorkers < 1 {
		errs = append(errs, fmt.Errorf("STREAM_WORKERS must be positive (got %d)", c.StreamWorkers))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be within [1, 65535] (got %d)", c.Port))
	}
	if c.Language == "" {
		errs = append(errs, errors.New("LANGUAGE is empty"))
	}

	return errors.Join(errs...)
}
