// Package config loads process settings from the environment, an optional .env
// file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string   `yaml:"addr" validate:"required"`
	BasePath    string   `yaml:"base_path"`
	LogLevel    string   `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string   `yaml:"log_format" validate:"oneof=text json"`
	CORSOrigins []string `yaml:"cors_origins"`
	MetricsAddr string   `yaml:"metrics_addr"`
	Banner      bool     `yaml:"banner"`

	ScoringURL     string        `yaml:"scoring_url" validate:"required,url"`
	ScoringPath    string        `yaml:"scoring_path"`
	ScoringTimeout time.Duration `yaml:"scoring_timeout" validate:"gte=0"`
	Context        string        `yaml:"context"`
	Question       string        `yaml:"question"`

	TrialIdleTTL time.Duration `yaml:"trial_idle_ttl" validate:"gte=0"`
	MaxInputSize int           `yaml:"max_input_size" validate:"gte=0"`

	WebhookURL string `yaml:"webhook_url" validate:"omitempty,url"`

	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"redis_password"`
	RedisDB        int           `yaml:"redis_db" validate:"gte=0"`
	RedisPrefix    string        `yaml:"redis_prefix"`
	RedisResultTTL time.Duration `yaml:"redis_result_ttl" validate:"gte=0"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		LogLevel:       "info",
		LogFormat:      "text",
		CORSOrigins:    []string{"*"},
		Banner:         true,
		ScoringURL:     "http://localhost:8000",
		ScoringPath:    "/score/summary",
		ScoringTimeout: 60 * time.Second,
		TrialIdleTTL:   2 * time.Hour,
		MaxInputSize:   4096,
		RedisPrefix:    "summarize:",
		KafkaTopic:     "summarize.trials.finished",
	}
}

// Load reads .env (when present), then the YAML file at path (when not empty),
// then the environment. Later sources win.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := cfg.FromEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// FromEnv overrides the fields whose environment variable is set.
func (c Config) FromEnv() (Config, error) {
	var errs []error

	c.Addr = envOr("SUMMARIZE_ADDR", c.Addr)
	c.BasePath = envOr("SUMMARIZE_BASE_PATH", c.BasePath)
	c.LogLevel = strings.ToLower(envOr("LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(envOr("LOG_FORMAT", c.LogFormat))
	c.CORSOrigins = csvOr("CORS_ORIGINS", c.CORSOrigins)
	c.MetricsAddr = envOr("METRICS_ADDR", c.MetricsAddr)
	c.Banner = envBool("SUMMARIZE_BANNER", c.Banner)

	c.ScoringURL = envOr("SUMMARY_API_URL", c.ScoringURL)
	c.ScoringPath = envOr("SUMMARY_API_PATH", c.ScoringPath)
	c.ScoringTimeout = envDuration("SUMMARY_API_TIMEOUT", c.ScoringTimeout, &errs)
	c.Context = envOr("SUMMARY_CONTEXT", c.Context)
	c.Question = envOr("SUMMARY_QUESTION", c.Question)

	c.TrialIdleTTL = envDuration("TRIAL_IDLE_TTL", c.TrialIdleTTL, &errs)
	c.MaxInputSize = envInt("SUMMARIZE_MAX_INPUT_SIZE", c.MaxInputSize, &errs)

	c.WebhookURL = envOr("WEBHOOK_URL", c.WebhookURL)

	c.RedisAddr = envOr("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envOr("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = envInt("REDIS_DB", c.RedisDB, &errs)
	c.RedisPrefix = envOr("REDIS_PREFIX", c.RedisPrefix)
	c.RedisResultTTL = envDuration("REDIS_RESULT_TTL", c.RedisResultTTL, &errs)

	c.KafkaBrokers = csvOr("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = envOr("KAFKA_TOPIC", c.KafkaTopic)

	return c, errors.Join(errs...)
}

// Validate checks the settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// ScoringPrompt returns the process-wide context/question pair.
func (c Config) ScoringPrompt() domain.ScoringPrompt {
	return domain.ScoringPrompt{Context: c.Context, Question: c.Question}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func envDuration(k string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}

func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
