package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
)

// Config holds all toolkit settings, populated from environment variables.
// Per-run parameters (stations, dates, output paths) are command-line flags
// on the individual tools, not environment configuration.
type Config struct {
	HTTPTimeout         time.Duration
	HTTPRetries         int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	UserAgent           string

	LogLevel  string
	LogFormat string

	// Pushgateway delivery for batch-job metrics. Empty URL disables the push.
	PushgatewayURL string
	PushJobPrefix  string

	// Kafka report publishing (storm-reports -publish).
	KafkaBrokers      []string
	KafkaReportsTopic string
}

// Load reads configuration from environment variables, applying defaults where
// unset. An optional .env file in the working directory is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	httpTimeout, err := parsePositiveDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	retries, err := parseRetries()
	if err != nil {
		return nil, err
	}

	initialBackoff, err := parsePositiveDuration("HTTP_RETRY_INITIAL_BACKOFF", "500ms")
	if err != nil {
		return nil, err
	}

	maxBackoff, err := parsePositiveDuration("HTTP_RETRY_MAX_BACKOFF", "8s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPTimeout:         httpTimeout,
		HTTPRetries:         retries,
		RetryInitialBackoff: initialBackoff,
		RetryMaxBackoff:     maxBackoff,
		UserAgent:           envOrDefault("USER_AGENT", "METR-Compilation/1.0 (+https://github.com/anthony-illenden/METR-Compilation)"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "text"),
		PushgatewayURL:      os.Getenv("PUSHGATEWAY_URL"),
		PushJobPrefix:       envOrDefault("PUSH_JOB_PREFIX", "metr"),
		KafkaBrokers:        parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportsTopic:   envOrDefault("KAFKA_REPORTS_TOPIC", "raw-weather-reports"),
	}

	if cfg.RetryMaxBackoff < cfg.RetryInitialBackoff {
		return nil, errors.New("HTTP_RETRY_MAX_BACKOFF must be >= HTTP_RETRY_INITIAL_BACKOFF")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaReportsTopic == "" {
		return nil, errors.New("KAFKA_REPORTS_TOPIC is required")
	}

	return cfg, nil
}

// FetchConfig bundles the HTTP settings for a fetch.Client.
func (c *Config) FetchConfig() fetch.Config {
	return fetch.Config{
		Timeout:        c.HTTPTimeout,
		Retries:        c.HTTPRetries,
		InitialBackoff: c.RetryInitialBackoff,
		MaxBackoff:     c.RetryMaxBackoff,
		UserAgent:      c.UserAgent,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseRetries() (int, error) {
	s := envOrDefault("HTTP_RETRIES", "3")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 10 {
		return 0, errors.New("HTTP_RETRIES must be an integer between 0 and 10")
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
