package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.HTTPRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryInitialBackoff)
	assert.Equal(t, 8*time.Second, cfg.RetryMaxBackoff)
	assert.Contains(t, cfg.UserAgent, "METR-Compilation")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, "metr", cfg.PushJobPrefix)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-weather-reports", cfg.KafkaReportsTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "10s")
	t.Setenv("HTTP_RETRIES", "5")
	t.Setenv("HTTP_RETRY_INITIAL_BACKOFF", "250ms")
	t.Setenv("HTTP_RETRY_MAX_BACKOFF", "4s")
	t.Setenv("USER_AGENT", "test-agent/0.1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PUSHGATEWAY_URL", "http://push:9091")
	t.Setenv("PUSH_JOB_PREFIX", "wx")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REPORTS_TOPIC", "custom-reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.HTTPRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryInitialBackoff)
	assert.Equal(t, 4*time.Second, cfg.RetryMaxBackoff)
	assert.Equal(t, "test-agent/0.1", cfg.UserAgent)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://push:9091", cfg.PushgatewayURL)
	assert.Equal(t, "wx", cfg.PushJobPrefix)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaReportsTopic)
}

func TestLoad_InvalidHTTPTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_NegativeHTTPTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_InvalidRetries(t *testing.T) {
	t.Setenv("HTTP_RETRIES", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_RETRIES")
}

func TestLoad_RetriesTooLarge(t *testing.T) {
	t.Setenv("HTTP_RETRIES", "99")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_RETRIES")
}

func TestLoad_BackoffOrdering(t *testing.T) {
	t.Setenv("HTTP_RETRY_INITIAL_BACKOFF", "5s")
	t.Setenv("HTTP_RETRY_MAX_BACKOFF", "1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_RETRY_MAX_BACKOFF")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "yaml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_EmptyBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
