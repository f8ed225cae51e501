package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")
	logger.Info("fetch complete", "source", "spc", "rows", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetch complete", entry["msg"])
	assert.Equal(t, "spc", entry["source"])
	assert.Equal(t, float64(42), entry["rows"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")
	logger.Info("render complete", "path", "out.png")

	out := buf.String()
	assert.Contains(t, out, "render complete")
	assert.Contains(t, out, "out.png")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")
	logger.Info("suppressed")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewMetrics_RegistersGatherable(t *testing.T) {
	m := NewMetrics()
	m.HTTPRequests.WithLabelValues("spc", "success").Inc()
	m.StageDuration.WithLabelValues("storm-reports", "fetch").Observe(0.2)
	m.RunSuccess.WithLabelValues("storm-reports").Set(1)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["metr_http_requests_total"])
	assert.True(t, names["metr_stage_duration_seconds"])
	assert.True(t, names["metr_run_success"])
}
