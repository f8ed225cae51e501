//go:build live

package wyoming

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// These tests hit the real University of Wyoming archive.
// Run with: go test -tags=live ./internal/provider/wyoming/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	httpClient := fetch.NewClient(Source, fetch.Config{
		Timeout:        30 * time.Second,
		Retries:        2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     4 * time.Second,
		UserAgent:      "METR-Compilation-smoke",
	}, logger, metrics)
	return NewClient(httpClient, logger, metrics)
}

func TestSmoke_Fetch(t *testing.T) {
	c := smokeClient(t)

	// Archived sounding; the upstream record is immutable.
	at := time.Date(2023, 6, 29, 12, 0, 0, 0, time.UTC)
	prof, err := c.Fetch(context.Background(), "LBF", at)
	require.NoError(t, err)

	require.NoError(t, prof.Validate())
	assert.Greater(t, prof.Len(), 30, "expected a deep sounding")
	assert.Greater(t, prof.Pressure[0], 800.0, "surface pressure near station elevation")
	assert.InDelta(t, 41.13, prof.Station.Lat, 0.1)
	assert.InDelta(t, -100.68, prof.Station.Lon, 0.1)
	assert.Equal(t, at, prof.ObservedAt)
}
