package acars

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

const sampleSounding = `%TITLE%
 YNN 230702/1620

   LEVEL       HGHT       TEMP       DWPT       WDIR       WSPD
-------------------------------------------------------------------
%RAW%
 989.30,    236.29,   24.00,   14.50,  160.00,    5.99
 969.83,    412.17,   22.10,   13.80,  165.00,    9.99
 939.93,    689.96,   20.00,   12.90,  180.00,   14.00
 900.12,   1070.23,   17.50,   11.00,  195.00,   18.01
%END%
`

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpClient := fetch.NewClient(Source, fetch.Config{
		Timeout:        time.Second,
		InitialBackoff: time.Millisecond,
		UserAgent:      "metr-test",
	}, logger, observability.NewMetrics())
	c := NewClient(httpClient, logger, observability.NewMetrics())
	c.baseURL = baseURL
	return c
}

func TestFetch_ParsesSounding(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, sampleSounding)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	at := time.Date(2023, 7, 2, 16, 20, 0, 0, time.UTC)
	p, err := c.Fetch(context.Background(), "YNN", at)
	require.NoError(t, err)

	assert.Equal(t, "/2023/07/02/16/YNN_1620.txt", gotPath)
	assert.Equal(t, "YNN", p.Station.ID)
	assert.Equal(t, at, p.ObservedAt)
	require.Equal(t, 4, p.Len())
	assert.InDelta(t, 989.30, p.Pressure[0], 1e-9)
	assert.InDelta(t, 236.29, p.Height[0], 1e-9)
	assert.InDelta(t, 24.0, p.Temperature[0], 1e-9)
	assert.InDelta(t, 14.5, p.Dewpoint[0], 1e-9)
	assert.InDelta(t, 160.0, p.WindDir[0], 1e-9)
	assert.InDelta(t, 5.99, p.WindSpeed[0], 1e-9)
	assert.InDelta(t, 900.12, p.Pressure[3], 1e-9)
}

func TestFetch_SkipsJunkInsideRawBlock(t *testing.T) {
	const withJunk = `%RAW%
 some stray title line
 989.30,    236.29,   24.00,   14.50,  160.00,    5.99
 969.83,    412.17,   22.10,   13.80,  165.00,    9.99
 bad,row,with,text,in,it
 939.93,    689.96,   20.00,   12.90,  180.00,   14.00
%END%
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, withJunk)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	p, err := c.Fetch(context.Background(), "YNN", time.Date(2023, 7, 2, 16, 20, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
}

func TestFetch_MissingMarkers(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no raw marker", "just text\n", "%RAW%"},
		{"no end marker", "%RAW%\n 989.30, 236.29, 24.00, 14.50, 160.00, 5.99\n", "%END%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := testClient(t, srv.URL)
			_, err := c.Fetch(context.Background(), "YNN", time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetch_ArchiveMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Fetch(context.Background(), "ZZZ", time.Date(2023, 7, 2, 16, 20, 0, 0, time.UTC))
	require.ErrorIs(t, err, fetch.ErrNotFound)
	assert.Contains(t, err.Error(), "no ACARS sounding for ZZZ")
}

func TestFetch_EmptyRawBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "%RAW%\n%END%\n")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Fetch(context.Background(), "YNN", time.Now())
	require.ErrorIs(t, err, fetch.ErrNoData)
}
