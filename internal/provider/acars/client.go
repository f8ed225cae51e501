// Package acars fetches aircraft soundings from the OU SHARP ACARS archive.
package acars

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Source is the metrics/logging label for this provider.
const Source = "acars"

const (
	rawMarker = "%RAW%"
	endMarker = "%END%"
)

// Client fetches and parses archived ACARS soundings.
type Client struct {
	http    *fetch.Client
	baseURL string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates an ACARS archive client.
func NewClient(httpClient *fetch.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		http:    httpClient,
		baseURL: "https://sharp.weather.ou.edu/soundings/acars",
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch retrieves the sounding for a site code and observation time. The
// archive stores one file per observation at
// YYYY/MM/DD/HH/SITE_HHMM.txt; a missing file surfaces fetch.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, station string, at time.Time) (domain.Profile, error) {
	at = at.UTC()
	u := fmt.Sprintf("%s/%04d/%02d/%02d/%02d/%s_%02d%02d.txt",
		c.baseURL, at.Year(), at.Month(), at.Day(), at.Hour(),
		station, at.Hour(), at.Minute())

	body, err := c.http.Get(ctx, u)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return domain.Profile{}, fmt.Errorf("no ACARS sounding for %s at %s: %w",
				station, at.Format("2006-01-02 15:04Z"), err)
		}
		return domain.Profile{}, err
	}

	profile, skipped, err := parseSounding(string(body))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("parse ACARS sounding %s: %w", station, err)
	}
	profile.Station = domain.Station{ID: station}
	profile.ObservedAt = at

	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return domain.Profile{}, err
	}

	c.metrics.RowsParsed.WithLabelValues(Source).Add(float64(profile.Len()))
	if skipped > 0 {
		c.metrics.RowsSkipped.WithLabelValues(Source, "malformed").Add(float64(skipped))
		c.logger.Debug("skipped non-data lines in raw block", "station", station, "lines", skipped)
	}
	return profile, nil
}

// parseSounding extracts the data block between the %RAW% and %END% markers.
// Each data line is six comma-separated numbers: pressure hPa, height m,
// temperature °C, dewpoint °C, wind direction deg, wind speed kt. Lines that
// do not parse as such (titles, separators) are counted and skipped.
func parseSounding(text string) (domain.Profile, int, error) {
	var (
		profile domain.Profile
		inRaw   bool
		sawRaw  bool
		sawEnd  bool
		skipped int
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == rawMarker:
			inRaw = true
			sawRaw = true
			continue
		case line == endMarker:
			inRaw = false
			sawEnd = true
			continue
		}
		if !inRaw || line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 6 {
			skipped++
			continue
		}
		vals := make([]float64, 6)
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			skipped++
			continue
		}

		profile.Pressure = append(profile.Pressure, vals[0])
		profile.Height = append(profile.Height, vals[1])
		profile.Temperature = append(profile.Temperature, vals[2])
		profile.Dewpoint = append(profile.Dewpoint, vals[3])
		profile.WindDir = append(profile.WindDir, vals[4])
		profile.WindSpeed = append(profile.WindSpeed, vals[5])
	}

	if !sawRaw {
		return domain.Profile{}, 0, errors.New("missing %RAW% marker")
	}
	if !sawEnd {
		return domain.Profile{}, 0, errors.New("missing %END% marker")
	}
	if profile.Len() == 0 {
		return domain.Profile{}, 0, fetch.ErrNoData
	}
	return profile, skipped, nil
}
