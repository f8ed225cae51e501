// Package wyoming fetches radiosonde soundings from the University of
// Wyoming upper-air archive.
package wyoming

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Source is the metrics/logging label for this provider.
const Source = "wyoming"

// preRe extracts the <PRE> blocks of the archive's TEXT:LIST response: the
// first holds the fixed-width data table, the second the station metadata.
var preRe = regexp.MustCompile(`(?si)<PRE>(.*?)</PRE>`)

// Client fetches and parses Wyoming upper-air soundings.
type Client struct {
	http    *fetch.Client
	baseURL string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a Wyoming archive client.
func NewClient(httpClient *fetch.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		http:    httpClient,
		baseURL: "https://weather.uwyo.edu/cgi-bin/sounding",
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch retrieves the sounding for a station at the given valid time
// (normally 00Z or 12Z).
func (c *Client) Fetch(ctx context.Context, station string, at time.Time) (domain.Profile, error) {
	at = at.UTC()
	ddhh := fmt.Sprintf("%02d%02d", at.Day(), at.Hour())
	params := url.Values{
		"region": {"naconf"},
		"TYPE":   {"TEXT:LIST"},
		"YEAR":   {fmt.Sprintf("%04d", at.Year())},
		"MONTH":  {fmt.Sprintf("%02d", at.Month())},
		"FROM":   {ddhh},
		"TO":     {ddhh},
		"STNM":   {station},
	}

	body, err := c.http.Get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return domain.Profile{}, err
	}

	blocks := preRe.FindAllStringSubmatch(string(body), -1)
	if len(blocks) == 0 {
		return domain.Profile{}, fmt.Errorf("%s %s: %w", station, at.Format("2006-01-02 15Z"), fetch.ErrNoData)
	}

	profile, skipped, err := parseDataBlock(blocks[0][1])
	if err != nil {
		return domain.Profile{}, fmt.Errorf("parse sounding %s: %w", station, err)
	}
	profile.Station.ID = station
	profile.ObservedAt = at

	if len(blocks) > 1 {
		meta, obsTime := parseStationBlock(blocks[1][1])
		meta.ID = firstNonEmpty(meta.ID, station)
		profile.Station = meta
		if !obsTime.IsZero() {
			profile.ObservedAt = obsTime
		}
	}

	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return domain.Profile{}, err
	}

	c.metrics.RowsParsed.WithLabelValues(Source).Add(float64(profile.Len()))
	if skipped > 0 {
		c.metrics.RowsSkipped.WithLabelValues(Source, "incomplete").Add(float64(skipped))
		c.logger.Debug("skipped incomplete sounding rows", "station", station, "rows", skipped)
	}
	return profile, nil
}

// Data table column layout: 11 fixed-width fields of 7 characters.
//
//	PRES   HGHT   TEMP   DWPT   RELH   MIXR   DRCT   SKNT   THTA   THTE   THTV
const colWidth = 7

func column(line string, idx int) (float64, bool) {
	start := idx * colWidth
	if start+colWidth > len(line) {
		return 0, false
	}
	s := strings.TrimSpace(line[start : start+colWidth])
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDataBlock reads the fixed-width observation table. Rows missing any of
// pressure, height, temperature, dewpoint, or wind are skipped; the archive
// leaves those columns blank rather than filling a sentinel.
func parseDataBlock(block string) (domain.Profile, int, error) {
	var (
		profile domain.Profile
		skipped int
	)

	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "---") {
			continue
		}

		pres, okP := column(line, 0)
		if !okP {
			// Header rows ("PRES", "hPa") land here.
			continue
		}
		hght, okH := column(line, 1)
		temp, okT := column(line, 2)
		dwpt, okD := column(line, 3)
		drct, okDir := column(line, 6)
		sknt, okSpd := column(line, 7)
		if !okH || !okT || !okD || !okDir || !okSpd {
			skipped++
			continue
		}

		profile.Pressure = append(profile.Pressure, pres)
		profile.Height = append(profile.Height, hght)
		profile.Temperature = append(profile.Temperature, temp)
		profile.Dewpoint = append(profile.Dewpoint, dwpt)
		profile.WindDir = append(profile.WindDir, drct)
		profile.WindSpeed = append(profile.WindSpeed, sknt)
	}

	if profile.Len() == 0 {
		return domain.Profile{}, 0, fetch.ErrNoData
	}
	return profile, skipped, nil
}

// parseStationBlock reads the "Station information" metadata lines.
func parseStationBlock(block string) (domain.Station, time.Time) {
	var (
		st      domain.Station
		obsTime time.Time
	)
	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Station identifier":
			st.ID = value
		case "Station number":
			st.Name = value
		case "Station latitude":
			st.Lat, _ = strconv.ParseFloat(value, 64)
		case "Station longitude":
			st.Lon, _ = strconv.ParseFloat(value, 64)
		case "Station elevation":
			st.ElevationM, _ = strconv.ParseFloat(value, 64)
		case "Observation time":
			if t, err := time.Parse("060102/1504", value); err == nil {
				obsTime = t.UTC()
			}
		}
	}
	return st, obsTime
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
