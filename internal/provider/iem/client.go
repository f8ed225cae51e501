// Package iem fetches storm-based warnings from the Iowa Environmental
// Mesonet Cow API, the NWS warning verification service.
package iem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Source is the metrics/logging label for this provider.
const Source = "iem"

// DefaultStatesURL is the Census 2010 20m state outlines GeoJSON used for the
// map background.
const DefaultStatesURL = "https://eric.clst.org/assets/wiki/uploads/Stuff/gz_2010_us_040_00_20m.json"

// Client talks to the IEM Cow API.
type Client struct {
	http    *fetch.Client
	baseURL string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates an IEM client.
func NewClient(httpClient *fetch.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		http:    httpClient,
		baseURL: "https://mesonet.agron.iastate.edu/api/1/cow.json",
		logger:  logger,
		metrics: metrics,
	}
}

// WarningRequest selects the warnings to verify: one forecast office, a time
// window, and the verification thresholds.
type WarningRequest struct {
	WFO       string
	Begin     time.Time
	End       time.Time
	Phenomena []string

	HailSizeIn      float64 // LSR hail size that verifies, inches
	WindMPH         float64 // LSR wind gust that verifies, mph
	LSRBufferKM     float64
	WarningBufferKM float64
}

// DefaultRequest builds the request for one convective day (12Z to 12Z) with
// the usual severe thresholds.
func DefaultRequest(wfo string, day time.Time) WarningRequest {
	day = day.UTC()
	begin := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	return WarningRequest{
		WFO:             wfo,
		Begin:           begin,
		End:             begin.Add(24 * time.Hour),
		Phenomena:       []string{"TO", "SV", "MA", "FF", "DS"},
		HailSizeIn:      1,
		WindMPH:         58,
		LSRBufferKM:     15,
		WarningBufferKM: 1,
	}
}

func (r WarningRequest) encode() string {
	v := url.Values{"phenomena": append([]string(nil), r.Phenomena...)}
	v.Set("wfo", r.WFO)
	v.Set("begints", r.Begin.UTC().Format(time.RFC3339))
	v.Set("endts", r.End.UTC().Format(time.RFC3339))
	v.Set("hailsize", strconv.FormatFloat(r.HailSizeIn, 'f', -1, 64))
	v.Set("wind", strconv.FormatFloat(r.WindMPH, 'f', -1, 64))
	v.Set("lsrbuffer", strconv.FormatFloat(r.LSRBufferKM, 'f', -1, 64))
	v.Set("warningbuffer", strconv.FormatFloat(r.WarningBufferKM, 'f', -1, 64))
	return v.Encode()
}

// Stats summarizes the verification run, straight from the response.
type Stats struct {
	EventsTotal    int `json:"events_total"`
	EventsVerified int `json:"events_verified"`
	ReportsTotal   int `json:"reports_total"`
	WarnedReports  int `json:"warned_reports"`
}

// Warnings fetches the storm-based warnings matching the request.
func (c *Client) Warnings(ctx context.Context, req WarningRequest) ([]domain.Warning, Stats, error) {
	var resp cowResponse
	if err := c.http.GetInto(ctx, c.baseURL+"?"+req.encode(), &resp); err != nil {
		return nil, Stats{}, fmt.Errorf("cow warnings %s: %w", req.WFO, err)
	}

	warnings := make([]domain.Warning, 0, len(resp.Events.Features))
	for _, f := range resp.Events.Features {
		p := f.Properties
		warnings = append(warnings, domain.Warning{
			WFO:          p.WFO,
			Phenomena:    p.Phenomena,
			Significance: p.Significance,
			EventID:      p.EventID,
			Issue:        parseTime(p.Issue),
			Expire:       parseTime(p.Expire),
			Status:       p.Status,
			Forecaster:   p.Fcster,
			AreaSqKm:     p.Parea,
			UGCName:      p.ARUGCName,
			StormReports: p.StormReports,
			Verified:     p.Verify,
			Outline:      f.Geometry.Rings,
		})
	}

	c.metrics.RowsParsed.WithLabelValues(Source).Add(float64(len(warnings)))
	c.logger.Info("fetched warnings",
		"wfo", req.WFO,
		"events", resp.Stats.EventsTotal,
		"verified", resp.Stats.EventsVerified,
		"reports", resp.Stats.ReportsTotal)
	return warnings, resp.Stats, nil
}

// StateOutlines fetches a states GeoJSON and returns the outer ring of every
// polygon, for drawing the map background.
func (c *Client) StateOutlines(ctx context.Context, statesURL string) ([]domain.Ring, error) {
	var fc struct {
		Features []struct {
			Geometry Geometry `json:"geometry"`
		} `json:"features"`
	}
	if err := c.http.GetInto(ctx, statesURL, &fc); err != nil {
		return nil, fmt.Errorf("state outlines: %w", err)
	}

	var rings []domain.Ring
	for _, f := range fc.Features {
		rings = append(rings, f.Geometry.Rings...)
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("state outlines: %w", fetch.ErrNoData)
	}
	return rings, nil
}

type cowResponse struct {
	Events struct {
		Features []cowFeature `json:"features"`
	} `json:"events"`
	Stats Stats `json:"stats"`
}

type cowFeature struct {
	Properties cowProperties `json:"properties"`
	Geometry   Geometry      `json:"geometry"`
}

type cowProperties struct {
	Year            int     `json:"year"`
	WFO             string  `json:"wfo"`
	Phenomena       string  `json:"phenomena"`
	EventID         int     `json:"eventid"`
	Issue           string  `json:"issue"`
	Expire          string  `json:"expire"`
	Statuses        int     `json:"statuses"`
	Fcster          string  `json:"fcster"`
	Significance    string  `json:"significance"`
	Parea           float64 `json:"parea"`
	ARUGCName       string  `json:"ar_ugcname"`
	Status          string  `json:"status"`
	StormReports    int     `json:"stormreports"`
	StormReportsAll int     `json:"stormreports_all"`
	Verify          bool    `json:"verify"`
	Lead0           *int    `json:"lead0"`
	AreaVerify      float64 `json:"areaverify"`
	SharedBorder    float64 `json:"sharedborder"`
}

// Geometry collects the outer ring of each polygon part of a GeoJSON
// geometry. Polygon holes are dropped; warning polygons do not carry
// meaningful ones.
type Geometry struct {
	Rings []domain.Ring
}

// UnmarshalJSON accepts Polygon and MultiPolygon geometries, plus the
// flattened single-ring Polygon the Cow API occasionally emits. Other
// geometry types and null decode to no rings.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var head struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(head.Coordinates, &rings); err != nil {
			var flat [][]float64
			if err2 := json.Unmarshal(head.Coordinates, &flat); err2 != nil {
				return fmt.Errorf("polygon coordinates: %w", err)
			}
			rings = [][][]float64{flat}
		}
		if len(rings) > 0 {
			g.Rings = append(g.Rings, toRing(rings[0]))
		}
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(head.Coordinates, &polys); err != nil {
			return fmt.Errorf("multipolygon coordinates: %w", err)
		}
		for _, poly := range polys {
			if len(poly) > 0 {
				g.Rings = append(g.Rings, toRing(poly[0]))
			}
		}
	}
	return nil
}

func toRing(coords [][]float64) domain.Ring {
	ring := make(domain.Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		ring = append(ring, domain.Point{Lon: c[0], Lat: c[1]})
	}
	return ring
}

// parseTime handles the timestamp shapes the IEM API serves.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
