// Package spc fetches the Storm Prediction Center's climatological storm
// report CSVs.
package spc

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Source is the metrics/logging label for this provider.
const Source = "spc"

// kindSpec maps report kinds to their CSV file suffix and magnitude column.
type kindSpec struct {
	kind   domain.ReportKind
	suffix string
	magCol string
}

var kinds = []kindSpec{
	{kind: domain.ReportTornado, suffix: "torn", magCol: "F_Scale"},
	{kind: domain.ReportHail, suffix: "hail", magCol: "Size"},
	{kind: domain.ReportWind, suffix: "wind", magCol: "Speed"},
}

// Client fetches SPC storm reports.
type Client struct {
	http    *fetch.Client
	baseURL string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates an SPC reports client.
func NewClient(httpClient *fetch.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		http:    httpClient,
		baseURL: "https://www.spc.noaa.gov/climo/reports",
		logger:  logger,
		metrics: metrics,
	}
}

// Reports fetches and parses all three report CSVs (tornado, hail, wind) for
// the given convective day. A failed fetch or a malformed CSV for any kind
// fails the whole call; a header-only CSV is a quiet day, not an error.
func (c *Client) Reports(ctx context.Context, date time.Time) ([]domain.StormReport, error) {
	date = date.UTC()

	var all []domain.StormReport
	for _, spec := range kinds {
		url := fmt.Sprintf("%s/%s_rpts_%s.csv", c.baseURL, date.Format("060102"), spec.suffix)
		body, err := c.http.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%s reports: %w", spec.kind, err)
		}

		reports, skipped, err := parseReportCSV(spec, date, body)
		if err != nil {
			return nil, fmt.Errorf("%s reports: %w", spec.kind, err)
		}

		c.metrics.RowsParsed.WithLabelValues(Source).Add(float64(len(reports)))
		if skipped > 0 {
			c.metrics.RowsSkipped.WithLabelValues(Source, "bad_coordinates").Add(float64(skipped))
			c.logger.Warn("skipped report rows with bad coordinates",
				"kind", spec.kind, "rows", skipped)
		}
		c.logger.Info("fetched storm reports", "kind", spec.kind, "count", len(reports))

		all = append(all, reports...)
	}
	return all, nil
}

// parseReportCSV parses one report CSV by header name. SPC does not quote the
// Comments column, so rows may carry extra fields; the overflow is folded back
// into Comments.
func parseReportCSV(spec kindSpec, date time.Time, body []byte) ([]domain.StormReport, int, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("empty response")
	}

	header := records[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"Time", spec.magCol, "Location", "County", "State", "Lat", "Lon", "Comments"} {
		if _, ok := idx[required]; !ok {
			return nil, 0, fmt.Errorf("missing column %q in header %v", required, header)
		}
	}

	field := func(row []string, name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		if name == "Comments" {
			return strings.Join(row[i:], ",")
		}
		return strings.TrimSpace(row[i])
	}

	var (
		reports []domain.StormReport
		skipped int
	)
	for _, row := range records[1:] {
		raw := domain.RawReportRow{
			Time:      field(row, "Time"),
			Magnitude: field(row, spec.magCol),
			Location:  field(row, "Location"),
			County:    field(row, "County"),
			State:     field(row, "State"),
			Lat:       field(row, "Lat"),
			Lon:       field(row, "Lon"),
			Comments:  field(row, "Comments"),
		}
		report, err := domain.ParseReport(spec.kind, date, raw)
		if err != nil {
			skipped++
			continue
		}
		reports = append(reports, report)
	}
	return reports, skipped, nil
}
