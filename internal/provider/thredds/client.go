// Package thredds resolves THREDDS catalog entries and runs NetCDF Subset
// Service point queries against them.
package thredds

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Source is the metrics/logging label for this provider.
const Source = "thredds"

// Client talks to a THREDDS data server.
type Client struct {
	http    *fetch.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a THREDDS client.
func NewClient(httpClient *fetch.Client, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{http: httpClient, logger: logger, metrics: metrics}
}

// Dataset is a catalog entry resolved to its NetCDF Subset Service endpoint.
type Dataset struct {
	Name string
	NCSS string
}

// LatestDataset fetches a catalog (normally a latest.xml) and resolves its
// first dataset against the catalog's NetcdfSubset service.
func (c *Client) LatestDataset(ctx context.Context, catalogURL string) (Dataset, error) {
	body, err := c.http.Get(ctx, catalogURL)
	if err != nil {
		return Dataset{}, err
	}

	var cat catalogXML
	if err := xml.Unmarshal(body, &cat); err != nil {
		return Dataset{}, fmt.Errorf("decode catalog %s: %w", catalogURL, err)
	}

	svc, ok := findService(cat.Services, "netcdfsubset")
	if !ok {
		return Dataset{}, fmt.Errorf("catalog %s: no NetcdfSubset service", catalogURL)
	}
	ds, ok := firstDataset(cat.Datasets)
	if !ok {
		return Dataset{}, fmt.Errorf("catalog %s: %w", catalogURL, fetch.ErrNoData)
	}

	base, err := url.Parse(catalogURL)
	if err != nil {
		return Dataset{}, fmt.Errorf("parse catalog url: %w", err)
	}
	ref, err := url.Parse(svc.Base)
	if err != nil {
		return Dataset{}, fmt.Errorf("parse service base %q: %w", svc.Base, err)
	}
	endpoint := base.ResolveReference(ref).String()
	endpoint = strings.TrimSuffix(endpoint, "/") + "/" + strings.TrimPrefix(ds.URLPath, "/")

	c.logger.Debug("resolved latest dataset", "name", ds.Name, "ncss", endpoint)
	return Dataset{Name: ds.Name, NCSS: endpoint}, nil
}

// PointQuery describes one NCSS point extraction.
type PointQuery struct {
	Variables []string
	Lat       float64
	Lon       float64
	Start     time.Time
	End       time.Time
}

func (q PointQuery) encode() string {
	v := url.Values{"var": append([]string(nil), q.Variables...)}
	v.Set("latitude", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	v.Set("time_start", q.Start.UTC().Format(time.RFC3339))
	v.Set("time_end", q.End.UTC().Format(time.RFC3339))
	v.Set("accept", "csv")
	return v.Encode()
}

// PointRow is one timestep of an NCSS point response. VertPa is the vertical
// coordinate in Pa, NaN for variables without a vertical dimension.
type PointRow struct {
	Time   time.Time
	Lat    float64
	Lon    float64
	VertPa float64
	Values map[string]float64
}

// FetchPoint runs a point query against an NCSS endpoint and parses the CSV
// response. Non-numeric data cells become NaN rather than failing the run.
func (c *Client) FetchPoint(ctx context.Context, endpoint string, q PointQuery) ([]PointRow, error) {
	body, err := c.http.Get(ctx, endpoint+"?"+q.encode())
	if err != nil {
		return nil, err
	}

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ncss csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("ncss point response: %w", fetch.ErrNoData)
	}

	cols := parseHeader(records[0])
	if cols.time < 0 {
		return nil, fmt.Errorf("ncss csv: no time column in %v", records[0])
	}

	var (
		rows     []PointRow
		badCells int
	)
	for _, rec := range records[1:] {
		ts, err := time.Parse(time.RFC3339, rec[cols.time])
		if err != nil {
			c.metrics.RowsSkipped.WithLabelValues(Source, "bad_time").Inc()
			continue
		}
		row := PointRow{Time: ts, VertPa: math.NaN(), Values: make(map[string]float64, len(cols.vars))}
		if cols.lat >= 0 {
			row.Lat = cell(rec[cols.lat], &badCells)
		}
		if cols.lon >= 0 {
			row.Lon = cell(rec[cols.lon], &badCells)
		}
		if cols.vert >= 0 {
			row.VertPa = cell(rec[cols.vert], &badCells)
		}
		for name, idx := range cols.vars {
			row.Values[name] = cell(rec[idx], &badCells)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("ncss point response: %w", fetch.ErrNoData)
	}
	c.metrics.RowsParsed.WithLabelValues(Source).Add(float64(len(rows)))
	if badCells > 0 {
		c.logger.Warn("non-numeric cells in ncss response", "cells", badCells)
	}
	return rows, nil
}

type headerIndex struct {
	time int
	lat  int
	lon  int
	vert int
	vars map[string]int
}

// parseHeader maps CSV columns by name with any [unit="…"] suffix stripped.
// Columns beyond time/latitude/longitude/vertical are data variables.
func parseHeader(header []string) headerIndex {
	cols := headerIndex{time: -1, lat: -1, lon: -1, vert: -1, vars: make(map[string]int)}
	for i, raw := range header {
		name, _, _ := strings.Cut(strings.TrimSpace(raw), "[")
		switch name {
		case "time", "date":
			cols.time = i
		case "latitude", "lat":
			cols.lat = i
		case "longitude", "lon":
			cols.lon = i
		case "vertCoord", "alt":
			cols.vert = i
		case "station":
			// Grid-as-point responses label the cell; nothing to keep.
		default:
			cols.vars[name] = i
		}
	}
	return cols
}

func cell(s string, bad *int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*bad++
		return math.NaN()
	}
	return v
}

// Catalog XML, decoded by local element name. Services nest under a Compound
// service; datasets nest under collection datasets.
type catalogXML struct {
	XMLName  xml.Name     `xml:"catalog"`
	Services []serviceXML `xml:"service"`
	Datasets []datasetXML `xml:"dataset"`
}

type serviceXML struct {
	Name     string       `xml:"name,attr"`
	Type     string       `xml:"serviceType,attr"`
	Base     string       `xml:"base,attr"`
	Services []serviceXML `xml:"service"`
}

type datasetXML struct {
	Name     string       `xml:"name,attr"`
	URLPath  string       `xml:"urlPath,attr"`
	Datasets []datasetXML `xml:"dataset"`
}

func findService(services []serviceXML, serviceType string) (serviceXML, bool) {
	for _, s := range services {
		if strings.EqualFold(s.Type, serviceType) {
			return s, true
		}
		if nested, ok := findService(s.Services, serviceType); ok {
			return nested, true
		}
	}
	return serviceXML{}, false
}

func firstDataset(datasets []datasetXML) (datasetXML, bool) {
	for _, d := range datasets {
		if d.URLPath != "" {
			return d, true
		}
		if nested, ok := firstDataset(d.Datasets); ok {
			return nested, true
		}
	}
	return datasetXML{}, false
}
