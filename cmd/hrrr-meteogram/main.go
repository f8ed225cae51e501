// hrrr-meteogram resolves the latest HRRR run from the Unidata THREDDS
// catalog, pulls an NCSS point forecast, and renders a temperature and
// dewpoint meteogram.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/config"
	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/metcalc"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
	"github.com/anthony-illenden/METR-Compilation/internal/pipeline"
	"github.com/anthony-illenden/METR-Compilation/internal/provider/thredds"
	"github.com/anthony-illenden/METR-Compilation/internal/render"
)

const tool = "hrrr-meteogram"

const (
	defaultCatalog = "https://thredds.ucar.edu/thredds/catalog/grib/NCEP/HRRR/CONUS_2p5km/latest.xml"

	varTemperature = "Temperature_isobaric"
	varDewpoint    = "Dewpoint_temperature_isobaric"
)

func main() {
	catalog := flag.String("catalog", defaultCatalog, "THREDDS catalog URL of the latest model run")
	lat := flag.Float64("lat", 42.654588, "point latitude")
	lon := flag.Float64("lon", -83.160449, "point longitude")
	hours := flag.Int("hours", 18, "forecast hours to plot")
	levelPa := flag.Float64("level", 100000, "isobaric level in Pa")
	tz := flag.String("tz", "America/Detroit", "IANA timezone for axis labels")
	out := flag.String("o", "hrrr-meteogram.png", "output PNG path")
	flag.Parse()

	local, err := time.LoadLocation(*tz)
	if err != nil {
		slog.Error("invalid -tz timezone", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	client := thredds.NewClient(fetch.NewClient(thredds.Source, cfg.FetchConfig(), logger, metrics), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		dataset thredds.Dataset
		rows    []thredds.PointRow
		in      render.MeteogramInput
	)
	runErr := pipeline.New(tool, logger, metrics).Run(ctx,
		pipeline.Stage{Name: "resolve run", Run: func(ctx context.Context) error {
			var err error
			dataset, err = client.LatestDataset(ctx, *catalog)
			if err != nil {
				return err
			}
			logger.Info("resolved model run", "dataset", dataset.Name)
			return nil
		}},
		pipeline.Stage{Name: "fetch point", Run: func(ctx context.Context) error {
			start, end := domain.ModelWindow(*hours)
			var err error
			rows, err = client.FetchPoint(ctx, dataset.NCSS, thredds.PointQuery{
				Variables: []string{varTemperature, varDewpoint},
				Lat:       *lat,
				Lon:       *lon,
				Start:     start,
				End:       end,
			})
			return err
		}},
		pipeline.Stage{Name: "build series", Run: func(context.Context) error {
			var err error
			in, err = buildSeries(rows, *levelPa, local)
			return err
		}},
		pipeline.Stage{Name: "render", Run: func(context.Context) error {
			return writePlot(*out, in)
		}},
	)

	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	observability.PushMetrics(pushCtx, logger, metrics, cfg.PushgatewayURL, cfg.PushJobPrefix+"_hrrr_meteogram")

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("wrote meteogram", "path", *out, "timesteps", len(in.Times))
}

// buildSeries keeps the rows on the requested isobaric level and converts
// both temperature variables from Kelvin to Fahrenheit.
func buildSeries(rows []thredds.PointRow, levelPa float64, local *time.Location) (render.MeteogramInput, error) {
	in := render.MeteogramInput{
		Title: "HRRR forecasted Air and Dewpoint Temperatures",
		Local: local,
	}
	for _, row := range rows {
		if math.Abs(row.VertPa-levelPa) > 0.5 {
			continue
		}
		tK, okT := row.Values[varTemperature]
		tdK, okTd := row.Values[varDewpoint]
		if !okT || !okTd || math.IsNaN(tK) || math.IsNaN(tdK) {
			continue
		}
		in.Times = append(in.Times, row.Time)
		in.TempF = append(in.TempF, metcalc.KToF(tK))
		in.DewpointF = append(in.DewpointF, metcalc.KToF(tdK))
	}
	if len(in.Times) == 0 {
		return in, fmt.Errorf("no forecast rows on the %.0f Pa level", levelPa)
	}
	return in, nil
}

func writePlot(path string, in render.MeteogramInput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.Meteogram(in, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
