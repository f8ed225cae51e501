// acars-skewt fetches one ACARS aircraft sounding from the SHARP archive and
// renders a skew-T log-p diagram with a hodograph inset.
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
	"github.com/anthony-illenden/METR-Compilation/internal/provider/acars"
	"github.com/anthony-illenden/METR-Compilation/internal/render"
)

const tool = "acars-skewt"

// mixedLayerDepth is how much of the lowest profile, in hPa, is mixed into
// the lifted parcel.
const mixedLayerDepth = 50.0

func main() {
	station := flag.String("station", "YNN", "ACARS site code")
	at := flag.String("at", "2023-07-02T16:20Z", "observation time, UTC (2006-01-02T15:04Z)")
	out := flag.String("o", "acars-skewt.png", "output PNG path")
	flag.Parse()

	obsTime, err := time.Parse("2006-01-02T15:04Z", *at)
	if err != nil {
		slog.Error("invalid -at time", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	client := acars.NewClient(fetch.NewClient(acars.Source, cfg.FetchConfig(), logger, metrics), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		prof domain.Profile
		in   render.SkewTInput
	)
	runErr := pipeline.New(tool, logger, metrics).Run(ctx,
		pipeline.Stage{Name: "fetch", Run: func(ctx context.Context) error {
			var err error
			prof, err = client.Fetch(ctx, *station, obsTime)
			return err
		}},
		pipeline.Stage{Name: "derive", Run: func(context.Context) error {
			in = deriveTraces(prof, logger)
			in.Title = fmt.Sprintf("ACARS Sounding at %s %s", *station, obsTime.Format("2006-01-02 15:04Z"))
			return nil
		}},
		pipeline.Stage{Name: "render", Run: func(context.Context) error {
			return writePlot(*out, in)
		}},
	)

	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	observability.PushMetrics(pushCtx, logger, metrics, cfg.PushgatewayURL, cfg.PushJobPrefix+"_acars_skewt")

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("wrote skew-t", "path", *out, "station", *station)
}

// deriveTraces lifts the mixed-layer parcel and computes the wet-bulb trace.
// A profile too shallow for parcel math still renders as a bare sounding.
func deriveTraces(prof domain.Profile, logger *slog.Logger) render.SkewTInput {
	in := render.SkewTInput{Profile: prof}

	wetbulb := make([]float64, prof.Len())
	for i := range wetbulb {
		wetbulb[i] = metcalc.WetBulb(prof.Pressure[i], prof.Temperature[i], prof.Dewpoint[i])
	}
	in.WetBulb = wetbulb

	_, tMix, tdMix, err := metcalc.MixedParcel(prof.Pressure, prof.Temperature, prof.Dewpoint, mixedLayerDepth)
	if err != nil {
		logger.Warn("mixed parcel unavailable, rendering bare sounding", "error", err)
		return in
	}
	in.Parcel = metcalc.ParcelProfile(prof.Pressure, tMix, tdMix)

	if pLFC, _, ok := metcalc.LFCEL(prof.Pressure, prof.Temperature, prof.Dewpoint, in.Parcel); ok {
		in.PLFC = pLFC
	}
	if cape, cin, err := metcalc.CAPECIN(prof.Pressure, prof.Temperature, prof.Dewpoint, in.Parcel); err == nil {
		logger.Info("mixed-layer instability",
			"cape_j_kg", math.Round(cape), "cin_j_kg", math.Round(cin))
	}
	return in
}

func writePlot(path string, in render.SkewTInput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.SkewT(in, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
