// storm-reports fetches a day's SPC local storm reports and the matching IEM
// warning polygons for one forecast office, renders a verification map, and
// optionally publishes the parsed reports to Kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/config"
	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
	"github.com/anthony-illenden/METR-Compilation/internal/pipeline"
	"github.com/anthony-illenden/METR-Compilation/internal/provider/iem"
	"github.com/anthony-illenden/METR-Compilation/internal/provider/spc"
	"github.com/anthony-illenden/METR-Compilation/internal/publish"
	"github.com/anthony-illenden/METR-Compilation/internal/render"
)

const tool = "storm-reports"

func main() {
	wfo := flag.String("wfo", "DTX", "issuing forecast office")
	day := flag.String("date", "", "convective day, UTC (2006-01-02; default yesterday)")
	statesURL := flag.String("states", iem.DefaultStatesURL, "state outline GeoJSON URL (empty to skip the basemap)")
	doPublish := flag.Bool("publish", false, "publish parsed reports to Kafka")
	out := flag.String("o", "storm-reports.png", "output PNG path")
	flag.Parse()

	date := domain.DefaultReportDate()
	if *day != "" {
		var err error
		date, err = time.Parse("2006-01-02", *day)
		if err != nil {
			slog.Error("invalid -date", "error", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	spcClient := spc.NewClient(fetch.NewClient(spc.Source, cfg.FetchConfig(), logger, metrics), logger, metrics)
	iemClient := iem.NewClient(fetch.NewClient(iem.Source, cfg.FetchConfig(), logger, metrics), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reports  []domain.StormReport
		warnings []domain.Warning
		states   []domain.Ring
	)
	stages := []pipeline.Stage{
		{Name: "fetch reports", Run: func(ctx context.Context) error {
			var err error
			reports, err = spcClient.Reports(ctx, date)
			return err
		}},
		{Name: "fetch warnings", Run: func(ctx context.Context) error {
			var err error
			warnings, _, err = iemClient.Warnings(ctx, iem.DefaultRequest(*wfo, date))
			return err
		}},
		{Name: "fetch basemap", Run: func(ctx context.Context) error {
			if *statesURL == "" {
				return nil
			}
			var err error
			states, err = iemClient.StateOutlines(ctx, *statesURL)
			if err != nil {
				// The map is still useful without outlines.
				logger.Warn("state outlines unavailable", "error", err)
			}
			return nil
		}},
		{Name: "render", Run: func(context.Context) error {
			title := fmt.Sprintf("NWS %s WFO Warnings and SPC LSR Valid for %d/%d/%d",
				*wfo, int(date.Month()), date.Day(), date.Year())
			return writePlot(*out, render.StormMapInput{
				Title:    title,
				Reports:  reports,
				Warnings: warnings,
				States:   states,
			})
		}},
	}
	var writer *publish.Writer
	if *doPublish {
		writer = publish.NewWriter(cfg, logger, metrics)
		stages = append(stages, pipeline.Stage{Name: "publish", Run: func(ctx context.Context) error {
			return writer.PublishReports(ctx, date, reports)
		}})
	}

	runErr := pipeline.New(tool, logger, metrics).Run(ctx, stages...)

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	observability.PushMetrics(pushCtx, logger, metrics, cfg.PushgatewayURL, cfg.PushJobPrefix+"_storm_reports")

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("wrote storm report map", "path", *out,
		"reports", len(reports), "warnings", len(warnings))
}

func writePlot(path string, in render.StormMapInput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.StormMap(in, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
