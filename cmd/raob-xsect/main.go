// raob-xsect fetches University of Wyoming radiosonde soundings along an
// ordered station list and renders a vertical cross-section of potential
// temperature and mixing ratio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/config"
	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/fetch"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
	"github.com/anthony-illenden/METR-Compilation/internal/pipeline"
	"github.com/anthony-illenden/METR-Compilation/internal/provider/wyoming"
	"github.com/anthony-illenden/METR-Compilation/internal/render"
	"github.com/anthony-illenden/METR-Compilation/internal/xsect"
)

const tool = "raob-xsect"

func main() {
	stationList := flag.String("stations", "LBF,OAX,DVN,DTX,BUF", "comma-separated station IDs, west to east")
	at := flag.String("at", "2023-06-29T12Z", "sounding time, UTC (2006-01-02T15Z)")
	out := flag.String("o", "raob-xsect.png", "output PNG path")
	flag.Parse()

	obsTime, err := time.Parse("2006-01-02T15Z", *at)
	if err != nil {
		slog.Error("invalid -at time", "error", err)
		os.Exit(1)
	}
	stations := splitStations(*stationList)
	if len(stations) < 2 {
		slog.Error("need at least 2 stations", "stations", *stationList)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	client := wyoming.NewClient(fetch.NewClient(wyoming.Source, cfg.FetchConfig(), logger, metrics), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		profiles []domain.Profile
		section  *xsect.Section
	)
	runErr := pipeline.New(tool, logger, metrics).Run(ctx,
		pipeline.Stage{Name: "fetch soundings", Run: func(ctx context.Context) error {
			profiles = profiles[:0]
			for _, st := range stations {
				prof, err := client.Fetch(ctx, st, obsTime)
				if err != nil {
					return err
				}
				profiles = append(profiles, prof)
			}
			return nil
		}},
		pipeline.Stage{Name: "build section", Run: func(context.Context) error {
			var err error
			section, err = xsect.Build(profiles, xsect.Options{})
			return err
		}},
		pipeline.Stage{Name: "render", Run: func(context.Context) error {
			title := fmt.Sprintf("Cross-Section from %s to %s Potential Temp. (K; red) Mixing Ratio (g/kg; green) %s",
				stations[0], stations[len(stations)-1], obsTime.Format("2006-01-02 15Z"))
			return writePlot(*out, section, title)
		}},
	)

	pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	observability.PushMetrics(pushCtx, logger, metrics, cfg.PushgatewayURL, cfg.PushJobPrefix+"_raob_xsect")

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("wrote cross-section", "path", *out, "stations", len(stations))
}

func splitStations(s string) []string {
	var out []string
	for _, st := range strings.Split(s, ",") {
		if st = strings.TrimSpace(st); st != "" {
			out = append(out, strings.ToUpper(st))
		}
	}
	return out
}

func writePlot(path string, section *xsect.Section, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.CrossSection(section, title, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
