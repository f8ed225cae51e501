// Package pipeline sequences the stages of a one-shot tool run: fetch,
// compute, render, publish. Each tool assembles its stages and calls Run once;
// the process exits when Run returns.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Stage is one named step of a run.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pipeline executes stages in order, aborting on the first failure.
type Pipeline struct {
	tool    string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline for the named tool.
func New(tool string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		tool:    tool,
		logger:  logger.With("tool", tool),
		metrics: metrics,
	}
}

// Run executes the stages in order. The first stage error aborts the run and
// comes back wrapped with the stage name. Cancellation between stages aborts
// with the context's error; a running stage is expected to honor ctx itself.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) error {
	start := time.Now()
	p.logger.Info("run started", "stages", len(stages))

	err := p.runStages(ctx, stages)
	elapsed := time.Since(start)
	p.metrics.RunDuration.WithLabelValues(p.tool).Set(elapsed.Seconds())

	if err != nil {
		p.metrics.RunSuccess.WithLabelValues(p.tool).Set(0)
		p.logger.Error("run failed", "duration", elapsed, "error", err)
		return err
	}
	p.metrics.RunSuccess.WithLabelValues(p.tool).Set(1)
	p.logger.Info("run complete", "duration", elapsed)
	return nil
}

func (p *Pipeline) runStages(ctx context.Context, stages []Stage) error {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		stageStart := time.Now()
		err := stage.Run(ctx)
		stageElapsed := time.Since(stageStart)
		p.metrics.StageDuration.WithLabelValues(p.tool, stage.Name).Observe(stageElapsed.Seconds())

		if err != nil {
			return fmt.Errorf("%s: %w", stage.Name, err)
		}
		p.logger.Info("stage complete", "stage", stage.Name, "duration", stageElapsed)
	}
	return nil
}
