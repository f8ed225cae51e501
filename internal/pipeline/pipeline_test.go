package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthony-illenden/METR-Compilation/internal/observability"
	"github.com/anthony-illenden/METR-Compilation/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_StagesInOrder(t *testing.T) {
	var ran []string
	stage := func(name string) pipeline.Stage {
		return pipeline.Stage{Name: name, Run: func(context.Context) error {
			ran = append(ran, name)
			return nil
		}}
	}

	p := pipeline.New("test-tool", discardLogger(), observability.NewMetrics())
	err := p.Run(context.Background(), stage("fetch"), stage("compute"), stage("render"))

	require.NoError(t, err)
	assert.Equal(t, []string{"fetch", "compute", "render"}, ran)
}

func TestRun_AbortsOnFirstError(t *testing.T) {
	boom := errors.New("upstream broke")
	var ran []string

	p := pipeline.New("test-tool", discardLogger(), observability.NewMetrics())
	err := p.Run(context.Background(),
		pipeline.Stage{Name: "fetch", Run: func(context.Context) error {
			ran = append(ran, "fetch")
			return nil
		}},
		pipeline.Stage{Name: "compute", Run: func(context.Context) error {
			ran = append(ran, "compute")
			return boom
		}},
		pipeline.Stage{Name: "render", Run: func(context.Context) error {
			ran = append(ran, "render")
			return nil
		}},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "compute:")
	assert.Equal(t, []string{"fetch", "compute"}, ran)
}

func TestRun_StopsBetweenStagesWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string

	p := pipeline.New("test-tool", discardLogger(), observability.NewMetrics())
	err := p.Run(ctx,
		pipeline.Stage{Name: "fetch", Run: func(context.Context) error {
			ran = append(ran, "fetch")
			cancel()
			return nil
		}},
		pipeline.Stage{Name: "render", Run: func(context.Context) error {
			ran = append(ran, "render")
			return nil
		}},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"fetch"}, ran)
}

func TestRun_NoStages(t *testing.T) {
	p := pipeline.New("test-tool", discardLogger(), observability.NewMetrics())
	require.NoError(t, p.Run(context.Background()))
}
