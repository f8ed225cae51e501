package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushMetrics delivers the collected run metrics to a Pushgateway under the
// given job name. One-shot tools expose no scrape endpoint, so the push is the
// only export path. Failures are logged, not returned.
func PushMetrics(ctx context.Context, logger *slog.Logger, m *Metrics, url, job string) {
	if url == "" {
		return
	}
	err := push.New(url, job).
		Gatherer(m.Registry()).
		AddContext(ctx)
	if err != nil {
		logger.Warn("pushgateway delivery failed", "url", url, "job", job, "error", err)
		return
	}
	logger.Debug("metrics pushed", "job", job)
}
