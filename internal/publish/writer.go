// Package publish writes parsed storm reports to Kafka in the flat
// CSV-derived JSON format the downstream storm-data collectors consume.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/anthony-illenden/METR-Compilation/internal/config"
	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/observability"
)

// Writer produces storm report messages to the reports topic.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured reports topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// PublishReports serializes and publishes a day's reports in a single
// WriteMessages call. A day with no reports publishes nothing.
func (w *Writer) PublishReports(ctx context.Context, date time.Time, reports []domain.StormReport) error {
	if len(reports) == 0 {
		w.logger.Info("no reports to publish", "date", date.Format("2006-01-02"))
		return nil
	}

	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeReport(date, reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	w.metrics.ReportsPublished.Add(float64(len(msgs)))
	w.logger.Info("reports published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeReport marshals one report into a Kafka message. The key is the
// report's deterministic ID so replayed days land on the same partitions.
func serializeReport(date time.Time, report domain.StormReport) (kafkago.Message, error) {
	data, err := json.Marshal(report.Wire())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(report.Kind)},
			{Key: "report_date", Value: []byte(date.Format("2006-01-02"))},
		},
	}, nil
}
