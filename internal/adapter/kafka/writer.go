package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/pothole-heatmap-service/internal/config"
	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes computed heatmaps to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes all results in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.HeatmapResult) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write heatmaps: %w", err)
	}
	w.logger.Debug("published heatmaps", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a HeatmapResult keyed by its request id.
func serializeToMessage(result domain.HeatmapResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize heatmap result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "request_id", Value: []byte(result.RequestID)},
			{Key: "reference_source", Value: []byte(result.Reference.Source)},
			{Key: "computed_at", Value: []byte(result.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
