package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/aareguru-monitor/internal/config"
	"github.com/couchcryptid/aareguru-monitor/internal/domain"
)

// Writer publishes display states to a Kafka topic.
// It implements render.Renderer.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured display topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaDisplayTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Render serializes state and writes it keyed by the polled location ID, so
// data and error states of one location land on the same partition.
func (w *Writer) Render(ctx context.Context, locationID string, state domain.DisplayState) error {
	msg, err := serializeToMessage(locationID, state, domain.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write display state: %w", err)
	}
	w.logger.Debug("display state published", "topic", w.writer.Topic, "key", string(msg.Key))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DisplayState into a Kafka message keyed by
// locationID. The display label is not used as key since it is replaced by the
// error marker on failed fetches.
func serializeToMessage(locationID string, state domain.DisplayState, renderedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize display state: %w", err)
	}
	kind := "data"
	if state.IsError() {
		kind = "error"
	}
	return kafkago.Message{
		Key:   []byte(locationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state_kind", Value: []byte(kind)},
			{Key: "rendered_at", Value: []byte(renderedAt.Format(time.RFC3339))},
		},
	}, nil
}
