package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/traffic-insights/internal/config"
	"github.com/couchcryptid/traffic-insights/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes cleaned records to a Kafka topic, one message per row.
// It implements pipeline.TableSink.
type Writer struct {
	writer    messageWriter
	batchSize int
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.KafkaBatchSize,
	}
	return newWriter(w, cfg.KafkaBatchSize, clockwork.NewRealClock(), logger)
}

func newWriter(w messageWriter, batchSize int, clock clockwork.Clock, logger *slog.Logger) *Writer {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Writer{writer: w, batchSize: batchSize, clock: clock, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Write serializes every row and publishes them in batches of at most
// batchSize messages. All messages of one call share a processed_at stamp.
func (w *Writer) Write(ctx context.Context, t domain.Table) error {
	if t.Len() == 0 {
		return nil
	}

	processedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, 0, t.Len())
	for i, rec := range t.Records() {
		msg, err := serializeToMessage(rec, processedAt)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		msgs = append(msgs, msg)
	}

	for start := 0; start < len(msgs); start += w.batchSize {
		end := min(start+w.batchSize, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("publish records %d-%d: %w", start+1, end, err)
		}
		w.logger.Debug("published batch", "from", start+1, "to", end)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one cleaned row into a Kafka message keyed by
// its DayHour, so rows for the same weekday and hour land on one partition.
func serializeToMessage(rec domain.Record, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rec.Map())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize traffic record: %w", err)
	}

	dayHour, _ := rec.Value(domain.ColDayHour)
	timeOfDay, _ := rec.Value(domain.ColTimeOfDay)
	return kafkago.Message{
		Key:   []byte(dayHour),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "day_hour", Value: []byte(dayHour)},
			{Key: "time_of_day", Value: []byte(timeOfDay)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
