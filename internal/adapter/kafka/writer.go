package kafka

import (
	"context"
	"log/slog"
	"sort"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/lagoon-weather-risk/internal/config"
	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
)

// Writer produces assessments to a Kafka topic.
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
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple assessments to the sink Kafka
// topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessments))
	for i := range assessments {
		msg, err := serializeToMessage(assessments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Assessment into a Kafka message keyed by ID.
func serializeToMessage(a domain.Assessment) (kafkago.Message, error) {
	out, err := domain.SerializeAssessment(a)
	if err != nil {
		return kafkago.Message{}, err
	}

	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}
	return kafkago.Message{
		Key:     out.Key,
		Value:   out.Value,
		Headers: headers,
	}, nil
}
