//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/lagoon-weather-risk/internal/adapter/kafka"
	"github.com/couchcryptid/lagoon-weather-risk/internal/adapter/sqlite"
	"github.com/couchcryptid/lagoon-weather-risk/internal/config"
	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
	"github.com/couchcryptid/lagoon-weather-risk/internal/observability"
	"github.com/couchcryptid/lagoon-weather-risk/internal/pipeline"
)

const (
	testSourceTopic = "test-forecasts"
	testSinkTopic   = "test-assessments"
)

// assessedMessage holds a deserialized message read from the sink topic.
type assessedMessage struct {
	Assessment domain.Assessment
	Key        string
	Headers    map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("lagoon-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func loadMockForecast(t *testing.T) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "forecast_chioggia_20250610.json"))
	require.NoError(t, err)
	return data
}

// freezeClock pins the assessment clock to 2025-06-10 10:30 Europe/Rome.
func freezeClock(t *testing.T) {
	t.Helper()

	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.June, 10, 10, 30, 0, 0, rome)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newTransformer() pipeline.Transformer {
	engine := domain.NewEngine(domain.DefaultSettings(), domain.FirstChooser{})
	return pipeline.NewTransformer(engine, nil, discardLogger())
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// readAssessed reads a single message from the sink consumer and deserializes it.
func readAssessed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) assessedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var a domain.Assessment
	require.NoError(t, json.Unmarshal(msg.Value, &a), "unmarshal sink message")

	return assessedMessage{
		Assessment: a,
		Key:        string(msg.Key),
		Headers:    headers,
	}
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor) and
// kafka.Writer (loader) round-trip a forecast through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	freezeClock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	payload := loadMockForecast(t)
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte("chioggia"),
		Value:   payload,
		Headers: []kafkago.Header{{Key: pipeline.TargetDateHeader, Value: []byte("2025-06-11")}},
	}))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	batch, err := reader.ExtractBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("chioggia"), raw.Key)
	assert.Equal(t, testSourceTopic, raw.Topic)
	assert.Equal(t, "2025-06-11", raw.Headers[pipeline.TargetDateHeader])
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	a, err := newTransformer().Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.Assessment{a}))

	am := readAssessed(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, a.ID, am.Key)
	assert.Equal(t, "ok", am.Headers["alert_type"])
	assert.Equal(t, "2025-06-11", am.Headers["target_date"])
	_, err = time.Parse(time.RFC3339, am.Headers["assessed_at"])
	assert.NoError(t, err, "assessed_at should be valid RFC3339")
	assert.Equal(t, "Chioggia", am.Assessment.Location)
	assert.Equal(t, 3, am.Assessment.Window.StepHours)
}

// TestPipelineEndToEnd wires Reader, caching transformer, Writer and the SQLite
// archive against real Kafka.
func TestPipelineEndToEnd(t *testing.T) {
	freezeClock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	payload := loadMockForecast(t)
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	dates := []string{"", "2025-06-11", ""}
	msgs := make([]kafkago.Message, 0, len(dates))
	for i, d := range dates {
		msg := kafkago.Message{Key: []byte(fmt.Sprintf("forecast-%d", i)), Value: payload}
		if d != "" {
			msg.Headers = []kafkago.Header{{Key: pipeline.TargetDateHeader, Value: []byte(d)}}
		}
		msgs = append(msgs, msg)
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	archive, err := sqlite.Open(":memory:", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewCachingTransformer(newTransformer(), 10, metrics)
	p := pipeline.New(reader, transformer, pipeline.MultiLoader{writer, archive}, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make([]assessedMessage, 0, len(dates))
	for len(received) < len(dates) {
		received = append(received, readAssessed(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	types := map[string]int{}
	for _, am := range received {
		types[am.Headers["alert_type"]]++
		assert.Len(t, am.Assessment.Hours, len(am.Assessment.Window.Indices))
	}
	assert.Equal(t, 2, types["danger"])
	assert.Equal(t, 1, types["ok"])

	// The replayed forecast for today shares the ID of the first one.
	assert.Equal(t, received[0].Key, received[2].Key)
	assert.Equal(t, 2, transformer.Len(), "one cache entry per target date")

	latest, err := archive.Latest(ctx, "Chioggia")
	require.NoError(t, err)
	assert.Contains(t, []string{received[0].Key, received[1].Key}, latest.ID)
	assert.True(t, p.Ready())
}

// TestPipelineTransformError verifies that an invalid message (poison pill) is
// skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	freezeClock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: loadMockForecast(t)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	am := readAssessed(ctx, t, consumer)
	assert.Equal(t, "Chioggia", am.Assessment.Location)
	assert.Equal(t, "danger", am.Headers["alert_type"])

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
