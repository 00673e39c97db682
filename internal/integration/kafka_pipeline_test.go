//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/pothole-heatmap-service/internal/adapter/kafka"
	"github.com/couchcryptid/pothole-heatmap-service/internal/config"
	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	"github.com/couchcryptid/pothole-heatmap-service/internal/observability"
	"github.com/couchcryptid/pothole-heatmap-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-heatmap-requests"
	testSinkTopic   = "test-pothole-heatmaps"
)

var newDelhi = domain.ReferenceLocation{Lat: 28.6139, Lng: 77.2090, PlaceName: "New Delhi", Source: domain.SourceFallback}

// heatmapMessage holds a deserialized message read from the sink topic.
type heatmapMessage struct {
	Result  domain.HeatmapResult
	Key     string
	Headers map[string]string
}

// readHeatmap reads a single message from the sink consumer and deserializes it.
func readHeatmap(ctx context.Context, t *testing.T, consumer *kafkago.Reader) heatmapMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var result domain.HeatmapResult
	require.NoError(t, json.Unmarshal(msg.Value, &result), "unmarshal sink message")

	return heatmapMessage{
		Result:  result,
		Key:     string(msg.Key),
		Headers: headers,
	}
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

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
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

func requestProducer(t *testing.T, broker string) *kafkago.Writer {
	t.Helper()
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })
	return producer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a request through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	payload := []byte(`{"lat":28.6139,"lng":77.2090,"radius_km":1}`)
	require.NoError(t, requestProducer(t, broker).WriteMessages(ctx, kafkago.Message{
		Key:   []byte("req-1"),
		Value: payload,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(loadMockData(t), nil, newDelhi, discardLogger(), observability.NewMetricsForTesting())
	result, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.HeatmapResult{result}))

	hm := readHeatmap(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "req-1", hm.Key)
	assert.Equal(t, "req-1", hm.Headers["request_id"])
	assert.Equal(t, domain.SourceRequest, hm.Headers["reference_source"])
	_, err = time.Parse(time.RFC3339, hm.Headers["computed_at"])
	assert.NoError(t, err, "computed_at should be valid RFC3339")

	assert.Equal(t, "req-1", hm.Result.RequestID)
	assert.Equal(t, 10, hm.Result.Heatmap.Matched)
	assert.Equal(t, domain.Summary{Total: 10, High: 4, Medium: 3, Low: 3}, hm.Result.Heatmap.Summary)
	assert.Len(t, hm.Result.Heatmap.Cells, domain.GridSize*domain.GridSize)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer → Writer) with
// real Kafka and checks every radius and filter against the golden fixture.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	expected := loadExpectedHeatmaps(t)
	byKey := make(map[string]domain.HeatmapFixture, len(expected))
	msgs := make([]kafkago.Message, 0, len(expected))
	for _, f := range expected {
		key := fmt.Sprintf("req-%g-%s", f.RadiusKm, f.Severity)
		byKey[key] = f
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(key),
			Value: []byte(fmt.Sprintf(`{"radius_km":%g,"severity":%q}`, f.RadiusKm, f.Severity)),
		})
	}
	require.NoError(t, requestProducer(t, broker).WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(loadMockData(t), nil, newDelhi, discardLogger(), metrics)
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	received := make([]heatmapMessage, 0, len(msgs))
	for len(received) < len(msgs) {
		received = append(received, readHeatmap(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	seen := map[string]bool{}
	for _, hm := range received {
		want, ok := byKey[hm.Key]
		require.True(t, ok, "unexpected key %q", hm.Key)
		seen[hm.Key] = true

		assert.Equal(t, hm.Key, hm.Result.RequestID, "request id falls back to the message key")
		assert.Equal(t, domain.SourceFallback, hm.Headers["reference_source"])
		assert.Equal(t, "New Delhi", hm.Result.Reference.PlaceName)
		if diff := cmp.Diff(want, domain.NewHeatmapFixture(hm.Result.Heatmap)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", hm.Key, diff)
		}
	}
	assert.Len(t, seen, len(expected), "every request answered exactly once")
}

// TestPipelineTransformError verifies that invalid requests (poison pills) are
// skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	require.NoError(t, requestProducer(t, broker).WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad-json"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("bad-radius"), Value: []byte(`{"radius_km":3}`)},
		kafkago.Message{Key: []byte("good"), Value: []byte(`{"radius_km":0.5,"severity":"high"}`)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(loadMockData(t), nil, newDelhi, discardLogger(), metrics)
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	hm := readHeatmap(ctx, t, consumer)
	assert.Equal(t, "good", hm.Key)
	assert.Equal(t, 3, hm.Result.Heatmap.Matched)
	assert.True(t, hm.Result.Heatmap.Summary.Filtered)

	// Verify no second message arrives (the poison pills were skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
