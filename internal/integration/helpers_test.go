//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/couchcryptid/pothole-heatmap-service/internal/adapter/reportfile"
	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	"github.com/couchcryptid/pothole-heatmap-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the lifetime of the test and
// returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("pothole-heatmap-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster
// controller so consumers never race auto-creation.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

func mockDataPath(name string) string {
	return filepath.Join("..", "..", "data", "mock", name)
}

// loadMockData returns a report source primed with the mock snapshot.
func loadMockData(t *testing.T) *reportfile.Source {
	t.Helper()
	src := reportfile.NewSource(mockDataPath("pothole_reports.json"), discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, src.Refresh(context.Background()), "load mock reports")
	return src
}

func loadExpectedHeatmaps(t *testing.T) []domain.HeatmapFixture {
	t.Helper()
	data, err := os.ReadFile(mockDataPath("expected_heatmaps.json"))
	require.NoError(t, err)
	var fixtures []domain.HeatmapFixture
	require.NoError(t, json.Unmarshal(data, &fixtures))
	return fixtures
}
