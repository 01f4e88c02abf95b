//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/community-census-etl/internal/adapter/kafka"
	"github.com/couchcryptid/community-census-etl/internal/adapter/pdf"
	"github.com/couchcryptid/community-census-etl/internal/adapter/report"
	"github.com/couchcryptid/community-census-etl/internal/adapter/table"
	"github.com/couchcryptid/community-census-etl/internal/command"
	"github.com/couchcryptid/community-census-etl/internal/config"
	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/couchcryptid/community-census-etl/internal/mockreport"
	"github.com/couchcryptid/community-census-etl/internal/observability"
	"github.com/couchcryptid/community-census-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-community-rows"

// publishedRow holds a deserialized message read from the topic.
type publishedRow struct {
	Row     domain.Row
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return observability.DiscardLogger()
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("census-test"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

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

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedRow {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var row domain.Row
	require.NoError(t, json.Unmarshal(msg.Value, &row), "unmarshal row message")

	return publishedRow{Row: row, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestPublisherRoundTrip verifies that a row written by the Publisher is
// readable from the topic with its key and headers.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	row := domain.Row{
		Community:     "FOREST LAWN/DOVER",
		Immigrants:    "3210",
		NonImmigrants: "N/A",
		Slug:          "forest-lawn-dover",
		ProcessedAt:   time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.WriteRow(ctx, row))

	got := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "forest-lawn-dover", got.Key)
	assert.Equal(t, "FOREST LAWN/DOVER", got.Headers["community"])
	assert.Equal(t, "2024-04-27T06:00:00Z", got.Headers["processed_at"])
	assert.Equal(t, row, got.Row)
}

// TestCompileEndToEnd wires the full compile (report server → cache → PDF
// extraction → CSV table + Kafka) and verifies both outputs agree.
func TestCompileEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	reports := map[string]string{
		"/beltline.pdf":          "Immigrant Status Immigrants 8,970 Non-immigrants 15,010",
		"/forest-lawn-dover.pdf": "Immigrant Status Immigrants 3,210",
		"/banff-trail.pdf":       "Immigrant Status Immigrants 1,120 Non-immigrants 3,005",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := reports[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(mockreport.BuildPDF(mockreport.ReportPages(page)))
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	listPath := filepath.Join(root, "community-names.txt")
	require.NoError(t, os.WriteFile(listPath,
		[]byte("Beltline\nForest Lawn/Dover\nBanff Trail\nSaddle Ridge\n"), 0o600))

	cfg := &config.Config{
		CommunityList: listPath,
		CacheDir:      filepath.Join(root, "pdf_files"),
		OutputDir:     filepath.Join(root, "csv_files"),
		OutputName:    "calgary-immigrants-by-community",
		ReportBaseURL: srv.URL,
		ReportPage:    8,
		HTTPTimeout:   10 * time.Second,
		KafkaBrokers:  []string{broker},
		KafkaTopic:    testTopic,
	}

	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	client := report.NewClient(cfg.ReportBaseURL, cfg.HTTPTimeout, 0, metrics, logger)
	fetcher := report.NewDiskCache(client, cfg.CacheDir, metrics)
	extractor := pipeline.NewExtractor(pdf.NewReader(), pdf.NewValidator(), cfg.ReportPage, logger)
	compiler := pipeline.New(fetcher, extractor, logger, metrics, pipeline.Options{Workers: 2})

	publisher := kafka.NewPublisher(cfg, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	d := &command.Dispatcher{
		Config:   cfg,
		Compiler: compiler,
		Sinks:    []pipeline.RowSink{publisher},
		Logger:   logger,
	}
	summary, err := d.Compile(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Rows)
	assert.Zero(t, summary.WriteErrors)

	rows, err := table.ReadRows(cfg.OutputPath())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	fromTable := map[string]domain.Row{}
	for _, r := range rows {
		fromTable[r.Community] = r
	}

	consumer := newConsumer(t, broker)
	fromTopic := map[string]publishedRow{}
	for len(fromTopic) < 4 {
		pr := readPublished(ctx, t, consumer)
		fromTopic[pr.Row.Community] = pr
	}

	for label, tr := range fromTable {
		pr, ok := fromTopic[label]
		require.True(t, ok, "row %s missing from topic", label)
		assert.Equal(t, tr.Immigrants, pr.Row.Immigrants, label)
		assert.Equal(t, tr.NonImmigrants, pr.Row.NonImmigrants, label)
		assert.Equal(t, pr.Row.Slug, pr.Key, label)
	}

	assert.Equal(t, "8970", fromTable["BELTLINE"].Immigrants)
	assert.Equal(t, "15010", fromTable["BELTLINE"].NonImmigrants)
	assert.Equal(t, "3210", fromTable["FOREST LAWN/DOVER"].Immigrants)
	assert.Equal(t, domain.NotAvailable, fromTable["FOREST LAWN/DOVER"].NonImmigrants)
	assert.Equal(t, domain.NotAvailable, fromTable["SADDLE RIDGE"].Immigrants)

	entries, err := os.ReadDir(cfg.CacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "cache cleared after compile")
}
