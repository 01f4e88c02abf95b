package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/community-census-etl/internal/config"
	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/couchcryptid/community-census-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	row := domain.Row{
		Community:     "FOREST LAWN/DOVER",
		Immigrants:    "1234",
		NonImmigrants: domain.NotAvailable,
		Slug:          "forest-lawn-dover",
		ProcessedAt:   now,
	}

	msg, err := serializeToMessage(row)
	require.NoError(t, err)

	assert.Equal(t, []byte("forest-lawn-dover"), msg.Key)
	assert.JSONEq(t, `{
		"community": "FOREST LAWN/DOVER",
		"immigrants": "1234",
		"non_immigrants": "N/A",
		"slug": "forest-lawn-dover",
		"processed_at": "2024-04-26T15:10:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "community", msg.Headers[0].Key)
	assert.Equal(t, []byte("FOREST LAWN/DOVER"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"broker1:9092"}, KafkaTopic: "stats"}
	p := NewPublisher(cfg, observability.DiscardLogger())

	assert.Equal(t, "stats", p.writer.Topic)
	assert.Equal(t, "broker1:9092", p.writer.Addr.String())
	require.NoError(t, p.Close())
}
