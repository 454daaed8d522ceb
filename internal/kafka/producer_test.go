package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/carteira-service/internal/models"
)

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	t.Run("keys by position id", func(t *testing.T) {
		writer := &mockWriter{}
		producer := &Producer{writer: writer, topic: "carteira-events"}

		position := models.Position{ID: "p1", Ticker: "PETR4", Tipo: models.TipoAcaoBR}
		err := producer.PublishEvent(context.Background(), models.PortfolioEvent{
			EventType:  models.EventPositionCreated,
			PositionID: "p1",
			Tipo:       models.TipoAcaoBR,
			Position:   &position,
		})
		require.NoError(t, err)
		require.Len(t, writer.msgs, 1)
		assert.Equal(t, "p1", string(writer.msgs[0].Key))

		var decoded models.PortfolioEvent
		require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &decoded))
		assert.Equal(t, models.EventPositionCreated, decoded.EventType)
		assert.Equal(t, "PETR4", decoded.Position.Ticker)
		assert.False(t, decoded.Timestamp.IsZero())
	})

	t.Run("group events keyed by tipo", func(t *testing.T) {
		writer := &mockWriter{}
		producer := &Producer{writer: writer}

		ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		err := producer.PublishEvent(context.Background(), models.PortfolioEvent{
			EventType: models.EventWeightsRecalculated,
			Tipo:      models.TipoFII,
			Timestamp: ts,
		})
		require.NoError(t, err)
		require.Len(t, writer.msgs, 1)
		assert.Equal(t, "fii", string(writer.msgs[0].Key))
		assert.Contains(t, string(writer.msgs[0].Value), `"timestamp":"2024-01-01T00:00:00Z"`)
	})

	t.Run("write failure", func(t *testing.T) {
		writer := &mockWriter{err: errors.New("leader not available")}
		producer := &Producer{writer: writer}

		err := producer.PublishEvent(context.Background(), models.PortfolioEvent{EventType: models.EventPositionDeleted, PositionID: "p1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write message to kafka")
	})

	t.Run("close", func(t *testing.T) {
		writer := &mockWriter{}
		producer := &Producer{writer: writer}
		require.NoError(t, producer.Close())
		assert.True(t, writer.closed)
	})
}
