package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-service/internal/models"
	"github.com/trogers1052/carteira-service/internal/portfolio"
	"github.com/trogers1052/carteira-service/internal/store"
)

// TradeRecorder applies a trade to a position
type TradeRecorder interface {
	RecordTrade(ctx context.Context, req portfolio.TradeRequest) (models.Position, models.Trade, error)
	TradeRecorded(ctx context.Context, orderID, source string) (bool, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// Consumer records trades reported by external sources (broker sync,
// importers) as TRADE_DETECTED events.
type Consumer struct {
	reader   messageReader
	recorder TradeRecorder
	log      zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for trade events
func NewConsumer(brokers []string, topic, groupID string, recorder TradeRecorder, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:   reader,
		recorder: recorder,
		log:      log.With().Str("component", "trade_consumer").Logger(),
	}
}

// Start consumes messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("starting kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				c.log.Error().Err(err).Msg("error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error().
					Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("error processing message")
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.TradeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trade event: %w", err)
	}

	if event.EventType != models.EventTradeDetected {
		c.log.Debug().Str("event_type", event.EventType).Msg("ignoring event")
		return nil
	}

	// Check for duplicate (idempotency)
	if event.Data.OrderID != "" {
		exists, err := c.recorder.TradeRecorded(ctx, event.Data.OrderID, event.Source)
		if err != nil {
			return err
		}
		if exists {
			c.log.Info().
				Str("source", event.Source).
				Str("order_id", event.Data.OrderID).
				Msg("trade already recorded, skipping")
			return nil
		}
	}

	req, err := toTradeRequest(event.Data)
	if err != nil {
		return fmt.Errorf("failed to convert trade event: %w", err)
	}
	req.Source = event.Source

	position, trade, err := c.recorder.RecordTrade(ctx, req)
	if err != nil {
		var notAllowed *portfolio.TradeNotAllowedError
		switch {
		case errors.As(err, &notAllowed), errors.Is(err, store.ErrNotFound):
			c.log.Warn().
				Err(err).
				Str("position_id", req.PositionID).
				Str("order_id", event.Data.OrderID).
				Msg("trade rejected")
			return nil
		}
		return fmt.Errorf("failed to record trade for position %s: %w", req.PositionID, err)
	}

	c.log.Info().
		Str("source", event.Source).
		Str("order_id", event.Data.OrderID).
		Str("position_id", position.ID).
		Str("trade_id", trade.ID).
		Str("operacao", trade.TipoOperacao).
		Float64("quantidade", trade.Quantidade).
		Float64("cotacao", trade.Cotacao).
		Msg("recorded trade from event")
	return nil
}

// toTradeRequest maps broker trade data to a trade request
func toTradeRequest(data models.TradeEventData) (portfolio.TradeRequest, error) {
	if data.PositionID == "" {
		return portfolio.TradeRequest{}, fmt.Errorf("position_id is required")
	}

	quantity, err := decimal.NewFromString(data.Quantity)
	if err != nil {
		return portfolio.TradeRequest{}, fmt.Errorf("invalid quantity %s: %w", data.Quantity, err)
	}

	price, err := decimal.NewFromString(data.AveragePrice)
	if err != nil {
		return portfolio.TradeRequest{}, fmt.Errorf("invalid price %s: %w", data.AveragePrice, err)
	}

	var operacao string
	switch strings.ToUpper(data.Side) {
	case models.TradeTypeBuy:
		operacao = models.OperacaoCompra
	case models.TradeTypeSell:
		operacao = models.OperacaoVenda
	default:
		return portfolio.TradeRequest{}, fmt.Errorf("invalid trade side: %s", data.Side)
	}

	req := portfolio.TradeRequest{
		PositionID:   data.PositionID,
		TipoOperacao: operacao,
		Quantidade:   quantity.InexactFloat64(),
		Cotacao:      price.InexactFloat64(),
		OrderID:      data.OrderID,
	}

	if data.ExecutedAt != nil && *data.ExecutedAt != "" {
		executedAt, err := time.Parse(time.RFC3339, *data.ExecutedAt)
		if err != nil {
			// Try parsing without timezone
			executedAt, err = time.Parse("2006-01-02T15:04:05", *data.ExecutedAt)
		}
		if err == nil {
			req.Data = &executedAt
		}
	}

	return req, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
