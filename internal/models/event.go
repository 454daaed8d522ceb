package models

import "time"

// Portfolio event types
const (
	EventPositionCreated     = "POSITION_CREATED"
	EventPositionUpdated     = "POSITION_UPDATED"
	EventPositionDeleted     = "POSITION_DELETED"
	EventTradeRecorded       = "TRADE_RECORDED"
	EventWeightsRecalculated = "WEIGHTS_RECALCULATED"
)

// EventTradeDetected is the inbound broker event the trade consumer handles
const EventTradeDetected = "TRADE_DETECTED"

// PortfolioEvent is published after every portfolio mutation
type PortfolioEvent struct {
	EventType  string     `json:"event_type"`
	PositionID string     `json:"position_id,omitempty"`
	Tipo       Tipo       `json:"tipo,omitempty"`
	Position   *Position  `json:"position,omitempty"`
	Trade      *Trade     `json:"trade,omitempty"`
	Positions  []Position `json:"positions,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// TradeEvent is a trade reported by an external source (broker sync, importer)
type TradeEvent struct {
	EventType string         `json:"event_type"`
	Source    string         `json:"source"`
	Data      TradeEventData `json:"data"`
}

// TradeEventData carries the execution details of a TradeEvent
type TradeEventData struct {
	OrderID      string  `json:"order_id,omitempty"`
	PositionID   string  `json:"position_id"`
	Symbol       string  `json:"symbol,omitempty"`
	Side         string  `json:"side"`
	Quantity     string  `json:"quantity"`
	AveragePrice string  `json:"average_price"`
	ExecutedAt   *string `json:"executed_at,omitempty"`
}
