package repository

import (
	"context"

	"github.com/trogers1052/carteira-service/internal/models"
	"github.com/trogers1052/carteira-service/internal/store"
)

// Document fields used as filters
const (
	FieldPositionID = "position_id"
	FieldOrderID    = "order_id"
)

// TradeRepository stores trades and filters them by position
type TradeRepository struct {
	*Repository[models.Trade]
}

// NewTrades binds the trades collection
func NewTrades(gw store.Gateway) *TradeRepository {
	return &TradeRepository{New(gw, CollectionTrades,
		func(t *models.Trade) string { return t.ID },
		func(t *models.Trade, id string) { t.ID = id })}
}

// ListByPosition returns the trades of one position in storage order.
// Invalid trade documents are skipped and returned as the second result.
func (r *TradeRepository) ListByPosition(ctx context.Context, positionID string) ([]models.Trade, []error, error) {
	return r.ListWhere(ctx, FieldPositionID, positionID)
}

// ExistsByOrderID reports whether a trade from source with this broker order
// id was already recorded
func (r *TradeRepository) ExistsByOrderID(ctx context.Context, orderID, source string) (bool, error) {
	trades, _, err := r.ListWhere(ctx, FieldOrderID, orderID)
	if err != nil {
		return false, err
	}
	for _, t := range trades {
		if t.Source == source {
			return true, nil
		}
	}
	return false, nil
}

// ProventoRepository stores income events and filters them by position
type ProventoRepository struct {
	*Repository[models.Provento]
}

// NewProventos binds the proventos collection
func NewProventos(gw store.Gateway) *ProventoRepository {
	return &ProventoRepository{New(gw, CollectionProventos,
		func(p *models.Provento) string { return p.ID },
		func(p *models.Provento, id string) { p.ID = id })}
}

// ListByPosition returns the proventos of one position in storage order.
// Invalid documents are skipped and returned as the second result.
func (r *ProventoRepository) ListByPosition(ctx context.Context, positionID string) ([]models.Provento, []error, error) {
	return r.ListWhere(ctx, FieldPositionID, positionID)
}
