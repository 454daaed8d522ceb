// Package portfolio implements variable-income accounting: average-cost trade
// recording and per-tipo weight recalculation.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-service/internal/models"
	"github.com/trogers1052/carteira-service/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// EventPublisher receives an event after every portfolio mutation
type EventPublisher interface {
	PublishEvent(ctx context.Context, event models.PortfolioEvent) error
}

// Group is the positions of one tipo
type Group struct {
	Tipo      models.Tipo
	Positions []models.Position
}

// TradeRequest describes a buy or sell against a position
type TradeRequest struct {
	PositionID   string
	TipoOperacao string
	Quantidade   float64
	Cotacao      float64
	Data         *time.Time
	// Broker order reference, empty for manual trades
	OrderID string
	Source  string
}

// Service holds no state between calls; everything is read back from the store
type Service struct {
	positions *repository.Repository[models.Position]
	trades    *repository.TradeRepository
	publisher EventPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates a Service. publisher may be nil.
func NewService(positions *repository.Repository[models.Position], trades *repository.TradeRepository, publisher EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		positions: positions,
		trades:    trades,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("component", "portfolio").Logger(),
	}
}

// ListPositions returns every position. When strict hydration fails the
// documents are hydrated one by one and invalid ones are skipped.
func (s *Service) ListPositions(ctx context.Context) ([]models.Position, error) {
	positions, err := s.positions.List(ctx)
	if err == nil {
		return positions, nil
	}
	s.log.Warn().Err(err).Msg("strict position listing failed, falling back to raw documents")

	docs, rawErr := s.positions.ListRaw(ctx)
	if rawErr != nil {
		return nil, fmt.Errorf("failed to list positions: %w", rawErr)
	}

	positions = make([]models.Position, 0, len(docs))
	for _, doc := range docs {
		p, err := s.positions.Hydrate(doc)
		if err != nil {
			s.log.Warn().Err(err).Interface("id", doc["id"]).Msg("skipping invalid position document")
			continue
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// ListPositionsByTipo returns the positions with exactly this tipo
func (s *Service) ListPositionsByTipo(ctx context.Context, tipo models.Tipo) ([]models.Position, error) {
	all, err := s.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Position{}
	for _, p := range all {
		if p.Tipo == tipo {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListPositionsGrouped returns one group per requested tipo, in request order
func (s *Service) ListPositionsGrouped(ctx context.Context, tipos []models.Tipo) ([]Group, error) {
	all, err := s.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(tipos))
	index := make(map[models.Tipo]int, len(tipos))
	for _, tipo := range tipos {
		if _, dup := index[tipo]; dup {
			continue
		}
		index[tipo] = len(groups)
		groups = append(groups, Group{Tipo: tipo, Positions: []models.Position{}})
	}

	for _, p := range all {
		if i, ok := index[p.Tipo]; ok {
			groups[i].Positions = append(groups[i].Positions, p)
		}
	}
	return groups, nil
}

// RecalculatePesos derives peso_percentual of every position of tipo from
// its share of the group's market value and persists it.
func (s *Service) RecalculatePesos(ctx context.Context, tipo models.Tipo) ([]models.Position, error) {
	positions, err := s.ListPositionsByTipo(ctx, tipo)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return positions, nil
	}

	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(clampedMarketValue(p))
	}

	for i, p := range positions {
		if p.ID == "" {
			continue
		}

		peso := decimal.Zero
		if total.IsPositive() {
			peso = clampedMarketValue(p).Div(total).Mul(hundred)
		}
		p.PesoPercentual = peso.InexactFloat64()

		updated, err := s.positions.Update(ctx, p.ID, p)
		if err != nil {
			return nil, fmt.Errorf("failed to persist weight of position %s: %w", p.ID, err)
		}
		positions[i] = updated
	}

	s.log.Debug().Str("tipo", string(tipo)).Int("positions", len(positions)).Msg("weights recalculated")
	s.publish(ctx, models.PortfolioEvent{
		EventType: models.EventWeightsRecalculated,
		Tipo:      tipo,
		Positions: positions,
	})
	return positions, nil
}

// RecalculateAll recalculates the weights of every tipo
func (s *Service) RecalculateAll(ctx context.Context) (map[models.Tipo][]models.Position, error) {
	out := make(map[models.Tipo][]models.Position, len(models.AllTipos()))
	for _, tipo := range models.AllTipos() {
		positions, err := s.RecalculatePesos(ctx, tipo)
		if err != nil {
			return nil, fmt.Errorf("failed to recalculate %s: %w", tipo, err)
		}
		out[tipo] = positions
	}
	return out, nil
}

// ListTrades returns the trades of a position in storage order. Trade
// documents that fail validation are logged and skipped.
func (s *Service) ListTrades(ctx context.Context, positionID string) ([]models.Trade, error) {
	trades, skipped, err := s.trades.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	for _, err := range skipped {
		s.log.Warn().Err(err).Str("position_id", positionID).Msg("skipping invalid trade document")
	}
	return trades, nil
}

// TradeRecorded reports whether a broker order from source was already
// recorded as a trade
func (s *Service) TradeRecorded(ctx context.Context, orderID, source string) (bool, error) {
	exists, err := s.trades.ExistsByOrderID(ctx, orderID, source)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate trade: %w", err)
	}
	return exists, nil
}

// RecordTrade applies a buy or sell to a position using average cost,
// stores the trade and recalculates the weights of the position's tipo.
func (s *Service) RecordTrade(ctx context.Context, req TradeRequest) (models.Position, models.Trade, error) {
	position, err := s.positions.Get(ctx, req.PositionID)
	if err != nil {
		return models.Position{}, models.Trade{}, err
	}

	if req.Quantidade <= 0 || req.Cotacao <= 0 {
		return models.Position{}, models.Trade{}, tradeNotAllowed(ReasonInvalidAmounts)
	}

	operacao := strings.ToLower(strings.TrimSpace(req.TipoOperacao))
	if operacao != models.OperacaoCompra && operacao != models.OperacaoVenda {
		return models.Position{}, models.Trade{}, tradeNotAllowed(ReasonInvalidTipo)
	}

	quantidade := decimal.NewFromFloat(req.Quantidade)
	cotacao := decimal.NewFromFloat(req.Cotacao)
	prevQuantidade := decimal.NewFromFloat(position.Quantidade)
	prevPrecoMedio := decimal.NewFromFloat(position.PrecoMedio)
	prevTotalCompra := decimal.NewFromFloat(position.TotalCompra)

	var novaQuantidade, novoTotalCompra decimal.Decimal
	if operacao == models.OperacaoCompra {
		novaQuantidade = prevQuantidade.Add(quantidade)
		novoTotalCompra = prevTotalCompra.Add(quantidade.Mul(cotacao))
	} else {
		if quantidade.GreaterThan(prevQuantidade) {
			return models.Position{}, models.Trade{}, tradeNotAllowed(ReasonOversell)
		}
		novaQuantidade = prevQuantidade.Sub(quantidade)
		novoTotalCompra = prevPrecoMedio.Mul(novaQuantidade)
	}

	novoPrecoMedio := decimal.Zero
	if novaQuantidade.IsPositive() {
		novoPrecoMedio = novoTotalCompra.Div(novaQuantidade)
	}
	novoTotalMercado := novaQuantidade.Mul(cotacao)
	novaPerformance := decimal.Zero
	if novoPrecoMedio.IsPositive() {
		novaPerformance = cotacao.Div(novoPrecoMedio).Sub(decimal.NewFromInt(1)).Mul(hundred)
	}

	now := s.now()
	position.Quantidade = novaQuantidade.InexactFloat64()
	position.PrecoMedio = novoPrecoMedio.InexactFloat64()
	position.CotacaoAtual = req.Cotacao
	position.TotalCompra = novoTotalCompra.InexactFloat64()
	position.TotalMercado = novoTotalMercado.InexactFloat64()
	position.ResultadoMonetario = novoTotalMercado.Sub(novoTotalCompra).InexactFloat64()
	position.PerformancePercentual = novaPerformance.InexactFloat64()
	position.AtualizadoEm = now

	data := now
	if req.Data != nil {
		data = *req.Data
	}
	trade := models.Trade{
		PositionID:   position.ID,
		TipoOperacao: operacao,
		Data:         data,
		Quantidade:   req.Quantidade,
		Cotacao:      req.Cotacao,
		Total:        quantidade.Mul(cotacao).InexactFloat64(),
		OrderID:      req.OrderID,
		Source:       req.Source,
	}
	if operacao == models.OperacaoCompra {
		trade.PrecoMedioNoAto = floatPtr(novoPrecoMedio)
	} else {
		trade.PrecoMedioNoAto = floatPtr(prevPrecoMedio)
		trade.ResultadoMonetario = floatPtr(cotacao.Sub(prevPrecoMedio).Mul(quantidade))
		if prevPrecoMedio.IsPositive() {
			trade.PerformancePercentual = floatPtr(cotacao.Div(prevPrecoMedio).Sub(decimal.NewFromInt(1)).Mul(hundred))
		}
	}

	// Amounts small enough to round the total to zero cannot be stored
	if err := trade.Validate(); err != nil {
		return models.Position{}, models.Trade{}, tradeNotAllowed(ReasonInvalidAmounts)
	}

	if _, err := s.positions.Update(ctx, position.ID, position); err != nil {
		return models.Position{}, models.Trade{}, fmt.Errorf("failed to update position %s: %w", position.ID, err)
	}

	trade, err = s.trades.Create(ctx, trade)
	if err != nil {
		return models.Position{}, models.Trade{}, fmt.Errorf("failed to record trade: %w", err)
	}

	if _, err := s.RecalculatePesos(ctx, position.Tipo); err != nil {
		return models.Position{}, models.Trade{}, err
	}

	refreshed, err := s.positions.Get(ctx, position.ID)
	if err != nil {
		return models.Position{}, models.Trade{}, err
	}

	s.log.Info().
		Str("position_id", refreshed.ID).
		Str("ticker", refreshed.Ticker).
		Str("operacao", operacao).
		Float64("quantidade", req.Quantidade).
		Float64("cotacao", req.Cotacao).
		Msg("trade recorded")

	s.publish(ctx, models.PortfolioEvent{
		EventType:  models.EventTradeRecorded,
		PositionID: refreshed.ID,
		Tipo:       refreshed.Tipo,
		Position:   &refreshed,
		Trade:      &trade,
	})
	return refreshed, trade, nil
}

// CreatePosition stores a new position and recalculates its group
func (s *Service) CreatePosition(ctx context.Context, p models.Position) (models.Position, error) {
	s.prepare(&p)
	if err := p.Validate(); err != nil {
		return models.Position{}, err
	}

	created, err := s.positions.Create(ctx, p)
	if err != nil {
		return models.Position{}, err
	}

	refreshed, err := s.afterWrite(ctx, created.ID, created.Tipo)
	if err != nil {
		return models.Position{}, err
	}

	s.publish(ctx, models.PortfolioEvent{
		EventType:  models.EventPositionCreated,
		PositionID: refreshed.ID,
		Tipo:       refreshed.Tipo,
		Position:   &refreshed,
	})
	return refreshed, nil
}

// UpdatePosition fully replaces a position and recalculates the affected groups
func (s *Service) UpdatePosition(ctx context.Context, id string, p models.Position) (models.Position, error) {
	s.prepare(&p)
	if err := p.Validate(); err != nil {
		return models.Position{}, err
	}

	existing, err := s.positions.Get(ctx, id)
	if err != nil {
		return models.Position{}, err
	}

	if _, err := s.positions.Update(ctx, id, p); err != nil {
		return models.Position{}, err
	}

	if existing.Tipo != p.Tipo {
		if _, err := s.RecalculatePesos(ctx, existing.Tipo); err != nil {
			return models.Position{}, err
		}
	}

	refreshed, err := s.afterWrite(ctx, id, p.Tipo)
	if err != nil {
		return models.Position{}, err
	}

	s.publish(ctx, models.PortfolioEvent{
		EventType:  models.EventPositionUpdated,
		PositionID: refreshed.ID,
		Tipo:       refreshed.Tipo,
		Position:   &refreshed,
	})
	return refreshed, nil
}

// DeletePosition removes a position and recalculates the weights of its group
func (s *Service) DeletePosition(ctx context.Context, id string) error {
	existing, err := s.positions.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.positions.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.RecalculatePesos(ctx, existing.Tipo); err != nil {
		return err
	}

	s.publish(ctx, models.PortfolioEvent{
		EventType:  models.EventPositionDeleted,
		PositionID: id,
		Tipo:       existing.Tipo,
	})
	return nil
}

func (s *Service) prepare(p *models.Position) {
	p.ID = ""
	if p.AtualizadoEm.IsZero() {
		p.AtualizadoEm = s.now()
	}
	p.ComputeTotals()
}

func (s *Service) afterWrite(ctx context.Context, id string, tipo models.Tipo) (models.Position, error) {
	if _, err := s.RecalculatePesos(ctx, tipo); err != nil {
		return models.Position{}, err
	}
	return s.positions.Get(ctx, id)
}

func (s *Service) publish(ctx context.Context, event models.PortfolioEvent) {
	if s.publisher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.log.Error().Err(err).Str("event_type", event.EventType).Msg("failed to publish portfolio event")
	}
}

func clampedMarketValue(p models.Position) decimal.Decimal {
	v := decimal.NewFromFloat(p.TotalMercado)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
