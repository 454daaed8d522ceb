package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/trogers1052/carteira-service/internal/models"
	"github.com/trogers1052/carteira-service/internal/portfolio"
)

const (
	msgCategoriaNotFound = "categoria nao encontrada"
	msgPositionNotFound  = "position nao encontrada"
)

// tradeRequest is the body of POST /renda-variavel/{categoria}/{id}/transacoes
type tradeRequest struct {
	TipoOperacao string     `json:"tipo_operacao"`
	Quantidade   float64    `json:"quantidade"`
	Cotacao      float64    `json:"cotacao"`
	Data         *time.Time `json:"data,omitempty"`
}

// resolveTipo looks up the categoria slug, writing a 404 when unknown
func resolveTipo(w http.ResponseWriter, r *http.Request) (models.Tipo, bool) {
	tipo, ok := models.TipoForSlug(mux.Vars(r)["categoria"])
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": msgCategoriaNotFound})
	}
	return tipo, ok
}

// ListRendaVariavel handles GET /renda-variavel
func (h *Handler) ListRendaVariavel(w http.ResponseWriter, r *http.Request) {
	groups, err := h.portfolio.ListPositionsGrouped(r.Context(), models.CategoriaTipos())
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	byTipo := make(map[models.Tipo][]models.Position, len(groups))
	for _, g := range groups {
		byTipo[g.Tipo] = g.Positions
	}

	items := make(map[string][]models.Position)
	for _, c := range models.Categorias() {
		positions := byTipo[c.Tipo]
		if positions == nil {
			positions = []models.Position{}
		}
		items[c.Slug] = positions
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ListRendaVariavelCategoria handles GET /renda-variavel/{categoria}
func (h *Handler) ListRendaVariavelCategoria(w http.ResponseWriter, r *http.Request) {
	tipo, ok := resolveTipo(w, r)
	if !ok {
		return
	}

	items, err := h.portfolio.ListPositionsByTipo(r.Context(), tipo)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"items":     items,
		"categoria": strings.ToLower(mux.Vars(r)["categoria"]),
		"tipo":      tipo,
	})
}

// CreateRendaVariavel handles POST /renda-variavel/{categoria}
func (h *Handler) CreateRendaVariavel(w http.ResponseWriter, r *http.Request) {
	tipo, ok := resolveTipo(w, r)
	if !ok {
		return
	}

	var p models.Position
	if !decodeBody(w, r, &p) {
		return
	}
	p.Tipo = tipo

	created, err := h.portfolio.CreatePosition(r.Context(), p)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"item": created})
}

// UpdateRendaVariavel handles PUT /renda-variavel/{categoria}/{id}
func (h *Handler) UpdateRendaVariavel(w http.ResponseWriter, r *http.Request) {
	tipo, ok := resolveTipo(w, r)
	if !ok {
		return
	}

	var p models.Position
	if !decodeBody(w, r, &p) {
		return
	}
	p.Tipo = tipo

	updated, err := h.portfolio.UpdatePosition(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"item": updated})
}

// DeleteRendaVariavel handles DELETE /renda-variavel/{categoria}/{id}
func (h *Handler) DeleteRendaVariavel(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveTipo(w, r); !ok {
		return
	}

	if err := h.portfolio.DeletePosition(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecalculateRendaVariavel handles POST /renda-variavel/{categoria}/recalcular
func (h *Handler) RecalculateRendaVariavel(w http.ResponseWriter, r *http.Request) {
	tipo, ok := resolveTipo(w, r)
	if !ok {
		return
	}

	items, err := h.portfolio.RecalculatePesos(r.Context(), tipo)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ListTransacoes handles GET /renda-variavel/{categoria}/{id}/transacoes
func (h *Handler) ListTransacoes(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveTipo(w, r); !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := h.positions.Get(r.Context(), id); err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	trades, err := h.portfolio.ListTrades(r.Context(), id)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Data.After(trades[j].Data)
	})

	respondJSON(w, http.StatusOK, map[string]any{"items": trades})
}

// CreateTransacao handles POST /renda-variavel/{categoria}/{id}/transacoes
func (h *Handler) CreateTransacao(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveTipo(w, r); !ok {
		return
	}

	var req tradeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	position, trade, err := h.portfolio.RecordTrade(r.Context(), portfolio.TradeRequest{
		PositionID:   mux.Vars(r)["id"],
		TipoOperacao: req.TipoOperacao,
		Quantidade:   req.Quantidade,
		Cotacao:      req.Cotacao,
		Data:         req.Data,
	})
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"item": position, "transacao": trade})
}

// ListProventos handles GET /renda-variavel/{categoria}/{id}/proventos
func (h *Handler) ListProventos(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveTipo(w, r); !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := h.positions.Get(r.Context(), id); err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	items, skipped, err := h.proventos.ListByPosition(r.Context(), id)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}
	for _, err := range skipped {
		h.log.Warn().Err(err).Str("position_id", id).Msg("skipping invalid provento document")
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CreateProvento handles POST /renda-variavel/{categoria}/{id}/proventos
func (h *Handler) CreateProvento(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveTipo(w, r); !ok {
		return
	}

	var p models.Provento
	if !decodeBody(w, r, &p) {
		return
	}
	p.ID = ""
	p.PositionID = mux.Vars(r)["id"]
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	if _, err := h.positions.Get(r.Context(), p.PositionID); err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	created, err := h.proventos.Create(r.Context(), p)
	if err != nil {
		h.respondError(w, err, msgPositionNotFound)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"item": created})
}
