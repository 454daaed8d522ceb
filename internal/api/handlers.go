package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/carteira-service/internal/models"
	"github.com/trogers1052/carteira-service/internal/portfolio"
	"github.com/trogers1052/carteira-service/internal/repository"
	"github.com/trogers1052/carteira-service/internal/store"
)

// Config holds the dependencies of the HTTP handlers
type Config struct {
	Portfolio *portfolio.Service
	Passivos  *repository.Repository[models.Passivo]
	RendaFixa *repository.Repository[models.RendaFixaPosition]
	Positions *repository.Repository[models.Position]
	Proventos *repository.ProventoRepository
	Store     store.Gateway
	Backend   string
	Log       zerolog.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	portfolio *portfolio.Service
	passivos  *repository.Repository[models.Passivo]
	rendaFixa *repository.Repository[models.RendaFixaPosition]
	positions *repository.Repository[models.Position]
	proventos *repository.ProventoRepository
	store     store.Gateway
	backend   string
	log       zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(cfg Config) *Handler {
	return &Handler{
		portfolio: cfg.Portfolio,
		passivos:  cfg.Passivos,
		rendaFixa: cfg.RendaFixa,
		positions: cfg.Positions,
		proventos: cfg.Proventos,
		store:     cfg.Store,
		backend:   cfg.Backend,
		log:       cfg.Log.With().Str("component", "api").Logger(),
	}
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"store":  h.backend,
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": h.backend})
}

// ListPassivos handles GET /passivos
func (h *Handler) ListPassivos(w http.ResponseWriter, r *http.Request) {
	items, err := h.passivos.List(r.Context())
	if err != nil {
		h.respondError(w, err, "passivo nao encontrado")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetPassivo handles GET /passivos/{id}
func (h *Handler) GetPassivo(w http.ResponseWriter, r *http.Request) {
	item, err := h.passivos.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "passivo nao encontrado")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"item": item})
}

// CreatePassivo handles POST /passivos
func (h *Handler) CreatePassivo(w http.ResponseWriter, r *http.Request) {
	var p models.Passivo
	if !decodeBody(w, r, &p) {
		return
	}
	p.ID = ""
	p.Normalize()
	if err := p.Validate(); err != nil {
		h.respondError(w, err, "")
		return
	}

	created, err := h.passivos.Create(r.Context(), p)
	if err != nil {
		h.respondError(w, err, "")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"item": created})
}

// UpdatePassivo handles PUT /passivos/{id}
func (h *Handler) UpdatePassivo(w http.ResponseWriter, r *http.Request) {
	var p models.Passivo
	if !decodeBody(w, r, &p) {
		return
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		h.respondError(w, err, "")
		return
	}

	updated, err := h.passivos.Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		h.respondError(w, err, "passivo nao encontrado")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"item": updated})
}

// DeletePassivo handles DELETE /passivos/{id}
func (h *Handler) DeletePassivo(w http.ResponseWriter, r *http.Request) {
	if err := h.passivos.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err, "passivo nao encontrado")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRendaFixa handles GET /renda-fixa
func (h *Handler) ListRendaFixa(w http.ResponseWriter, r *http.Request) {
	items, err := h.rendaFixa.List(r.Context())
	if err != nil {
		h.respondError(w, err, "position nao encontrada")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetRendaFixa handles GET /renda-fixa/{id}
func (h *Handler) GetRendaFixa(w http.ResponseWriter, r *http.Request) {
	item, err := h.rendaFixa.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "position nao encontrada")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"item": item})
}

// CreateRendaFixa handles POST /renda-fixa
func (h *Handler) CreateRendaFixa(w http.ResponseWriter, r *http.Request) {
	var p models.RendaFixaPosition
	if !decodeBody(w, r, &p) {
		return
	}
	p.ID = ""
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		h.respondError(w, err, "")
		return
	}

	created, err := h.rendaFixa.Create(r.Context(), p)
	if err != nil {
		h.respondError(w, err, "")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"item": created})
}

// UpdateRendaFixa handles PUT /renda-fixa/{id}
func (h *Handler) UpdateRendaFixa(w http.ResponseWriter, r *http.Request) {
	var p models.RendaFixaPosition
	if !decodeBody(w, r, &p) {
		return
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		h.respondError(w, err, "")
		return
	}

	updated, err := h.rendaFixa.Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		h.respondError(w, err, "position nao encontrada")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"item": updated})
}

// DeleteRendaFixa handles DELETE /renda-fixa/{id}
func (h *Handler) DeleteRendaFixa(w http.ResponseWriter, r *http.Request) {
	if err := h.rendaFixa.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err, "position nao encontrada")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondError maps service and store errors to HTTP responses
func (h *Handler) respondError(w http.ResponseWriter, err error, notFoundMessage string) {
	var verrs models.ValidationErrors
	var notAllowed *portfolio.TradeNotAllowedError
	var herr *repository.HydrationError

	switch {
	case errors.As(err, &herr):
		h.log.Error().Err(err).Str("collection", herr.Collection).Str("id", herr.ID).Msg("stored document is invalid")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	case errors.As(err, &verrs):
		respondJSON(w, http.StatusBadRequest, map[string]any{"errors": verrs})
	case errors.As(err, &notAllowed):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": notAllowed.Reason})
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage})
	case store.IsFault(err):
		h.log.Error().Err(err).Msg("storage fault")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("unhandled error")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
