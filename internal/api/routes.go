package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.loggingMiddleware)

	r.HandleFunc("/", handler.Index).Methods("GET")
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	passivos := r.PathPrefix("/passivos").Subrouter()
	passivos.HandleFunc("", handler.ListPassivos).Methods("GET")
	passivos.HandleFunc("", handler.CreatePassivo).Methods("POST")
	passivos.HandleFunc("/{id}", handler.GetPassivo).Methods("GET")
	passivos.HandleFunc("/{id}", handler.UpdatePassivo).Methods("PUT")
	passivos.HandleFunc("/{id}", handler.DeletePassivo).Methods("DELETE")

	rendaFixa := r.PathPrefix("/renda-fixa").Subrouter()
	rendaFixa.HandleFunc("", handler.ListRendaFixa).Methods("GET")
	rendaFixa.HandleFunc("", handler.CreateRendaFixa).Methods("POST")
	rendaFixa.HandleFunc("/{id}", handler.GetRendaFixa).Methods("GET")
	rendaFixa.HandleFunc("/{id}", handler.UpdateRendaFixa).Methods("PUT")
	rendaFixa.HandleFunc("/{id}", handler.DeleteRendaFixa).Methods("DELETE")

	rv := r.PathPrefix("/renda-variavel").Subrouter()
	rv.HandleFunc("", handler.ListRendaVariavel).Methods("GET")
	rv.HandleFunc("/{categoria}", handler.ListRendaVariavelCategoria).Methods("GET")
	rv.HandleFunc("/{categoria}", handler.CreateRendaVariavel).Methods("POST")
	rv.HandleFunc("/{categoria}/recalcular", handler.RecalculateRendaVariavel).Methods("POST")
	rv.HandleFunc("/{categoria}/{id}", handler.UpdateRendaVariavel).Methods("PUT")
	rv.HandleFunc("/{categoria}/{id}", handler.DeleteRendaVariavel).Methods("DELETE")
	rv.HandleFunc("/{categoria}/{id}/transacoes", handler.ListTransacoes).Methods("GET")
	rv.HandleFunc("/{categoria}/{id}/transacoes", handler.CreateTransacao).Methods("POST")
	rv.HandleFunc("/{categoria}/{id}/proventos", handler.ListProventos).Methods("GET")
	rv.HandleFunc("/{categoria}/{id}/proventos", handler.CreateProvento).Methods("POST")

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})(r)
}

// loggingMiddleware logs HTTP requests
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
