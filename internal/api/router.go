package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(ledgerSvc LedgerService, gameSvc GameService) http.Handler {
	h := NewHandler(ledgerSvc, gameSvc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.HealthHandler)
	r.Get("/healthz", h.HealthHandler)

	r.Route("/games", func(r chi.Router) {
		r.Get("/", h.ListGamesHandler)
		r.Post("/", h.AddGameHandler)
		r.Put("/{id}", h.UpdateGameHandler)
		r.Delete("/{id}", h.RemoveGameHandler)
		r.Get("/{id}/stats", h.GameStatsHandler)
	})

	r.Get("/stats", h.RosterStatsHandler)

	r.Get("/payments", h.ListPaymentsHandler)
	r.Post("/payments", h.RecordPaymentHandler)
	r.Get("/totals", h.GetTotalsHandler)
	r.Post("/reset", h.ResetHandler)
	r.Post("/recalc", h.RecalcHandler)

	return r
}

// requestLogger writes one slog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			slog.InfoContext(r.Context(), "http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
