package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/services/games"
	"github.com/saminkc999/coinledger/internal/services/ledger"
)

const maxBodyBytes = 1 << 20

type LedgerService interface {
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	GetTotals(ctx context.Context) (domain.Totals, error)
	RecordPayment(ctx context.Context, amount float64, method domain.Method, note string) (ledger.Receipt, error)
	ResetAll(ctx context.Context) (domain.Totals, error)
	RecalcTotals(ctx context.Context) (domain.Totals, error)
}

type GameService interface {
	ListGames(ctx context.Context) ([]games.View, error)
	AddGame(ctx context.Context, name string, spent, earned, recharged float64) (games.View, error)
	ApplyGameDelta(ctx context.Context, id int64, d games.Delta) (games.View, error)
	RemoveGame(ctx context.Context, id int64) (games.View, error)
	GameStats(ctx context.Context, id int64) (games.GameStats, error)
	RosterStats(ctx context.Context) (games.RosterStats, error)
}

// HandlerProvider exposes the ledger and the game roster as HTTP handlers.
type HandlerProvider struct {
	ledger LedgerService
	games  GameService
}

// NewHandler returns a new Handler provider.
func NewHandler(ledgerSvc LedgerService, gameSvc GameService) *HandlerProvider {
	return &HandlerProvider{ledger: ledgerSvc, games: gameSvc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps a service error onto a status code. Storage failures are
// logged with their cause and reported to the client without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}

	if errors.Is(err, domain.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a single JSON object into dst. Unknown fields and bodies
// over maxBodyBytes are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("body too large")
		}

		return errors.New("invalid JSON")
	}

	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}

	return nil
}

// parseGameIDFromPath reads `{id}` from routes like /games/{id}.
func parseGameIDFromPath(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		return 0, fmt.Errorf("missing id")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", err)
	}

	return id, nil
}

// number accepts a JSON number or a numeric string. Anything else decodes
// to NaN so the service rejects it with its own validation code.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string

		err := json.Unmarshal(b, &s)
		if err != nil {
			*n = number(math.NaN())
			return nil //nolint:nilerr
		}

		raw = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = number(math.NaN())
		return nil //nolint:nilerr
	}

	*n = number(f)

	return nil
}

// --- Handlers ---

// HealthHandler handles GET / and GET /healthz.
func (h *HandlerProvider) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
