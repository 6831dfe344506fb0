package api

import (
	"net/http"

	"github.com/saminkc999/coinledger/internal/services/games"
)

type addGameRequest struct {
	Name           string `json:"name"`
	CoinsSpent     number `json:"coinsSpent"`
	CoinsEarned    number `json:"coinsEarned"`
	CoinsRecharged number `json:"coinsRecharged"`
}

// updateGameRequest carries deltas, not absolute values.
type updateGameRequest struct {
	CoinsSpent     number `json:"coinsSpent"`
	CoinsEarned    number `json:"coinsEarned"`
	CoinsRecharged number `json:"coinsRecharged"`
	RechargeDate   string `json:"rechargeDate"`
}

// ListGamesHandler handles GET /games
func (h *HandlerProvider) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.games.ListGames(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// AddGameHandler handles POST /games
func (h *HandlerProvider) AddGameHandler(w http.ResponseWriter, r *http.Request) {
	var req addGameRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := h.games.AddGame(r.Context(), req.Name,
		float64(req.CoinsSpent), float64(req.CoinsEarned), float64(req.CoinsRecharged))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

// UpdateGameHandler handles PUT /games/{id}
func (h *HandlerProvider) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id in path")
		return
	}

	var req updateGameRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := h.games.ApplyGameDelta(r.Context(), id, games.Delta{
		Spent:        float64(req.CoinsSpent),
		Earned:       float64(req.CoinsEarned),
		Recharged:    float64(req.CoinsRecharged),
		RechargeDate: req.RechargeDate,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// RemoveGameHandler handles DELETE /games/{id}
func (h *HandlerProvider) RemoveGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id in path")
		return
	}

	game, err := h.games.RemoveGame(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// GameStatsHandler handles GET /games/{id}/stats
func (h *HandlerProvider) GameStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id in path")
		return
	}

	stats, err := h.games.GameStats(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RosterStatsHandler handles GET /stats
func (h *HandlerProvider) RosterStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.games.RosterStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
