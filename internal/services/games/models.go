package games

import "github.com/saminkc999/coinledger/internal/domain"

// Delta is an additive update to a game's counters. RechargeDate is
// optional and only used when Recharged > 0.
type Delta struct {
	Spent        float64
	Earned       float64
	Recharged    float64
	RechargeDate string
}

// View is a game with its derived metrics at the configured coin value.
type View struct {
	domain.Game
	NetCoinFlow   int64   `json:"netCoinFlow"`
	ProfitLossUSD float64 `json:"profitLossUSD"`
}

// GameStats is the dashboard summary for a single game.
type GameStats struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	domain.Stats
}

// RosterStats aggregates every game's counters.
type RosterStats struct {
	Games int `json:"games"`
	domain.Stats
}
