package domain

import "github.com/shopspring/decimal"

// NetCoinFlow is earned + recharged - spent.
func NetCoinFlow(spent, earned, recharged int64) int64 {
	return earned + recharged - spent
}

// CoinsToUSD converts a coin count at the given coin value.
func CoinsToUSD(coins int64, coinValue float64) float64 {
	return decimal.NewFromInt(coins).Mul(decimal.NewFromFloat(coinValue)).InexactFloat64()
}

// ProfitLossUSD is the net coin flow priced at coinValue.
func ProfitLossUSD(spent, earned, recharged int64, coinValue float64) float64 {
	return CoinsToUSD(NetCoinFlow(spent, earned, recharged), coinValue)
}

// Stats are the dashboard figures for one game or a whole roster.
type Stats struct {
	CoinsSpent           int64   `json:"coinsSpent"`
	CoinsEarned          int64   `json:"coinsEarned"`
	CoinsRecharged       int64   `json:"coinsRecharged"`
	TotalCoinsTransacted int64   `json:"totalCoinsTransacted"`
	NetCoinFlow          int64   `json:"netCoinFlow"`
	RevenueUSD           float64 `json:"revenueUSD"`
	NetUSD               float64 `json:"netUSD"`
}

// ComputeStats derives dashboard figures from raw counters.
func ComputeStats(spent, earned, recharged int64, coinValue float64) Stats {
	total := spent + earned + recharged
	net := NetCoinFlow(spent, earned, recharged)

	return Stats{
		CoinsSpent:           spent,
		CoinsEarned:          earned,
		CoinsRecharged:       recharged,
		TotalCoinsTransacted: total,
		NetCoinFlow:          net,
		RevenueUSD:           CoinsToUSD(total-net, coinValue),
		NetUSD:               CoinsToUSD(net, coinValue),
	}
}

// NetCoinFlow is the game's derived net coin flow.
func (g Game) NetCoinFlow() int64 {
	return NetCoinFlow(g.CoinsSpent, g.CoinsEarned, g.CoinsRecharged)
}
