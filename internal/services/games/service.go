// Package games maintains the game roster and each game's coin counters.
package games

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/events"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

const dateLayout = "2006-01-02"

// maxCounterInput is the largest count accepted from a float64 input
// without losing integer precision.
const maxCounterInput = 1 << 53

type GameService struct {
	repo      *document.Repo
	coinValue float64
	bus       events.Bus
	now       func() time.Time
}

type Option func(*GameService)

func WithBus(bus events.Bus) Option {
	return func(s *GameService) { s.bus = bus }
}

func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

func New(repo *document.Repo, coinValue float64, opts ...Option) *GameService {
	s := &GameService{
		repo:      repo,
		coinValue: coinValue,
		bus:       events.Noop{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListGames returns the roster in insertion order.
func (s *GameService) ListGames(ctx context.Context) ([]View, error) {
	doc, err := s.repo.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	out := make([]View, 0, len(doc.Games))
	for _, g := range doc.Games {
		out = append(out, s.view(g))
	}

	return out, nil
}

// AddGame creates a game with the given initial counters.
func (s *GameService) AddGame(ctx context.Context, name string, spent, earned, recharged float64) (View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return View{}, fmt.Errorf("add game: %w", domain.Invalid(domain.CodeInvalidName, "name is required"))
	}

	counters, err := toCounters(domain.CodeInvalidCounter, spent, earned, recharged)
	if err != nil {
		return View{}, fmt.Errorf("add game: %w", err)
	}

	var game domain.Game

	_, err = s.repo.Update(ctx, func(doc *domain.Document) error {
		game = domain.Game{
			ID:             nextID(doc.Games, s.now()),
			Name:           name,
			CoinsSpent:     counters[0],
			CoinsEarned:    counters[1],
			CoinsRecharged: counters[2],
		}

		doc.Games = append(doc.Games, game)

		return nil
	})
	if err != nil {
		return View{}, fmt.Errorf("add game: %w", err)
	}

	slog.Info("game added", "id", game.ID, "name", game.Name)

	view := s.view(game)
	events.Emit(s.bus, events.TopicGameAdded, view)

	return view, nil
}

// ApplyGameDelta increments the counters of game id. A positive recharge
// stamps lastRechargeDate with d.RechargeDate or today's UTC date.
func (s *GameService) ApplyGameDelta(ctx context.Context, id int64, d Delta) (View, error) {
	deltas, err := toCounters(domain.CodeInvalidDelta, d.Spent, d.Earned, d.Recharged)
	if err != nil {
		return View{}, fmt.Errorf("apply game delta: %w", err)
	}

	if d.RechargeDate != "" && !validDate(d.RechargeDate) {
		return View{}, fmt.Errorf("apply game delta: %w",
			domain.Invalid(domain.CodeInvalidDate, "rechargeDate must be YYYY-MM-DD, got %q", d.RechargeDate))
	}

	var game domain.Game

	_, err = s.repo.Update(ctx, func(doc *domain.Document) error {
		i := indexOf(doc.Games, id)
		if i < 0 {
			return fmt.Errorf("game %d: %w", id, domain.ErrGameNotFound)
		}

		g := doc.Games[i]

		if !fits(g.CoinsSpent, deltas[0]) || !fits(g.CoinsEarned, deltas[1]) || !fits(g.CoinsRecharged, deltas[2]) {
			return domain.Invalid(domain.CodeInvalidDelta, "delta would overflow a counter of game %d", id)
		}

		g.CoinsSpent += deltas[0]
		g.CoinsEarned += deltas[1]
		g.CoinsRecharged += deltas[2]

		if deltas[2] > 0 {
			g.LastRechargeDate = d.RechargeDate
			if g.LastRechargeDate == "" {
				g.LastRechargeDate = s.now().UTC().Format(dateLayout)
			}
		}

		doc.Games[i] = g
		game = g

		return nil
	})
	if err != nil {
		return View{}, fmt.Errorf("apply game delta: %w", err)
	}

	slog.Info("game updated", "id", id, "spent", deltas[0], "earned", deltas[1], "recharged", deltas[2])

	view := s.view(game)
	events.Emit(s.bus, events.TopicGameUpdated, view)

	return view, nil
}

// RemoveGame deletes game id permanently and returns it.
func (s *GameService) RemoveGame(ctx context.Context, id int64) (View, error) {
	var removed domain.Game

	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		i := indexOf(doc.Games, id)
		if i < 0 {
			return fmt.Errorf("game %d: %w", id, domain.ErrGameNotFound)
		}

		removed = doc.Games[i]
		doc.Games = append(doc.Games[:i], doc.Games[i+1:]...)

		return nil
	})
	if err != nil {
		return View{}, fmt.Errorf("remove game: %w", err)
	}

	slog.Info("game removed", "id", id)

	view := s.view(removed)
	events.Emit(s.bus, events.TopicGameRemoved, view)

	return view, nil
}

// GameStats returns the dashboard figures for game id.
func (s *GameService) GameStats(ctx context.Context, id int64) (GameStats, error) {
	doc, err := s.repo.Read(ctx)
	if err != nil {
		return GameStats{}, fmt.Errorf("game stats: %w", err)
	}

	i := indexOf(doc.Games, id)
	if i < 0 {
		return GameStats{}, fmt.Errorf("game stats: game %d: %w", id, domain.ErrGameNotFound)
	}

	g := doc.Games[i]

	return GameStats{
		ID:    g.ID,
		Name:  g.Name,
		Stats: domain.ComputeStats(g.CoinsSpent, g.CoinsEarned, g.CoinsRecharged, s.coinValue),
	}, nil
}

// RosterStats sums the counters of every game and derives the same figures
// as GameStats.
func (s *GameService) RosterStats(ctx context.Context) (RosterStats, error) {
	doc, err := s.repo.Read(ctx)
	if err != nil {
		return RosterStats{}, fmt.Errorf("roster stats: %w", err)
	}

	var spent, earned, recharged int64
	for _, g := range doc.Games {
		spent += g.CoinsSpent
		earned += g.CoinsEarned
		recharged += g.CoinsRecharged
	}

	return RosterStats{
		Games: len(doc.Games),
		Stats: domain.ComputeStats(spent, earned, recharged, s.coinValue),
	}, nil
}

func (s *GameService) view(g domain.Game) View {
	return View{
		Game:          g,
		NetCoinFlow:   g.NetCoinFlow(),
		ProfitLossUSD: domain.ProfitLossUSD(g.CoinsSpent, g.CoinsEarned, g.CoinsRecharged, s.coinValue),
	}
}

// toCounters checks that every value is a finite, non-negative whole number
// and converts it.
func toCounters(code domain.ErrorCode, values ...float64) ([]int64, error) {
	names := []string{"coinsSpent", "coinsEarned", "coinsRecharged"}
	out := make([]int64, len(values))

	for i, v := range values {
		if !domain.IsFinite(v) || v < 0 || v != math.Trunc(v) || v > maxCounterInput {
			return nil, domain.Invalid(code, "%s must be a non-negative whole number", names[i])
		}

		out[i] = int64(v)
	}

	return out, nil
}

func fits(counter, delta int64) bool {
	return counter <= math.MaxInt64-delta
}

func validDate(s string) bool {
	t, err := time.Parse(dateLayout, s)

	return err == nil && t.Format(dateLayout) == s
}

func indexOf(games []domain.Game, id int64) int {
	for i, g := range games {
		if g.ID == id {
			return i
		}
	}

	return -1
}

// nextID is the creation time in Unix milliseconds, bumped past the largest
// existing id so ids stay unique and increasing.
func nextID(games []domain.Game, now time.Time) int64 {
	id := now.UnixMilli()

	for _, g := range games {
		if g.ID >= id {
			id = g.ID + 1
		}
	}

	return id
}
