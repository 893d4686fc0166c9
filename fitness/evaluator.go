// Package fitness evaluates a candidate deck's win rate against a fixed set
// of meta decks by running simulated games through the engine and policy
// packages. It is the sole concurrency boundary in the system: everything
// upstream and downstream of it is single-threaded (spec §5).
package fitness

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/deck"
	"github.com/signalnine/lorcana-evolve/engine"
	"github.com/signalnine/lorcana-evolve/policy"
)

// Config controls how many games are run and how hard the evaluator works
// to shortcut obviously-decided matchups.
type Config struct {
	GamesPerMatchup int
	MaxTurns        int
	Workers         int
	// EarlyTerminate enables extrapolation once the remaining games in a
	// matchup cannot change whether the candidate deck is judged the winner
	// of that matchup by more than ExtrapolationThreshold.
	EarlyTerminate         bool
	ExtrapolationThreshold float64
}

// DefaultConfig returns reasonable defaults for interactive use.
func DefaultConfig() Config {
	return Config{
		GamesPerMatchup:        20,
		MaxTurns:               50,
		Workers:                4,
		EarlyTerminate:         true,
		ExtrapolationThreshold: 0.05,
	}
}

// MatchupResult is the outcome of simulating one candidate-vs-meta-deck
// matchup.
type MatchupResult struct {
	MetaDeckIndex int
	Wins          int
	GamesPlayed   int
}

// WinRate is Wins/GamesPlayed, or 0 if no games were played.
func (r MatchupResult) WinRate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.GamesPlayed)
}

// Result is the full fitness evaluation of one candidate deck: its overall
// win rate (the fitness score proper) and the per-meta-deck breakdown.
type Result struct {
	Fitness  float64
	Matchups []MatchupResult
}

// Evaluator runs matchups for candidate decks against a fixed slate of meta
// decks, caching results by deck composition.
type Evaluator struct {
	cat       *catalog.Catalog
	metaDecks []deck.Deck
	cfg       Config
	logger    *zap.SugaredLogger
	cache     *cache
}

// NewEvaluator constructs an Evaluator bound to a catalog and a fixed set of
// meta decks to benchmark against.
func NewEvaluator(cat *catalog.Catalog, metaDecks []deck.Deck, cfg Config, logger *zap.SugaredLogger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Evaluator{cat: cat, metaDecks: metaDecks, cfg: cfg, logger: logger, cache: newCache(256)}
}

// Evaluate runs (or retrieves from cache) the full matchup slate for
// candidate against every configured meta deck, using generationSeed and
// candidateIndex to derive deterministic per-game seeds, and returns the
// aggregate win rate as Fitness.
func (e *Evaluator) Evaluate(ctx context.Context, candidate deck.Deck, generationSeed int64, candidateIndex int) (Result, error) {
	key := candidate.CacheKey()
	if cached, ok := e.cache.get(key); ok {
		return cached, nil
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]MatchupResult, len(e.metaDecks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, meta := range e.metaDecks {
		i, meta := i, meta
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			mr, err := e.simulateMatchup(candidate, meta, i, generationSeed, candidateIndex)
			if err != nil {
				e.logger.Warnw("matchup evaluation failed, contributing zero wins", "metaDeckIndex", i, "error", err)
				mr = MatchupResult{MetaDeckIndex: i, Wins: 0, GamesPlayed: e.cfg.GamesPerMatchup}
			}
			results[i] = mr
			return nil
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		e.logger.Warnw("evaluation worker pool error", "error", err)
	}

	res := aggregate(results)
	e.cache.put(key, res)
	return res, nil
}

func aggregate(matchups []MatchupResult) Result {
	totalWins, totalGames := 0, 0
	for _, m := range matchups {
		totalWins += m.Wins
		totalGames += m.GamesPlayed
	}
	fit := 0.0
	if totalGames > 0 {
		fit = float64(totalWins) / float64(totalGames)
	}
	return Result{Fitness: fit, Matchups: matchups}
}

// simulateMatchup runs GamesPerMatchup games of candidate vs meta,
// alternating who goes first, with optional early termination by
// extrapolation once the outcome is statistically settled.
func (e *Evaluator) simulateMatchup(candidate, meta deck.Deck, metaIdx int, generationSeed int64, candidateIndex int) (MatchupResult, error) {
	wins := 0
	played := 0
	total := e.cfg.GamesPerMatchup

	for j := 0; j < total; j++ {
		seed := deriveSeed(generationSeed, candidateIndex, metaIdx, j)
		candidateGoesFirst := j%2 == 0

		won, err := e.simulateGame(candidate, meta, candidateGoesFirst, seed)
		if err != nil {
			return MatchupResult{}, fmt.Errorf("matchup %d game %d: %w", metaIdx, j, err)
		}
		played++
		if won {
			wins++
		}

		if e.cfg.EarlyTerminate && canExtrapolate(wins, played, total, e.cfg.ExtrapolationThreshold) {
			break
		}
	}

	// Extrapolate the unplayed remainder at the observed rate so every
	// matchup contributes a GamesPlayed total consistent with the
	// configured sample size.
	if played < total && played > 0 {
		rate := float64(wins) / float64(played)
		remaining := total - played
		wins += int(rate * float64(remaining))
		played = total
	}

	return MatchupResult{MetaDeckIndex: metaIdx, Wins: wins, GamesPlayed: played}, nil
}

// canExtrapolate reports whether the remaining games in a matchup of size
// total can no longer move the final win rate by threshold or more, i.e.
// whether it is safe to stop early. It is false before any game and after
// the last one.
func canExtrapolate(wins, played, total int, threshold float64) bool {
	if played == 0 || played == total {
		return false
	}
	remaining := total - played
	minRate := float64(wins) / float64(total)
	maxRate := float64(wins+remaining) / float64(total)
	return (maxRate - minRate) < threshold
}

// deriveSeed produces a deterministic per-game seed from a generation seed
// and a (candidate, matchup, game) index tuple, per spec §5.
func deriveSeed(generationSeed int64, candidateIndex, matchupIndex, gameIndex int) int64 {
	h := generationSeed
	h = h*1000003 + int64(candidateIndex)
	h = h*1000003 + int64(matchupIndex)
	h = h*1000003 + int64(gameIndex)
	if h < 0 {
		h = -h
	}
	return h
}

func (e *Evaluator) simulateGame(candidateDeck, metaDeck deck.Deck, candidateGoesFirst bool, seed int64) (bool, error) {
	rng := rand.New(rand.NewSource(seed))

	var first, second deck.Deck
	var firstID, secondID int
	if candidateGoesFirst {
		first, second = candidateDeck, metaDeck
		firstID, secondID = 1, 2
	} else {
		first, second = metaDeck, candidateDeck
		firstID, secondID = 1, 2
	}

	p1 := engine.NewPlayerState(firstID, first, e.cat, rng)
	p2 := engine.NewPlayerState(secondID, second, e.cat, rng)

	gs := engine.GetState()
	defer engine.PutState(gs)
	engine.InitGameState(gs, p1, p2, e.cat, seed, e.logger)

	winner, _ := gs.RunGame(e.cfg.MaxTurns, policy.RunMainPhase)

	candidateWon := (candidateGoesFirst && winner == firstID) || (!candidateGoesFirst && winner == secondID)
	return candidateWon, nil
}
