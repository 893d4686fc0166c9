package ga

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/MaxHalford/eaopt"
	"go.uber.org/zap"

	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/deck"
	"github.com/signalnine/lorcana-evolve/fitness"
)

// MutationRate is the per-gene probability a DeckGenome's Mutate replaces
// that gene with a fresh random eligible card.
const MutationRate = 0.05

// Config controls population size, generation count, selection pressure,
// and the saturation-based termination rule.
type Config struct {
	PopulationSize int
	Generations    int
	EliteCount     int
	// SaturationGenerations: terminate early if the best fitness has not
	// improved for this many consecutive generations.
	SaturationGenerations int
	Seed                  int64
}

// DefaultConfig returns reasonable defaults for interactive use.
func DefaultConfig() Config {
	return Config{
		PopulationSize:        40,
		Generations:           50,
		EliteCount:            4,
		SaturationGenerations: 10,
		Seed:                  1,
	}
}

// GenerationReport is handed to the per-generation Observer after each
// generation completes: the best genome found so far, the fitness history,
// an ETA for the remaining generations, and the champion's detailed matchup
// breakdown.
type GenerationReport struct {
	Generation int
	Best       deck.Deck
	BestFitness float64
	History     []float64
	ETA         time.Duration
	Matchups    []fitness.MatchupResult
}

// Observer receives one GenerationReport after every generation, the
// observation interface named in spec §6.
type Observer func(GenerationReport)

// Optimizer wires a DeckGenome population into github.com/MaxHalford/eaopt's
// GA engine, with a custom elitism Model, a saturation-based EarlyStop, and a
// Callback that feeds a GenerationReport to the caller's Observer.
type Optimizer struct {
	cat       *catalog.Catalog
	evaluator *fitness.Evaluator
	cfg       Config
	observer  Observer
	logger    *zap.SugaredLogger

	shared      *sharedContext
	history     []float64
	genStart    time.Time
	genDurations []time.Duration
	bestEver    float64
	stagnant    int
}

// NewOptimizer constructs an Optimizer bound to a catalog and fitness
// evaluator.
func NewOptimizer(cat *catalog.Catalog, evaluator *fitness.Evaluator, cfg Config, observer Observer, logger *zap.SugaredLogger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Optimizer{cat: cat, evaluator: evaluator, cfg: cfg, observer: observer, logger: logger, bestEver: -1}
}

// Run evolves a population of DeckGenomes for cfg.Generations (or until
// saturation) and returns the best deck found with its evaluated fitness.
func (o *Optimizer) Run(ctx context.Context) (deck.Deck, float64, error) {
	o.shared = &sharedContext{cat: o.cat, evaluator: o.evaluator, generationSeed: o.cfg.Seed, ctx: ctx}

	gaConfig := eaopt.NewDefaultGAConfig()
	gaConfig.NPops = 1
	gaConfig.NIndividuals = uint(o.cfg.PopulationSize)
	gaConfig.NGenerations = uint(o.cfg.Generations)
	gaConfig.HofSize = 1
	gaConfig.ParallelEval = false // fitness.Evaluator is its own concurrency boundary
	gaConfig.RNG = rand.New(rand.NewSource(o.cfg.Seed))
	gaConfig.Model = &elitismModel{eliteCount: o.cfg.EliteCount}

	genetic, err := gaConfig.NewGA()
	if err != nil {
		return nil, 0, fmt.Errorf("configuring genetic algorithm: %w", err)
	}

	o.genStart = time.Now()
	genetic.Callback = o.onGeneration
	genetic.EarlyStop = o.earlyStop

	factory := func(rng *rand.Rand) eaopt.Genome {
		d, _, err := deck.GenerateRandom(o.cat, rng)
		if err != nil {
			d = fallbackDeck(o.cat)
		}
		return NewDeckGenome(d, 0, o.shared)
	}

	if err := genetic.Minimize(factory); err != nil {
		return nil, 0, fmt.Errorf("running genetic algorithm: %w", err)
	}

	best, ok := genetic.HallOfFame[0].Genome.(*DeckGenome)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected hall-of-fame genome type")
	}
	return best.Deck(), -genetic.HallOfFame[0].Fitness, nil
}

func fallbackDeck(cat *catalog.Catalog) deck.Deck {
	pair := catalog.AllColorPairs()[0]
	eligible := cat.EligibleForPair(pair)
	d := make(deck.Deck, 0, deck.Size)
	for i := 0; len(d) < deck.Size && len(eligible) > 0; i++ {
		d = append(d, eligible[i%len(eligible)])
	}
	return d.Sorted()
}

func (o *Optimizer) onGeneration(genetic *eaopt.GA) {
	elapsed := time.Since(o.genStart)
	o.genDurations = append(o.genDurations, elapsed)
	o.genStart = time.Now()

	bestFitness := -genetic.HallOfFame[0].Fitness
	o.history = append(o.history, bestFitness)

	if bestFitness > o.bestEver {
		o.bestEver = bestFitness
		o.stagnant = 0
	} else {
		o.stagnant++
	}

	if o.observer == nil {
		return
	}

	avgGen := averageDuration(o.genDurations)
	remaining := int(o.cfg.Generations) - len(o.history)
	if remaining < 0 {
		remaining = 0
	}
	eta := time.Duration(remaining) * avgGen

	best, _ := genetic.HallOfFame[0].Genome.(*DeckGenome)
	var championDeck deck.Deck
	var matchups []fitness.MatchupResult
	if best != nil {
		championDeck = best.Deck()
		if res, err := o.evaluator.Evaluate(context.Background(), championDeck, o.cfg.Seed, best.Index); err == nil {
			matchups = res.Matchups
		}
	}

	o.observer(GenerationReport{
		Generation:  len(o.history),
		Best:        championDeck,
		BestFitness: bestFitness,
		History:     append([]float64(nil), o.history...),
		ETA:         eta,
		Matchups:    matchups,
	})
}

func (o *Optimizer) earlyStop(genetic *eaopt.GA) bool {
	if ctx := o.shared.ctx; ctx != nil && ctx.Err() != nil {
		return true
	}
	return o.cfg.SaturationGenerations > 0 && o.stagnant >= o.cfg.SaturationGenerations
}

func averageDuration(durs []time.Duration) time.Duration {
	n := len(durs)
	if n == 0 {
		return 0
	}
	if n > 5 {
		durs = durs[n-5:]
		n = 5
	}
	var total time.Duration
	for _, d := range durs {
		total += d
	}
	return total / time.Duration(n)
}

// elitismModel implements eaopt.Model: it keeps the top EliteCount
// individuals unchanged and replaces the rest of the population via
// tournament-selected crossover and mutation, generalizing the selection
// strategies (tournament/elitism) the teacher's own hand-rolled
// evolution/selection.go offered as configurable options.
type elitismModel struct {
	eliteCount int
}

// Apply evolves pop in place for one generation.
func (m *elitismModel) Apply(pop *eaopt.Population) error {
	pop.Individuals.SortByFitness()

	elite := m.eliteCount
	if elite > len(pop.Individuals) {
		elite = len(pop.Individuals)
	}

	next := make(eaopt.Individuals, 0, len(pop.Individuals))
	for i := 0; i < elite; i++ {
		next = append(next, pop.Individuals[i].Clone(pop.RNG))
	}

	for len(next) < len(pop.Individuals) {
		p1 := tournamentSelect(pop.Individuals, pop.RNG)
		p2 := tournamentSelect(pop.Individuals, pop.RNG)
		child := p1.Clone(pop.RNG)
		child.Genome.Crossover(p2.Genome, pop.RNG)
		child.Genome.Mutate(pop.RNG)
		child.Fitness = eaopt.NullFitness
		next = append(next, child)
	}

	pop.Individuals = next
	return pop.Individuals.Evaluate(false)
}

// Validate satisfies eaopt.Model; this model imposes no extra constraints.
func (m *elitismModel) Validate() error {
	return nil
}

func tournamentSelect(individuals eaopt.Individuals, rng *rand.Rand) eaopt.Individual {
	const tournamentSize = 3
	best := individuals[rng.Intn(len(individuals))]
	for i := 1; i < tournamentSize; i++ {
		cand := individuals[rng.Intn(len(individuals))]
		if cand.Fitness < best.Fitness {
			best = cand
		}
	}
	return best
}
