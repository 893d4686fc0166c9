// Package ga drives the genetic algorithm over 60-card decks using
// github.com/MaxHalford/eaopt as the generation-loop engine, with a
// domain-specific DeckGenome implementing eaopt.Genome: the color-pair
// constrained crossover and mutation algorithms this package implements are
// copied in semantics (not in syntax) from the original deck evolution
// implementation.
package ga

import (
	"context"
	"math/rand"

	"github.com/MaxHalford/eaopt"

	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/deck"
	"github.com/signalnine/lorcana-evolve/fitness"
)

// sharedContext carries everything every DeckGenome in a run needs but that
// does not belong on the chromosome itself: the catalog, the fitness
// evaluator, and the run's seed. It is set once per run by Optimizer.Run and
// read by every genome's Evaluate call, never mutated
// concurrently (design note: no hidden globals — this is passed explicitly,
// not a package-level variable).
type sharedContext struct {
	cat            *catalog.Catalog
	evaluator      *fitness.Evaluator
	generationSeed int64
	ctx            context.Context
}

// DeckGenome is a 60-card chromosome. It implements eaopt.Genome so the
// generation loop itself is driven by eaopt rather than a hand-rolled loop,
// following the same wiring shape used elsewhere in the retrieved example
// pack for evolving a constrained card collection.
type DeckGenome struct {
	IDs   []catalog.CardID
	Index int // seed-derivation index passed to the evaluator; Optimizer's factory sets 0 and clones keep their parent's value

	shared *sharedContext
}

// NewDeckGenome wraps a generated deck as a genome bound to shared.
func NewDeckGenome(d deck.Deck, index int, shared *sharedContext) *DeckGenome {
	ids := make([]catalog.CardID, len(d))
	copy(ids, d)
	return &DeckGenome{IDs: ids, Index: index, shared: shared}
}

// Deck returns this genome's chromosome as a deck.Deck.
func (g *DeckGenome) Deck() deck.Deck {
	d := make(deck.Deck, len(g.IDs))
	copy(d, g.IDs)
	return d
}

// Evaluate returns the negated win rate, since eaopt minimizes fitness by
// convention and this domain's fitness (win rate) should be maximized.
func (g *DeckGenome) Evaluate() (float64, error) {
	res, err := g.shared.evaluator.Evaluate(g.shared.ctx, g.Deck(), g.shared.generationSeed, g.Index)
	if err != nil {
		return 0, err
	}
	return -res.Fitness, nil
}

// Mutate applies the configured per-gene mutation rate: each gene is
// independently replaced, with probability MutationRate, by a uniformly
// random eligible card id for this deck's own color pair, then the genome
// is repaired to restore the length-60/at-most-4-copies invariants.
func (g *DeckGenome) Mutate(rng *rand.Rand) {
	pair := g.colorPair()
	eligible := g.shared.cat.EligibleForPair(pair)
	if len(eligible) == 0 {
		return
	}

	for i := range g.IDs {
		if rng.Float64() < MutationRate {
			g.IDs[i] = eligible[rng.Intn(len(eligible))]
		}
	}
	g.repair(rng, eligible)
}

// Crossover replaces this genome's chromosome with a child built from this
// genome and other, using the exact color-pair-filtered-pool algorithm: the
// child adopts this genome's (the first parent's) canonical color pair,
// builds a shuffled pool from the union of both parents' ids filtered to
// that pair's eligible set, and packs it respecting the at-most-4-copies
// rule, topping up from the full eligible list if the pool runs dry.
// Falls back to a copy of this genome (parent one) if the resulting pool of
// eligible cards is empty, per spec §7's degenerate-crossover rule.
func (g *DeckGenome) Crossover(other eaopt.Genome, rng *rand.Rand) {
	parent2, ok := other.(*DeckGenome)
	if !ok {
		return
	}

	pair := g.colorPair()
	eligible := g.shared.cat.EligibleForPair(pair)
	if len(eligible) == 0 {
		return // degenerate: keep g as parent1's copy
	}
	eligibleSet := make(map[catalog.CardID]bool, len(eligible))
	for _, id := range eligible {
		eligibleSet[id] = true
	}

	union := append(append([]catalog.CardID{}, g.IDs...), parent2.IDs...)
	var pool []catalog.CardID
	for _, id := range union {
		if eligibleSet[id] {
			pool = append(pool, id)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	child := make([]catalog.CardID, 0, deck.Size)
	counts := make(map[catalog.CardID]int)
	for _, id := range pool {
		if len(child) == deck.Size {
			break
		}
		if counts[id] >= deck.MaxCopies {
			continue
		}
		child = append(child, id)
		counts[id]++
	}

	if len(child) < deck.Size {
		for _, id := range eligible {
			if len(child) == deck.Size {
				break
			}
			for counts[id] < deck.MaxCopies && len(child) < deck.Size {
				child = append(child, id)
				counts[id]++
			}
		}
	}

	g.IDs = child
}

// Clone returns a deep copy of g, sharing the same sharedContext.
func (g *DeckGenome) Clone() eaopt.Genome {
	ids := make([]catalog.CardID, len(g.IDs))
	copy(ids, g.IDs)
	return &DeckGenome{IDs: ids, Index: g.Index, shared: g.shared}
}

// colorPair returns the canonical color pair of g's own deck, computed
// directly from its chromosome rather than stored, so crossover/mutation
// never drift from the chromosome's actual composition.
func (g *DeckGenome) colorPair() catalog.ColorPair {
	colors := deck.Colors(g.Deck(), g.shared.cat)
	if len(colors) == 0 {
		return catalog.AllColorPairs()[0]
	}
	if len(colors) == 1 {
		return catalog.NewColorPair(colors[0], colors[0])
	}
	return catalog.NewColorPair(colors[0], colors[1])
}

// repair enforces the length-60/at-most-4-copies invariants after mutation,
// trimming overflow copies and topping up from eligible if mutation left the
// genome short.
func (g *DeckGenome) repair(rng *rand.Rand, eligible []catalog.CardID) {
	counts := make(map[catalog.CardID]int)
	var fixed []catalog.CardID
	for _, id := range g.IDs {
		if counts[id] >= deck.MaxCopies {
			continue
		}
		fixed = append(fixed, id)
		counts[id]++
	}
	for len(fixed) < deck.Size && len(eligible) > 0 {
		id := eligible[rng.Intn(len(eligible))]
		if counts[id] >= deck.MaxCopies {
			continue
		}
		fixed = append(fixed, id)
		counts[id]++
	}
	if len(fixed) > deck.Size {
		fixed = fixed[:deck.Size]
	}
	g.IDs = fixed
}
