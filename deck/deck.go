// Package deck models a 60-card chromosome, its legality rules, and random
// generation constrained to a single ink-color pair.
package deck

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/signalnine/lorcana-evolve/catalog"
)

const (
	// Size is the fixed deck length required for legality.
	Size = 60
	// MaxCopies is the maximum number of copies of any one card id allowed.
	MaxCopies = 4
	// MinEligibleForGeneration is the minimum number of eligible cards a
	// color pair must have before GenerateRandom will build a deck from it;
	// below this the generator resamples a different pair.
	MinEligibleForGeneration = 15
)

// Deck is a sorted sequence of exactly Size card ids. The sort order is not
// semantically meaningful but makes two decks with the same composition
// compare equal and hashes stably for the fitness cache.
type Deck []catalog.CardID

// Sorted returns a copy of d sorted in ascending id order.
func (d Deck) Sorted() Deck {
	out := make(Deck, len(d))
	copy(out, d)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CacheKey returns a stable string key for d, suitable for content-addressed
// caching; two decks with the same multiset of ids produce the same key.
func (d Deck) CacheKey() string {
	s := d.Sorted()
	key := make([]byte, 0, len(s)*7)
	for i, id := range s {
		if i > 0 {
			key = append(key, ',')
		}
		key = append(key, []byte(fmt.Sprintf("%d", id))...)
	}
	return string(key)
}

// ValidationError reports a single deck-legality violation. Mirrors the
// {Field, Message} shape used for genome-consistency errors in the engine's
// sibling domain, generalized here to deck-legality checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validate checks d against every legality rule: exactly Size cards, every
// id resolvable in cat, at most MaxCopies of any one id, and a color
// footprint of at most two ink colors plus colorless. An empty return value
// means the deck is legal.
func Validate(d Deck, cat *catalog.Catalog) []ValidationError {
	var errs []ValidationError

	if len(d) != Size {
		errs = append(errs, ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("deck has %d cards, need exactly %d", len(d), Size),
		})
	}

	counts := make(map[catalog.CardID]int)
	for _, id := range d {
		if _, ok := cat.ByID(id); !ok {
			errs = append(errs, ValidationError{
				Field:   "cards",
				Message: fmt.Sprintf("card id %d not found in catalog", id),
			})
			continue
		}
		counts[id]++
	}
	for id, n := range counts {
		if n > MaxCopies {
			def, _ := cat.ByID(id)
			errs = append(errs, ValidationError{
				Field:   "copies",
				Message: fmt.Sprintf("card %q appears %d times, max is %d", def.Name, n, MaxCopies),
			})
		}
	}

	colors := Colors(d, cat)
	if len(colors) > 2 {
		errs = append(errs, ValidationError{
			Field:   "colors",
			Message: fmt.Sprintf("deck uses %d ink colors, max is 2", len(colors)),
		})
	}

	return errs
}

// IsLegal reports whether d passes every Validate check.
func IsLegal(d Deck, cat *catalog.Catalog) bool {
	return len(Validate(d, cat)) == 0
}

// Colors returns the sorted, deduplicated set of ink colors actually present
// among d's cards (colorless cards contribute nothing). This is the
// "deck_colors" extractor named in spec §4.2.
func Colors(d Deck, cat *catalog.Catalog) []catalog.Color {
	seen := make(map[catalog.Color]bool)
	for _, id := range d {
		def, ok := cat.ByID(id)
		if !ok {
			continue
		}
		for _, c := range def.Colors {
			seen[c] = true
		}
	}
	var out []catalog.Color
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GenerateRandom builds a legal random deck restricted to a randomly sampled
// color pair (plus colorless). If the pair's eligible pool has fewer than
// MinEligibleForGeneration distinct cards, a different random pair is
// resampled, matching the original generator's resample-until-viable rule.
func GenerateRandom(cat *catalog.Catalog, rng *rand.Rand) (Deck, ColorPairUsed, error) {
	pairs := catalog.AllColorPairs()
	if len(pairs) == 0 {
		return nil, ColorPairUsed{}, fmt.Errorf("no color pairs available")
	}

	const maxAttempts = 200
	for attempt := 0; attempt < maxAttempts; attempt++ {
		pair := pairs[rng.Intn(len(pairs))]
		eligible := cat.EligibleForPair(pair)
		if len(eligible) < MinEligibleForGeneration {
			continue
		}
		d := buildFromPool(eligible, rng)
		return d, ColorPairUsed{First: pair.First, Second: pair.Second}, nil
	}
	return nil, ColorPairUsed{}, fmt.Errorf("no color pair reached %d eligible cards after %d attempts", MinEligibleForGeneration, maxAttempts)
}

// ColorPairUsed reports which two colors a generated deck was built from.
type ColorPairUsed struct {
	First, Second catalog.Color
}

// buildFromPool fills a MaxCopies-respecting pool (each eligible id repeated
// up to MaxCopies times), shuffles it, and takes the first Size entries.
func buildFromPool(eligible []catalog.CardID, rng *rand.Rand) Deck {
	pool := make([]catalog.CardID, 0, len(eligible)*MaxCopies)
	for _, id := range eligible {
		for i := 0; i < MaxCopies; i++ {
			pool = append(pool, id)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := Size
	if n > len(pool) {
		n = len(pool)
	}
	d := make(Deck, n)
	copy(d, pool[:n])
	return d.Sorted()
}
