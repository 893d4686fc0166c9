package ga

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/deck"
)

// ambercatCatalog builds 20 distinct cards split across Amber and Amethyst:
// enough (60/4 = 15 minimum distinct ids) for a legal 60-card deck under the
// at-most-4-copies rule, and genuinely two-colored so colorPair() resolves
// to one of the catalog's precomputed pairs rather than a self-pair.
func ambercatCatalog() *catalog.Catalog {
	var defs []*catalog.CardDef
	for i := 0; i < 20; i++ {
		color := catalog.Amber
		if i%2 == 1 {
			color = catalog.Amethyst
		}
		defs = append(defs, &catalog.CardDef{
			ID: catalog.CardID(i), Name: string(rune('A' + i)), Cost: 1, Inkable: true,
			Strength: 1, Willpower: 1, Lore: 1, Type: catalog.TypeCharacter,
			Colors:        []catalog.Color{color},
			Keywords:      map[catalog.Keyword]bool{},
			KeywordValues: map[catalog.Keyword]int{},
		})
	}
	return catalog.NewCatalog(defs)
}

func buildLegalDeck(t *testing.T, cat *catalog.Catalog, rng *rand.Rand) deck.Deck {
	d, _, err := deck.GenerateRandom(cat, rng)
	require.NoError(t, err)
	return d
}

func TestDeckGenome_CrossoverProducesLegalChild(t *testing.T) {
	cat := ambercatCatalog()
	rng := rand.New(rand.NewSource(1))

	shared := &sharedContext{cat: cat}

	d1 := buildLegalDeck(t, cat, rng)
	d2 := buildLegalDeck(t, cat, rng)

	g1 := NewDeckGenome(d1, 0, shared)
	g2 := NewDeckGenome(d2, 1, shared)

	g1.Crossover(g2, rng)

	assert.True(t, deck.IsLegal(g1.Deck(), cat))
}

func TestDeckGenome_MutateProducesLegalDeck(t *testing.T) {
	cat := ambercatCatalog()
	rng := rand.New(rand.NewSource(2))

	shared := &sharedContext{cat: cat}
	d := buildLegalDeck(t, cat, rng)
	g := NewDeckGenome(d, 0, shared)

	for i := 0; i < 20; i++ {
		g.Mutate(rng)
	}

	assert.True(t, deck.IsLegal(g.Deck(), cat))
}

func TestDeckGenome_CrossoverDegenerateFallsBackToParent(t *testing.T) {
	// A catalog with zero eligible cards for the chromosome's own color pair
	// (impossible chromosome content) exercises the degenerate fallback: the
	// genome keeps parent one's chromosome unchanged.
	cat := catalog.NewCatalog(nil)
	shared := &sharedContext{cat: cat}

	ids := make([]catalog.CardID, deck.Size)
	for i := range ids {
		ids[i] = catalog.CardID(i % 20)
	}
	d := deck.Deck(ids)

	g1 := NewDeckGenome(d, 0, shared)
	g2 := NewDeckGenome(d, 1, shared)
	before := g1.Deck()

	rng := rand.New(rand.NewSource(3))
	g1.Crossover(g2, rng)

	assert.Equal(t, before, g1.Deck())
}

func TestDeckGenome_Clone(t *testing.T) {
	cat := ambercatCatalog()
	rng := rand.New(rand.NewSource(4))
	shared := &sharedContext{cat: cat}
	d := buildLegalDeck(t, cat, rng)
	g := NewDeckGenome(d, 0, shared)

	clone, ok := g.Clone().(*DeckGenome)
	require.True(t, ok)
	assert.Equal(t, g.Deck(), clone.Deck())

	clone.IDs[0] = clone.IDs[0] + 1000
	assert.NotEqual(t, g.IDs[0], clone.IDs[0], "clone must not share backing array with the original")
}
