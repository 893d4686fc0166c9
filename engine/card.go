// Package engine implements the rules-accurate Lorcana game engine: card
// instances, zones, the effect resolver and trigger bag, turn phases, player
// actions, and win conditions.
package engine

import (
	"github.com/google/uuid"

	"github.com/signalnine/lorcana-evolve/catalog"
)

// Zone is the current location of a card instance.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneInkwell
	ZonePlay
	ZoneDiscard
)

// Modifier is a temporary or durable adjustment to a card's strength or
// keyword set, cloned (never aliased) whenever a card's state is copied, per
// the engine's Shift-transfer discipline.
type Modifier struct {
	Strength int
	Keyword  catalog.Keyword
	// UntilEndOfTurn is true for quest/challenge Support bonuses and similar
	// temporary effects; false for duration-"game" effects like Shift-applied
	// keywords.
	UntilEndOfTurn bool
}

// Card is a single physical instance of a card in play: the catalog
// definition it was printed from, plus all mutable per-game state.
type Card struct {
	InstanceID string
	Def        *catalog.CardDef
	Owner      int
	Zone       Zone

	Damage       int
	Exerted      bool
	TurnPlayed   int
	ShiftedCost  int // set by a SetShiftCost effect and read by EffectiveCost; 0 means unset

	StrengthMods []Modifier
	KeywordMods  []Modifier
}

// NewCard instantiates a fresh card instance owned by playerID.
func NewCard(def *catalog.CardDef, owner int) *Card {
	return &Card{
		InstanceID: uuid.NewString(),
		Def:        def,
		Owner:      owner,
		Zone:       ZoneDeck,
		TurnPlayed: -1,
	}
}

// Strength is the card's current strength: base plus every active modifier.
func (c *Card) Strength() int {
	s := c.Def.Strength
	for _, m := range c.StrengthMods {
		s += m.Strength
	}
	return s
}

// Willpower is the card's printed willpower; nothing in this ruleset
// modifies willpower directly.
func (c *Card) Willpower() int {
	return c.Def.Willpower
}

// HasKeyword reports whether the card currently carries keyword k, whether
// printed or granted by a modifier.
func (c *Card) HasKeyword(k catalog.Keyword) bool {
	if c.Def.HasKeyword(k) {
		return true
	}
	for _, m := range c.KeywordMods {
		if m.Keyword == k {
			return true
		}
	}
	return false
}

// KeywordValue returns the numeric value for keyword k (Challenger +N,
// Resist +N, Shift N, Singer N), printed or granted.
func (c *Card) KeywordValue(k catalog.Keyword) int {
	if v := c.Def.KeywordValue(k); v != 0 {
		return v
	}
	best := 0
	for _, m := range c.KeywordMods {
		if m.Keyword == k {
			best = m.Strength
		}
	}
	return best
}

// BaseName is the card's subtitle-stripped name, used for Shift-target and
// mirror-name-challenge matching.
func (c *Card) BaseName() string {
	return c.Def.BaseName()
}

// EffectiveCost is the ink cost to play this card: the Shift-discounted cost
// if one was set by a SetShiftCost effect during a prior Shift play,
// otherwise the printed cost.
func (c *Card) EffectiveCost() int {
	if c.ShiftedCost > 0 {
		return c.ShiftedCost
	}
	return c.Def.Cost
}

// TakeDamage adds dmg damage counters to the card.
func (c *Card) TakeDamage(dmg int) {
	if dmg < 0 {
		dmg = 0
	}
	c.Damage += dmg
}

// IsBanishable reports whether accumulated damage meets or exceeds willpower.
func (c *Card) IsBanishable() bool {
	return c.Damage >= c.Willpower()
}

// CloneModifiers returns a deep copy of strength and keyword modifier slices,
// used whenever a card's state is structurally copied (e.g. Shift transfer)
// so the two cards never share backing arrays.
func CloneModifiers(mods []Modifier) []Modifier {
	if len(mods) == 0 {
		return nil
	}
	out := make([]Modifier, len(mods))
	copy(out, mods)
	return out
}

// ClearEndOfTurnMods removes every modifier tagged UntilEndOfTurn, called at
// end of turn per spec §4.5.
func ClearEndOfTurnMods(c *Card) {
	c.StrengthMods = filterMods(c.StrengthMods)
	c.KeywordMods = filterMods(c.KeywordMods)
}

func filterMods(mods []Modifier) []Modifier {
	var out []Modifier
	for _, m := range mods {
		if !m.UntilEndOfTurn {
			out = append(out, m)
		}
	}
	return out
}
