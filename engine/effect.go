package engine

import "github.com/signalnine/lorcana-evolve/catalog"

// Duration distinguishes a modifier that lasts until end of turn from one
// that lasts for the rest of the game.
type Duration int

const (
	DurationEndOfTurn Duration = iota
	DurationGame
)

// EffectKind is a closed sum type over every effect a card's ability schema
// can perform (spec §4.4). Each concrete kind is an unexported-marker struct
// resolved by a type switch in Resolve, the same idiom the teacher applies
// to turn phases via its Phase interface — reused here for effects per the
// design note on avoiding string-keyed dynamic dispatch.
type EffectKind interface {
	effectMarker()
}

type DealDamage struct{ Value int }
type DrawCard struct{ Value int }
type Banish struct{}
type ReturnToHand struct{}
type GainStrength struct {
	Value    int
	Duration Duration
}
type GainKeyword struct {
	Keyword  catalog.Keyword
	Duration Duration
}
type AddKeyword struct{ Keyword catalog.Keyword }
type SetShiftCost struct{ Value int }
type SingerEffect struct{ Value int }
type ReadyCharacter struct{}
type RemoveDamage struct{ Value int }
type RemoveAllDamage struct{}
type GainLore struct{ Value int }
type LoseLore struct{ Value int }
type GrantStatus struct {
	Status   catalog.Keyword
	Duration Duration
}
type OpponentChoosesAndBanishes struct{}

func (DealDamage) effectMarker()                 {}
func (DrawCard) effectMarker()                   {}
func (Banish) effectMarker()                     {}
func (ReturnToHand) effectMarker()                {}
func (GainStrength) effectMarker()               {}
func (GainKeyword) effectMarker()                {}
func (AddKeyword) effectMarker()                 {}
func (SetShiftCost) effectMarker()               {}
func (SingerEffect) effectMarker()               {}
func (ReadyCharacter) effectMarker()              {}
func (RemoveDamage) effectMarker()                {}
func (RemoveAllDamage) effectMarker()             {}
func (GainLore) effectMarker()                   {}
func (LoseLore) effectMarker()                   {}
func (GrantStatus) effectMarker()                {}
func (OpponentChoosesAndBanishes) effectMarker() {}

// TargetSelector is a closed sum type over every way an effect can pick its
// targets (spec §4.4).
type TargetSelector int

const (
	TargetSelf TargetSelector = iota
	TargetChosenCharacter
	TargetAllCharacters
	TargetOpponentCharacters
	TargetFriendlyCharacters
	TargetOpponent
	TargetController
)

// Effect pairs a kind with the selector that picks its targets and the
// trigger condition that queues it (OnPlay, OnQuest, etc.), as parsed from a
// CardDef's Ability schema.
type Effect struct {
	Kind     EffectKind
	Selector TargetSelector
	Trigger  string
}

// ResolveTargets expands a selector into the concrete cards it refers to.
// Open Question 1: Self means the card itself, never an indirected player —
// effects that need the player (e.g. DrawCard from an OnPlay ability) reach
// it via source.Owner instead of resolving Self to a player.
func ResolveTargets(gs *GameState, sel TargetSelector, source *Card, chosen []*Card) []*Card {
	switch sel {
	case TargetSelf:
		return []*Card{source}
	case TargetChosenCharacter:
		return chosen
	case TargetAllCharacters:
		var all []*Card
		for _, p := range gs.Players {
			all = append(all, p.Play...)
		}
		return all
	case TargetOpponentCharacters:
		return gs.GetOpponent(source.Owner).Play
	case TargetFriendlyCharacters:
		return gs.GetPlayer(source.Owner).Play
	default:
		return nil
	}
}

// Resolve applies a single effect to its resolved targets. Ward-protected
// targets controlled by the source's opponent are dropped here first (see
// excludeOpponentWard). A nil Kind, which abilityToEffect produces for an
// unrecognized kind string, is a no-op logged at debug level, matching spec
// §7's unknown-kind-dropped-silently rule.
func Resolve(gs *GameState, eff Effect, source *Card, chosen []*Card) {
	targets := ResolveTargets(gs, eff.Selector, source, chosen)
	targets = excludeOpponentWard(targets, source)
	if len(targets) == 0 {
		return
	}
	if eff.Kind == nil {
		gs.Logger.Debugw("unknown effect kind ignored", "card", source.Def.Name)
		return
	}

	switch k := eff.Kind.(type) {
	case DealDamage:
		for _, t := range targets {
			t.TakeDamage(k.Value)
		}
		sweepBanished(gs)
	case DrawCard:
		drawer := gs.GetPlayer(source.Owner)
		if !drawer.DrawCards(k.Value) {
			w := gs.GetOpponent(drawer.ID).ID
			gs.Winner = &w
		}
	case Banish:
		for _, t := range targets {
			banishCharacter(gs, t)
		}
	case ReturnToHand:
		for _, t := range targets {
			gs.GetPlayer(t.Owner).RemoveFromPlay(t, ZoneHand)
		}
	case GainStrength:
		for _, t := range targets {
			t.StrengthMods = append(t.StrengthMods, Modifier{
				Strength: k.Value, UntilEndOfTurn: k.Duration == DurationEndOfTurn,
			})
		}
	case GainKeyword:
		for _, t := range targets {
			t.KeywordMods = append(t.KeywordMods, Modifier{
				Keyword: k.Keyword, UntilEndOfTurn: k.Duration == DurationEndOfTurn,
			})
		}
	case AddKeyword:
		for _, t := range targets {
			t.KeywordMods = append(t.KeywordMods, Modifier{Keyword: k.Keyword})
		}
	case SetShiftCost:
		for _, t := range targets {
			t.ShiftedCost = k.Value
		}
	case SingerEffect:
		for _, t := range targets {
			t.KeywordMods = append(t.KeywordMods, Modifier{Keyword: catalog.KeywordSinger, Strength: k.Value})
		}
	case ReadyCharacter:
		for _, t := range targets {
			t.Exerted = false
		}
	case RemoveDamage:
		for _, t := range targets {
			t.Damage -= k.Value
			if t.Damage < 0 {
				t.Damage = 0
			}
		}
	case RemoveAllDamage:
		for _, t := range targets {
			t.Damage = 0
		}
	case GainLore:
		gs.GetPlayer(source.Owner).Lore += k.Value
	case LoseLore:
		for _, t := range targets {
			gs.GetPlayer(t.Owner).Lore -= k.Value
			if gs.GetPlayer(t.Owner).Lore < 0 {
				gs.GetPlayer(t.Owner).Lore = 0
			}
		}
	case GrantStatus:
		for _, t := range targets {
			t.KeywordMods = append(t.KeywordMods, Modifier{
				Keyword: k.Status, UntilEndOfTurn: k.Duration == DurationEndOfTurn,
			})
		}
	case OpponentChoosesAndBanishes:
		opp := gs.GetOpponent(source.Owner)
		candidates := FilterWardProtected(opp.Play)
		if len(candidates) == 0 {
			return
		}
		pick := candidates[gs.RNG.Intn(len(candidates))]
		banishCharacter(gs, pick)
	default:
		gs.Logger.Debugw("unhandled effect kind ignored", "card", source.Def.Name)
	}
}

// FilterWardProtected removes Ward-bearing cards from a candidate list,
// implementing the rule that opponent-sourced effects may never target Ward
// characters (spec §8 invariant: Opponent-effects-skip-Ward).
func FilterWardProtected(cards []*Card) []*Card {
	var out []*Card
	for _, c := range cards {
		if !c.HasKeyword(catalog.KeywordWard) {
			out = append(out, c)
		}
	}
	return out
}

// excludeOpponentWard drops any target that is both Ward-protected and
// controlled by a player other than the effect source's controller, per spec
// §8 invariant 8 ("effects with target Opponent… skip targets that have
// Ward"). Friendly-sourced targets (the card's own controller affecting
// their own board) are never filtered by Ward.
func excludeOpponentWard(targets []*Card, source *Card) []*Card {
	var out []*Card
	for _, t := range targets {
		if t.Owner != source.Owner && t.HasKeyword(catalog.KeywordWard) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// banishCharacter moves a character out of play: to hand with zero damage if
// it has Vanish, otherwise to discard (spec §8 invariant).
func banishCharacter(gs *GameState, c *Card) {
	owner := gs.GetPlayer(c.Owner)
	if c.HasKeyword(catalog.KeywordVanish) {
		owner.RemoveFromPlay(c, ZoneHand)
		return
	}
	owner.RemoveFromPlay(c, ZoneDiscard)
}

// sweepBanished moves every character whose damage has reached its
// willpower out of play, applying the Vanish/discard split above.
func sweepBanished(gs *GameState) {
	for _, p := range gs.Players {
		var toBanish []*Card
		for _, c := range p.Play {
			if c.IsBanishable() {
				toBanish = append(toBanish, c)
			}
		}
		for _, c := range toBanish {
			banishCharacter(gs, c)
		}
	}
}
