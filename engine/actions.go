package engine

import (
	"errors"

	"github.com/signalnine/lorcana-evolve/catalog"
)

var (
	ErrAlreadyInked       = errors.New("already inked this turn")
	ErrNotInkable         = errors.New("card is not inkable")
	ErrInsufficientInk    = errors.New("insufficient available ink")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrCardNotActionable  = errors.New("card cannot act: exerted or has summoning sickness")
	ErrInvalidTarget      = errors.New("invalid target for this action")
	ErrRecklessMustAttack = errors.New("Reckless character must challenge if a target is available")
	ErrSingerTooWeak      = errors.New("combined Singer value does not cover the song's cost")
	ErrSingerNotReady     = errors.New("a singer is exerted or has summoning sickness")
)

// Ink plays card c from hand face-down into the inkwell.
func Ink(gs *GameState, playerID int, c *Card) error {
	p := gs.GetPlayer(playerID)
	if p.HasInkedThisTurn {
		return ErrAlreadyInked
	}
	if !c.Def.Inkable {
		return ErrNotInkable
	}
	if !p.InkCard(c) {
		return ErrCardNotInHand
	}
	return nil
}

// Play puts card c from hand into the player's play area (or discard, for
// one-off Actions/Songs), paying its printed cost and resolving any OnPlay
// effects through the trigger bag.
func Play(gs *GameState, playerID int, c *Card) error {
	return playCard(gs, playerID, c, nil)
}

// PlayViaShift plays c using its Shift ability on top of shiftTarget,
// transferring shiftTarget's board state onto c per the explicit structural
// copy required by the engine's Shift-transfer discipline (design note §9):
// exerted flag, damage, turn played, and cloned (never aliased) modifier
// lists all move from shiftTarget to c, and shiftTarget leaves play.
func PlayViaShift(gs *GameState, playerID int, c, shiftTarget *Card) error {
	if !c.HasKeyword(catalog.KeywordShift) {
		return ErrInvalidTarget
	}
	if shiftTarget.BaseName() != c.BaseName() {
		return ErrInvalidTarget
	}
	shiftCost := c.KeywordValue(catalog.KeywordShift)
	return playCard(gs, playerID, c, &shiftPlan{target: shiftTarget, cost: shiftCost})
}

type shiftPlan struct {
	target *Card
	cost   int
}

func playCard(gs *GameState, playerID int, c *Card, shift *shiftPlan) error {
	p := gs.GetPlayer(playerID)
	cost := c.Def.Cost
	if shift != nil {
		cost = shift.cost
	}
	if !p.ExertInk(cost) {
		return ErrInsufficientInk
	}
	idx := indexOfCard(p.Hand, c)
	if idx < 0 {
		return ErrCardNotInHand
	}
	p.Hand = removeCard(p.Hand, idx)
	c.TurnPlayed = gs.TurnNumber

	if shift != nil {
		target := shift.target
		c.Exerted = target.Exerted
		c.Damage = target.Damage
		c.TurnPlayed = target.TurnPlayed
		c.StrengthMods = CloneModifiers(target.StrengthMods)
		c.KeywordMods = CloneModifiers(target.KeywordMods)
		p.RemoveFromPlay(target, ZoneDiscard)
	}

	switch c.Def.Type {
	case catalog.TypeCharacter, catalog.TypeItem, catalog.TypeLocation:
		c.Zone = ZonePlay
		p.Play = append(p.Play, c)
	default: // Action, Song: resolved once, then discarded
		c.Zone = ZoneDiscard
		p.Discard = append(p.Discard, c)
	}

	queueAbilitiesForTrigger(gs, c, "OnPlay")
	gs.Trigger.Drain(gs)
	return nil
}

// queueAbilitiesForTrigger adds every ability on c's definition matching
// trigger to the trigger bag, owned by c's controller.
func queueAbilitiesForTrigger(gs *GameState, c *Card, trigger string) {
	for _, a := range c.Def.Abilities {
		if a.Trigger != trigger {
			continue
		}
		eff := abilityToEffect(a)
		if eff.Kind == nil {
			gs.Logger.Debugw("unrecognized ability kind ignored", "card", c.Def.Name, "kind", a.Kind)
		}
		gs.Trigger.Add(c.Owner, eff, c, nil)
	}
}

// abilityToEffect converts a catalog.Ability's untyped schema fields into a
// typed Effect. A kind string with no matching EffectKind leaves Kind nil,
// which Resolve treats as a no-op (spec §7 unknown-kind rule).
func abilityToEffect(a catalog.Ability) Effect {
	sel := parseSelector(a.Selector)
	var kind EffectKind
	switch a.Kind {
	case "DealDamage":
		kind = DealDamage{Value: a.Value}
	case "DrawCard":
		kind = DrawCard{Value: a.Value}
	case "Banish":
		kind = Banish{}
	case "ReturnToHand":
		kind = ReturnToHand{}
	case "GainStrength":
		kind = GainStrength{Value: a.Value, Duration: DurationEndOfTurn}
	case "GainKeyword":
		kind = GainKeyword{Keyword: catalog.Keyword(a.Keyword), Duration: DurationEndOfTurn}
	case "AddKeyword":
		kind = AddKeyword{Keyword: catalog.Keyword(a.Keyword)}
	case "SetShiftCost":
		kind = SetShiftCost{Value: a.Value}
	case "Singer":
		kind = SingerEffect{Value: a.Value}
	case "ReadyCharacter":
		kind = ReadyCharacter{}
	case "RemoveDamage":
		kind = RemoveDamage{Value: a.Value}
	case "RemoveAllDamage":
		kind = RemoveAllDamage{}
	case "GainLore":
		kind = GainLore{Value: a.Value}
	case "LoseLore":
		kind = LoseLore{Value: a.Value}
	case "GrantStatus":
		kind = GrantStatus{Status: catalog.Keyword(a.Keyword), Duration: DurationEndOfTurn}
	case "OpponentChoosesAndBanishes":
		kind = OpponentChoosesAndBanishes{}
	}
	return Effect{Kind: kind, Selector: sel, Trigger: a.Trigger}
}

func parseSelector(s string) TargetSelector {
	switch s {
	case "ChosenCharacter":
		return TargetChosenCharacter
	case "AllCharacters":
		return TargetAllCharacters
	case "OpponentCharacters":
		return TargetOpponentCharacters
	case "FriendlyCharacters":
		return TargetFriendlyCharacters
	case "Opponent":
		return TargetOpponent
	case "Controller":
		return TargetController
	default:
		return TargetSelf
	}
}

// Quest exerts c to gain lore equal to its printed value. If supportTarget
// is non-nil, c must have Support and its strength is added as an
// end-of-turn bonus to supportTarget instead of itself.
func Quest(gs *GameState, playerID int, c *Card, supportTarget *Card) error {
	if !CanAct(c, gs.TurnNumber) {
		return ErrCardNotActionable
	}
	c.Exerted = true
	gs.GetPlayer(playerID).Lore += c.Def.Lore

	if supportTarget != nil && c.HasKeyword(catalog.KeywordSupport) {
		supportTarget.StrengthMods = append(supportTarget.StrengthMods, Modifier{
			Strength: c.Strength(), UntilEndOfTurn: true,
		})
	}

	queueAbilitiesForTrigger(gs, c, "OnQuest")
	gs.Trigger.Drain(gs)
	return nil
}

// ValidChallengeTargets returns the opponent characters c may legally
// challenge: only exerted characters are challengeable at all; if any of
// those exerted characters has Bodyguard, the candidate pool narrows to
// exerted Bodyguards only, before self/same-name mirrors, Locations, and
// Ward-protected characters are excluded, and Evasive characters are
// filtered to attackers that also have Evasive.
//
// Bodyguard rule: if the opponent controls one or more *exerted* Bodyguard
// characters, only those are valid targets (spec §4.5); a ready, un-exerted
// Bodyguard imposes no restriction at all, since it cannot be challenged in
// the first place.
func ValidChallengeTargets(gs *GameState, attacker *Card) []*Card {
	opp := gs.GetOpponent(attacker.Owner)

	var exerted, exertedBodyguards []*Card
	for _, t := range opp.Play {
		if t.Def.Type == catalog.TypeLocation || !t.Exerted {
			continue
		}
		exerted = append(exerted, t)
		if t.HasKeyword(catalog.KeywordBodyguard) {
			exertedBodyguards = append(exertedBodyguards, t)
		}
	}
	pool := exerted
	if len(exertedBodyguards) > 0 {
		pool = exertedBodyguards
	}

	var out []*Card
	for _, t := range pool {
		if t == attacker || t.BaseName() == attacker.BaseName() {
			continue
		}
		if t.HasKeyword(catalog.KeywordEvasive) && !attacker.HasKeyword(catalog.KeywordEvasive) {
			continue
		}
		if t.HasKeyword(catalog.KeywordWard) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Challenge resolves combat between attacker and defender: simultaneous
// damage exchange adjusted by Challenger/Resist, banishment checked on both
// sides afterward.
func Challenge(gs *GameState, attacker, defender *Card) error {
	if !CanAct(attacker, gs.TurnNumber) {
		return ErrCardNotActionable
	}
	valid := ValidChallengeTargets(gs, attacker)
	if !containsCard(valid, defender) {
		return ErrInvalidTarget
	}

	attacker.Exerted = true

	attackDamage := attacker.Strength() + attacker.KeywordValue(catalog.KeywordChallenger)
	attackDamage -= defender.KeywordValue(catalog.KeywordResist)
	if attackDamage < 0 {
		attackDamage = 0
	}
	defendDamage := defender.Strength()
	defendDamage -= attacker.KeywordValue(catalog.KeywordResist)
	if defendDamage < 0 {
		defendDamage = 0
	}

	defender.TakeDamage(attackDamage)
	attacker.TakeDamage(defendDamage)

	sweepBanished(gs)
	queueAbilitiesForTrigger(gs, attacker, "OnChallenge")
	gs.Trigger.Drain(gs)
	return nil
}

func containsCard(cards []*Card, target *Card) bool {
	for _, c := range cards {
		if c == target {
			return true
		}
	}
	return false
}

// Sing exerts singer to perform song from hand without paying ink, provided
// singer's Singer value meets or exceeds the song's cost.
func Sing(gs *GameState, playerID int, singer, song *Card) error {
	return SingTogether(gs, playerID, song, []*Card{singer})
}

// SingTogether performs song using the combined Singer value of every named
// singer, each of which must be ready and free of summoning sickness. This
// is an engine-only capability: the heuristic action policy (package
// policy) enumerates only single-singer Sing actions, per Open Question 2,
// option (a).
func SingTogether(gs *GameState, playerID int, song *Card, singers []*Card) error {
	total := 0
	for _, s := range singers {
		if !CanAct(s, gs.TurnNumber) {
			return ErrSingerNotReady
		}
		total += s.KeywordValue(catalog.KeywordSinger)
	}
	if total < song.Def.Cost {
		return ErrSingerTooWeak
	}
	for _, s := range singers {
		s.Exerted = true
	}

	p := gs.GetPlayer(playerID)
	idx := indexOfCard(p.Hand, song)
	if idx < 0 {
		return ErrCardNotInHand
	}
	p.Hand = removeCard(p.Hand, idx)
	song.Zone = ZoneDiscard
	p.Discard = append(p.Discard, song)

	queueAbilitiesForTrigger(gs, song, "OnPlay")
	gs.Trigger.Drain(gs)
	return nil
}

// Activate fires c's named activated ability, paying its ink cost (if any)
// and exerting c if the ability requires it.
func Activate(gs *GameState, playerID int, c *Card, abilityName string, exertsSelf bool, cost int) error {
	if exertsSelf && !CanAct(c, gs.TurnNumber) {
		return ErrCardNotActionable
	}
	p := gs.GetPlayer(playerID)
	if cost > 0 && !p.ExertInk(cost) {
		return ErrInsufficientInk
	}
	if exertsSelf {
		c.Exerted = true
	}
	for _, a := range c.Def.Abilities {
		if a.Trigger != "Activated" || a.Name != abilityName {
			continue
		}
		gs.Trigger.Add(playerID, abilityToEffect(a), c, nil)
	}
	gs.Trigger.Drain(gs)
	return nil
}
