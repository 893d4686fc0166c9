package policy

import (
	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/engine"
)

// Score returns a's heuristic value for playerID, per spec §4.6's per-kind
// formulas. Higher is better; a pass is implicitly scored 0.
func Score(gs *engine.GameState, playerID int, a Action) float64 {
	switch a.Kind {
	case KindQuest:
		return scoreQuest(gs, playerID, a)
	case KindChallenge:
		return scoreChallenge(gs, playerID, a)
	case KindPlay, KindPlayShift:
		return scorePlay(gs, playerID, a)
	case KindInk:
		return scoreInk(gs, playerID, a)
	case KindSing:
		return scoreSing(gs, playerID, a)
	case KindActivate:
		return scoreActivate(a)
	}
	return 0
}

func scoreQuest(gs *engine.GameState, playerID int, a Action) float64 {
	value := float64(a.Card.Def.Lore)
	if a.SupportTarget != nil {
		value += float64(a.Card.Strength()) * 0.5
	}

	// Risk penalty: questing exerts the character, leaving it unable to
	// defend next turn if the opponent can challenge it profitably.
	risk := 0.0
	opp := gs.GetOpponent(playerID)
	for _, t := range opp.Play {
		if t.Strength() >= a.Card.Willpower() {
			risk += 1.0
		}
	}
	value -= risk * 0.5

	p := gs.GetPlayer(playerID)
	if p.Lore+a.Card.Def.Lore >= engine.WinLoreThreshold {
		value += 10
	}
	return value
}

func scoreChallenge(gs *engine.GameState, playerID int, a Action) float64 {
	attacker, defender := a.Card, a.ChallengeTarget

	attackDamage := attacker.Strength() + attacker.KeywordValue(catalog.KeywordChallenger)
	attackDamage -= defender.KeywordValue(catalog.KeywordResist)
	defendDamage := defender.Strength() - attacker.KeywordValue(catalog.KeywordResist)

	value := 0.0
	banishesDefender := attackDamage >= defender.Willpower()
	attackerDies := defendDamage >= attacker.Willpower()

	if banishesDefender {
		value += float64(defender.Def.Cost) * 2
	}
	if attackerDies {
		value -= float64(attacker.Def.Cost) * 2
	}
	if !banishesDefender && attackerDies {
		value -= 5 // bad trade penalty
	}
	if defender.HasKeyword(catalog.KeywordEvasive) && attacker.HasKeyword(catalog.KeywordEvasive) {
		value += 1
	}

	if attacker.HasKeyword(catalog.KeywordReckless) {
		value += 3 // Reckless-must-act bonus
	}
	if attacker.HasKeyword(catalog.KeywordRush) && gs.TurnNumber <= 2 {
		value += 1 // Rush-early bonus
	}
	return value
}

func scorePlay(gs *engine.GameState, playerID int, a Action) float64 {
	c := a.Card
	cost := c.EffectiveCost()
	if cost == 0 {
		cost = 1
	}
	value := (float64(c.Def.Strength) + float64(c.Def.Willpower) + float64(c.Def.Lore)*2) / float64(cost)

	for kw := range c.Def.Keywords {
		switch kw {
		case catalog.KeywordEvasive, catalog.KeywordWard, catalog.KeywordBodyguard, catalog.KeywordRush:
			value += 1
		case catalog.KeywordChallenger, catalog.KeywordResist, catalog.KeywordSupport:
			value += float64(c.Def.KeywordValue(kw)) * 0.5
		}
	}
	if c.HasKeyword(catalog.KeywordReckless) {
		value -= 1
	}
	if a.Kind == KindPlayShift {
		value += 1.5 // Shift bonus: board state carries over
	}
	if c.HasKeyword(catalog.KeywordSinger) {
		value += scoreSingerSynergy(gs, playerID, c)
	}

	// Turn-timing adjustment: favor playing higher-impact cards earlier.
	value += float64(c.Def.Cost) / float64(gs.TurnNumber+1)

	return value
}

func scoreSingerSynergy(gs *engine.GameState, playerID int, singer *engine.Card) float64 {
	p := gs.GetPlayer(playerID)
	bonus := 0.0
	for _, card := range p.Hand {
		if card.Def.Type == catalog.TypeSong && singer.KeywordValue(catalog.KeywordSinger) >= card.Def.Cost {
			bonus += 0.5
		}
	}
	return bonus
}

func scoreInk(gs *engine.GameState, playerID int, a Action) float64 {
	const baseline = 1.0
	p := gs.GetPlayer(playerID)

	playValue := 0.0
	for _, c := range p.Hand {
		if c == a.Card {
			continue
		}
		playValue += float64(c.Def.Strength+c.Def.Willpower) / float64(c.Def.Cost+1)
	}
	inverse := 0.0
	if playValue > 0 {
		inverse = 1.0 / playValue
	}

	value := baseline + inverse

	if a.Card.Def.Cost > p.AvailableInk()+1 {
		value += 1 // unplayable now: safe to ink
	} else {
		value -= 1 // playable now: inking it delays using it
	}
	return value
}

func scoreSing(gs *engine.GameState, playerID int, a Action) float64 {
	equivalent := Action{Kind: KindPlay, Card: a.Song}
	base := scorePlay(gs, playerID, equivalent)
	costSaved := float64(a.Song.Def.Cost)
	return base + costSaved
}

func scoreActivate(a Action) float64 {
	if a.AbilityName == "Draw" {
		return 3
	}
	return 1.5
}
