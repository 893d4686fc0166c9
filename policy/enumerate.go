package policy

import (
	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/engine"
)

// Enumerate lists every legal action available to playerID given whether
// they have already inked this turn. Reckless correctness is enforced here,
// at enumeration, not in Score: a ready, non-sick Reckless character with at
// least one valid challenge target contributes only Challenge actions, never
// Quest/Play/Activate alternatives for that character.
func Enumerate(gs *engine.GameState, playerID int, hasInked bool) []Action {
	var actions []Action
	p := gs.GetPlayer(playerID)

	if !hasInked {
		actions = append(actions, enumerateInk(p)...)
	}
	actions = append(actions, enumeratePlay(gs, p)...)

	for _, c := range p.Play {
		if c.Def.Type != catalog.TypeCharacter {
			continue
		}
		if !engine.CanAct(c, gs.TurnNumber) {
			continue
		}

		if c.HasKeyword(catalog.KeywordReckless) {
			targets := engine.ValidChallengeTargets(gs, c)
			if len(targets) > 0 {
				for _, t := range targets {
					actions = append(actions, Action{Kind: KindChallenge, Card: c, ChallengeTarget: t})
				}
				continue
			}
		}

		actions = append(actions, enumerateQuest(gs, p, c)...)
		for _, t := range engine.ValidChallengeTargets(gs, c) {
			actions = append(actions, Action{Kind: KindChallenge, Card: c, ChallengeTarget: t})
		}
		actions = append(actions, enumerateSing(p, c)...)
		actions = append(actions, enumerateActivate(c)...)
	}

	return actions
}

// enumerateInk proposes inking the single highest-cost inkable card in
// hand, matching the original policy's "ink the most expensive option"
// heuristic rather than enumerating every inkable card as a distinct choice.
func enumerateInk(p *engine.PlayerState) []Action {
	var best *engine.Card
	for _, c := range p.Hand {
		if !c.Def.Inkable {
			continue
		}
		if best == nil || c.Def.Cost > best.Def.Cost {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return []Action{{Kind: KindInk, Card: best}}
}

func enumeratePlay(gs *engine.GameState, p *engine.PlayerState) []Action {
	var actions []Action
	for _, c := range p.Hand {
		if c.Def.Cost <= p.AvailableInk() {
			actions = append(actions, Action{Kind: KindPlay, Card: c})
		}
		if c.HasKeyword(catalog.KeywordShift) {
			shiftCost := c.KeywordValue(catalog.KeywordShift)
			if shiftCost <= p.AvailableInk() {
				for _, onBoard := range p.Play {
					if onBoard.BaseName() == c.BaseName() {
						actions = append(actions, Action{Kind: KindPlayShift, Card: c, ShiftTarget: onBoard})
					}
				}
			}
		}
	}
	return actions
}

func enumerateQuest(gs *engine.GameState, p *engine.PlayerState, c *engine.Card) []Action {
	if !c.HasKeyword(catalog.KeywordSupport) {
		return []Action{{Kind: KindQuest, Card: c}}
	}
	// Support: offer questing for self, and questing with the bonus
	// redirected to the highest-strength other friendly character.
	actions := []Action{{Kind: KindQuest, Card: c}}
	var best *engine.Card
	for _, other := range p.Play {
		if other == c {
			continue
		}
		if best == nil || other.Strength() > best.Strength() {
			best = other
		}
	}
	if best != nil {
		actions = append(actions, Action{Kind: KindQuest, Card: c, SupportTarget: best})
	}
	return actions
}

func enumerateSing(p *engine.PlayerState, singer *engine.Card) []Action {
	singerValue := singer.KeywordValue(catalog.KeywordSinger)
	if singerValue == 0 {
		return nil
	}
	var actions []Action
	for _, card := range p.Hand {
		if card.Def.Type != catalog.TypeSong {
			continue
		}
		if singerValue >= card.Def.Cost {
			actions = append(actions, Action{Kind: KindSing, Singer: singer, Song: card})
		}
	}
	return actions
}

func enumerateActivate(c *engine.Card) []Action {
	var actions []Action
	for _, a := range c.Def.Abilities {
		if a.Trigger != "Activated" {
			continue
		}
		actions = append(actions, Action{
			Kind: KindActivate, Card: c, AbilityName: a.Name,
			AbilityExerts: true, AbilityCost: a.Value,
		})
	}
	return actions
}
