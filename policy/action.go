// Package policy implements the fixed heuristic action-selection strategy:
// enumerate every legal action, score each with a per-action-type formula,
// execute the best, repeat until passing is optimal or the iteration cap is
// hit.
package policy

import "github.com/signalnine/lorcana-evolve/engine"

const maxActionsPerTurn = 30

// Kind identifies an action's shape without exposing engine internals to
// the scorer's type switch consumers outside this package.
type Kind int

const (
	KindInk Kind = iota
	KindPlay
	KindPlayShift
	KindQuest
	KindChallenge
	KindSing
	KindActivate
)

// Action is every action the policy can propose: one struct tagged by Kind,
// with only the fields that Kind uses set. Score and Execute switch on Kind.
// Score is attached by Score, not stored on construction.
type Action struct {
	Kind          Kind
	Card          *engine.Card
	ShiftTarget   *engine.Card
	SupportTarget *engine.Card
	ChallengeTarget *engine.Card
	Singer        *engine.Card
	Song          *engine.Card
	AbilityName   string
	AbilityExerts bool
	AbilityCost   int
}

// Execute performs a on gs for playerID.
func Execute(gs *engine.GameState, playerID int, a Action) error {
	switch a.Kind {
	case KindInk:
		return engine.Ink(gs, playerID, a.Card)
	case KindPlay:
		return engine.Play(gs, playerID, a.Card)
	case KindPlayShift:
		return engine.PlayViaShift(gs, playerID, a.Card, a.ShiftTarget)
	case KindQuest:
		return engine.Quest(gs, playerID, a.Card, a.SupportTarget)
	case KindChallenge:
		return engine.Challenge(gs, a.Card, a.ChallengeTarget)
	case KindSing:
		return engine.Sing(gs, playerID, a.Singer, a.Song)
	case KindActivate:
		return engine.Activate(gs, playerID, a.Card, a.AbilityName, a.AbilityExerts, a.AbilityCost)
	}
	return nil
}

// RunMainPhase enumerates, scores, and executes actions for playerID until
// passing scores at least as well as acting, or the per-turn action cap is
// reached. It is the mainPhase callback handed to engine.GameState.RunTurn.
func RunMainPhase(gs *engine.GameState, playerID int) {
	hasInked := false

	for i := 0; i < maxActionsPerTurn; i++ {
		actions := Enumerate(gs, playerID, hasInked)
		if len(actions) == 0 {
			return
		}

		best := actions[0]
		bestScore := Score(gs, playerID, best)
		for _, a := range actions[1:] {
			s := Score(gs, playerID, a)
			if s > bestScore {
				best, bestScore = a, s
			}
		}

		// Ink actions are exempt from the pass threshold, matching the
		// original policy's "always take the first action even if its
		// score is negative" allowance and the rule that a non-positive
		// best *non-ink* score ends the main phase only after at least one
		// action has been taken this turn.
		if i > 0 && best.Kind != KindInk && bestScore <= 0 {
			return
		}

		if err := Execute(gs, playerID, best); err != nil {
			return
		}
		if best.Kind == KindInk {
			hasInked = true
		}
	}
}
