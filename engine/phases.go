package engine

import "github.com/signalnine/lorcana-evolve/catalog"

// Phase identifies one of the five turn phases in order.
type Phase int

const (
	PhaseReady Phase = iota
	PhaseSet
	PhaseDraw
	PhaseMain
	PhaseEnd
)

const initialHandSize = 7

// DrawInitialHands draws each player's opening hand. Per spec boundary
// behavior, the player who goes first does not draw on their very first
// draw phase, so this only establishes the starting 7; RunTurn's draw phase
// skips the initial player's very first draw.
func (gs *GameState) DrawInitialHands() {
	for _, p := range gs.Players {
		p.DrawCards(initialHandSize)
	}
}

// readyPhase readies every exerted card the active player controls. The
// has-inked-this-turn flag is not touched here; endTurn clears it.
func (gs *GameState) readyPhase() {
	gs.GetPlayer(gs.CurrentPlayerID).ReadyAll()
}

// setPhase adds each in-play Location's printed Lore to the active player's
// total, queues any of its abilities with trigger "SetPhase", and drains the
// trigger bag.
func (gs *GameState) setPhase() {
	p := gs.GetPlayer(gs.CurrentPlayerID)
	for _, c := range p.Play {
		if c.Def.Type != catalog.TypeLocation {
			continue
		}
		p.Lore += c.Def.Lore
		queueAbilitiesForTrigger(gs, c, "SetPhase")
	}
	gs.Trigger.Drain(gs)
}

// drawPhase draws one card for the active player, unless this is the
// initial player's very first turn (spec boundary behavior:
// first-player-skips-first-draw). An empty library on a required draw is an
// immediate loss for that player.
func (gs *GameState) drawPhase() {
	if gs.TurnNumber == 1 && gs.CurrentPlayerID == gs.InitialPlayerID {
		return
	}
	p := gs.GetPlayer(gs.CurrentPlayerID)
	if !p.DrawCards(1) {
		opp := gs.GetOpponent(gs.CurrentPlayerID)
		w := opp.ID
		gs.Winner = &w
	}
}

// endTurn clears temporary modifiers and the has-inked flag for the player
// who just acted, then alternates the active player, incrementing the turn
// counter whenever control returns to the initial player.
func (gs *GameState) endTurn() {
	p := gs.GetPlayer(gs.CurrentPlayerID)
	p.ClearTemporaryMods()
	p.HasInkedThisTurn = false
	gs.Trigger.Drain(gs)

	gs.CurrentPlayerID = gs.GetOpponent(gs.CurrentPlayerID).ID
	if gs.CurrentPlayerID == gs.InitialPlayerID {
		gs.TurnNumber++
	}
}

// RunTurn executes the Ready/Set/Draw phases, invokes mainPhase to let the
// active player act, then runs the End-of-turn phase. mainPhase is supplied
// by the caller (normally package policy) so the engine stays independent
// of any particular action-selection strategy.
func (gs *GameState) RunTurn(mainPhase func(gs *GameState, playerID int)) {
	gs.readyPhase()
	gs.setPhase()
	gs.drawPhase()
	if gs.Winner == nil {
		mainPhase(gs, gs.CurrentPlayerID)
	}
	if gs.Winner == nil {
		gs.CheckForWinner()
	}
	gs.endTurn()
}

// RunGame drives the turn loop until a winner is decided or maxTurns is
// exceeded, in which case the higher-lore player wins, ties broken by the
// game's own seeded RNG. Returns the winning player's id and true, or
// (0, false) only if DrawResult end up set with no coin-flip winner
// (never happens: the tiebreak always names a winner).
func (gs *GameState) RunGame(maxTurns int, mainPhase func(gs *GameState, playerID int)) (int, bool) {
	gs.DrawInitialHands()

	for gs.TurnNumber <= maxTurns && gs.Winner == nil {
		gs.RunTurn(mainPhase)
	}

	if gs.Winner != nil {
		return *gs.Winner, true
	}

	gs.DrawResult = true
	p1, p2 := gs.playerIDs()
	lore1, lore2 := gs.Players[p1].Lore, gs.Players[p2].Lore
	switch {
	case lore1 > lore2:
		return p1, true
	case lore2 > lore1:
		return p2, true
	default:
		if gs.RNG.Intn(2) == 0 {
			return p1, true
		}
		return p2, true
	}
}

func (gs *GameState) playerIDs() (int, int) {
	var ids []int
	for id := range gs.Players {
		ids = append(ids, id)
	}
	if len(ids) != 2 {
		return 0, 1
	}
	if ids[0] < ids[1] {
		return ids[0], ids[1]
	}
	return ids[1], ids[0]
}
