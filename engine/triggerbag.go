package engine

// pendingTrigger is one queued effect awaiting resolution, tagged with the
// player id whose queue it belongs to so the drain order (active player
// first, then non-active) can be enforced.
type pendingTrigger struct {
	playerID int
	effect   Effect
	source   *Card
	chosen   []*Card
}

// TriggerBag queues effects raised by triggers (OnPlay, OnQuest, etc.) and
// drains them in a fixed order: the active player's queued triggers first,
// then the non-active player's, in the order each was added; triggers
// raised while draining are queued and the bag re-sweeps until both queues
// are empty. Grounded on original_source's TriggerBag.resolve_triggers.
type TriggerBag struct {
	queues    map[int][]pendingTrigger
	resolving bool
	pending   []pendingTrigger
}

// NewTriggerBag returns an empty bag.
func NewTriggerBag() *TriggerBag {
	return &TriggerBag{queues: make(map[int][]pendingTrigger)}
}

// Add queues an effect to be resolved for playerID. If the bag is currently
// mid-drain, the trigger is held in a pending list and picked up by the
// current drain's re-sweep instead of being lost.
func (tb *TriggerBag) Add(playerID int, eff Effect, source *Card, chosen []*Card) {
	t := pendingTrigger{playerID: playerID, effect: eff, source: source, chosen: chosen}
	if tb.resolving {
		tb.pending = append(tb.pending, t)
		return
	}
	tb.queues[playerID] = append(tb.queues[playerID], t)
}

// Drain resolves every queued trigger: the active player's queue first, then
// the non-active player's, re-sweeping for any triggers raised during
// resolution until nothing remains. Called after every play, challenge,
// quest, and activation, and at phase close, per spec §4.4.
func (tb *TriggerBag) Drain(gs *GameState) {
	tb.resolving = true
	defer func() { tb.resolving = false }()

	for {
		order := []int{gs.CurrentPlayerID}
		for id := range tb.queues {
			if id != gs.CurrentPlayerID {
				order = append(order, id)
			}
		}

		didWork := false
		for _, pid := range order {
			q := tb.queues[pid]
			tb.queues[pid] = nil
			for _, t := range q {
				didWork = true
				Resolve(gs, t.effect, t.source, t.chosen)
			}
		}

		if len(tb.pending) > 0 {
			for _, t := range tb.pending {
				tb.queues[t.playerID] = append(tb.queues[t.playerID], t)
			}
			tb.pending = nil
			didWork = true
		}

		if !didWork {
			return
		}
	}
}
