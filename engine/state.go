package engine

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/signalnine/lorcana-evolve/catalog"
	"github.com/signalnine/lorcana-evolve/deck"
)

// WinLoreThreshold is the lore total that immediately wins the game.
const WinLoreThreshold = 20

// PlayerState holds one player's zones and per-turn flags. It carries no
// back-reference to the owning GameState (design note: cyclic references);
// every method that needs game context takes it as an explicit parameter.
type PlayerState struct {
	ID int

	Library []*Card // deck, draw from index 0
	Hand    []*Card
	Inkwell []*Card
	Play    []*Card
	Discard []*Card

	Lore            int
	HasInkedThisTurn bool
}

// NewPlayerState builds a fresh player from a legal deck, resolved against
// cat into card instances and shuffled with rng.
func NewPlayerState(id int, d deck.Deck, cat *catalog.Catalog, rng *rand.Rand) *PlayerState {
	p := &PlayerState{ID: id}
	for _, cid := range d {
		def, ok := cat.ByID(cid)
		if !ok {
			continue
		}
		p.Library = append(p.Library, NewCard(def, id))
	}
	rng.Shuffle(len(p.Library), func(i, j int) { p.Library[i], p.Library[j] = p.Library[j], p.Library[i] })
	return p
}

// DrawCards moves up to n cards from the top of the library into hand. It
// returns false if the library was empty on a required draw (spec boundary
// behavior: empty-library-on-required-draw is an immediate loss, detected by
// the caller).
func (p *PlayerState) DrawCards(n int) bool {
	ok := true
	for i := 0; i < n; i++ {
		if len(p.Library) == 0 {
			ok = false
			break
		}
		c := p.Library[0]
		p.Library = p.Library[1:]
		c.Zone = ZoneHand
		p.Hand = append(p.Hand, c)
	}
	return ok
}

// AvailableInk is the number of unexerted ink in the inkwell: the maximum
// this player can currently spend.
func (p *PlayerState) AvailableInk() int {
	n := 0
	for _, c := range p.Inkwell {
		if !c.Exerted {
			n++
		}
	}
	return n
}

// InkCard moves an inkable card from hand to the inkwell, enforcing the
// once-per-turn rule. The card enters exerted, per spec §4.5: ink placed
// this turn cannot be spent this turn. Returns false if the card is not
// inkable, not in hand, or ink has already been played this turn.
func (p *PlayerState) InkCard(c *Card) bool {
	if p.HasInkedThisTurn || !c.Def.Inkable {
		return false
	}
	idx := indexOfCard(p.Hand, c)
	if idx < 0 {
		return false
	}
	p.Hand = removeCard(p.Hand, idx)
	c.Zone = ZoneInkwell
	c.Exerted = true
	p.Inkwell = append(p.Inkwell, c)
	p.HasInkedThisTurn = true
	return true
}

// ExertInk pays cost ink by exerting that many unexerted inkwell cards.
// Returns false if insufficient ink is available; exerts nothing on failure.
func (p *PlayerState) ExertInk(cost int) bool {
	if p.AvailableInk() < cost {
		return false
	}
	paid := 0
	for _, c := range p.Inkwell {
		if paid == cost {
			break
		}
		if !c.Exerted {
			c.Exerted = true
			paid++
		}
	}
	return true
}

// ReadyAll exerts->ready every card this player controls (Ready phase).
func (p *PlayerState) ReadyAll() {
	for _, c := range p.Inkwell {
		c.Exerted = false
	}
	for _, c := range p.Play {
		c.Exerted = false
	}
}

// ClearTemporaryMods strips every end-of-turn modifier from this player's
// board (end of turn).
func (p *PlayerState) ClearTemporaryMods() {
	for _, c := range p.Play {
		ClearEndOfTurnMods(c)
	}
}

// CanAct reports whether c can be exerted for quest/challenge/ability use:
// not already exerted, and either Rush or played on an earlier turn (spec
// §4.5 summoning sickness rule).
func CanAct(c *Card, currentTurn int) bool {
	if c.Exerted {
		return false
	}
	if c.HasKeyword(catalog.KeywordRush) {
		return true
	}
	return c.TurnPlayed < currentTurn
}

// RemoveFromPlay moves c out of the Play zone into dest ("hand" or
// "discard"), implementing the Vanish-to-hand-zero-damage / else-to-discard
// banish rule when dest is chosen by the caller.
func (p *PlayerState) RemoveFromPlay(c *Card, dest Zone) {
	idx := indexOfCard(p.Play, c)
	if idx < 0 {
		return
	}
	p.Play = removeCard(p.Play, idx)
	switch dest {
	case ZoneHand:
		c.Damage = 0
		c.Zone = ZoneHand
		p.Hand = append(p.Hand, c)
	default:
		c.Zone = ZoneDiscard
		p.Discard = append(p.Discard, c)
	}
}

func indexOfCard(cards []*Card, target *Card) int {
	for i, c := range cards {
		if c == target {
			return i
		}
	}
	return -1
}

func removeCard(cards []*Card, idx int) []*Card {
	out := make([]*Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	out = append(out, cards[idx+1:]...)
	return out
}

// GameState is the full state of one game in progress: both players, turn
// tracking, and the bound effect resolver/trigger bag.
type GameState struct {
	Players         map[int]*PlayerState
	TurnNumber      int
	CurrentPlayerID int
	InitialPlayerID int
	Winner          *int
	DrawResult      bool // true if the game ended in a max-turns tie

	Catalog *catalog.Catalog
	RNG     *rand.Rand
	Logger  *zap.SugaredLogger
	Trigger *TriggerBag
}

// NewGameState constructs a two-player game from already-built player states
// and a seed. The first player to act is fixed here as player 1's id.
func NewGameState(p1, p2 *PlayerState, cat *catalog.Catalog, seed int64, logger *zap.SugaredLogger) *GameState {
	gs := &GameState{}
	InitGameState(gs, p1, p2, cat, seed, logger)
	return gs
}

// InitGameState (re-)initializes gs in place for a new game, overwriting
// whatever it previously held. Used both by NewGameState and by callers
// recycling a GameState from the pool (GetState/PutState) across the many
// short-lived games the fitness evaluator runs per generation.
func InitGameState(gs *GameState, p1, p2 *PlayerState, cat *catalog.Catalog, seed int64, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	*gs = GameState{
		Players:         map[int]*PlayerState{p1.ID: p1, p2.ID: p2},
		TurnNumber:      1,
		CurrentPlayerID: p1.ID,
		InitialPlayerID: p1.ID,
		Catalog:         cat,
		RNG:             rand.New(rand.NewSource(seed)),
		Logger:          logger,
		Trigger:         NewTriggerBag(),
	}
}

// GetPlayer returns the player state for id.
func (gs *GameState) GetPlayer(id int) *PlayerState {
	return gs.Players[id]
}

// GetOpponent returns the state of the player other than id (exactly two
// players are ever present).
func (gs *GameState) GetOpponent(id int) *PlayerState {
	for pid, p := range gs.Players {
		if pid != id {
			return p
		}
	}
	return nil
}

// CheckForWinner sets gs.Winner if either player has reached the lore
// threshold, per spec §4.5 win conditions. It returns true if a winner was
// set. Deck-out is not checked here; it is detected at draw time.
func (gs *GameState) CheckForWinner() bool {
	for id, p := range gs.Players {
		if p.Lore >= WinLoreThreshold {
			w := id
			gs.Winner = &w
			return true
		}
	}
	return false
}

// statePool recycles GameState allocations across the many short-lived games
// the fitness evaluator runs per generation (its only hot allocation path),
// per the teacher's StatePool/GetState/PutState idiom.
var statePool = sync.Pool{New: func() any { return &GameState{} }}

// GetState returns a zeroed GameState from the pool.
func GetState() *GameState {
	gs := statePool.Get().(*GameState)
	*gs = GameState{}
	return gs
}

// PutState returns gs to the pool for reuse. Callers must not use gs after
// calling PutState.
func PutState(gs *GameState) {
	statePool.Put(gs)
}
