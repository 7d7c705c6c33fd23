package engine

import (
	rand "math/rand/v2"

	"github.com/lcrostarosa/ploscope/internal/deck"
)

// HandOption configures hand creation.
type HandOption func(*handConfig)

type handConfig struct {
	stacks     []int
	startStack int
	deck       *deck.Deck
	id         string
}

// WithUniformStacks gives every player the same starting stack.
// The default is 1000.
func WithUniformStacks(chips int) HandOption {
	return func(c *handConfig) {
		c.startStack = chips
		c.stacks = nil
	}
}

// WithStacks sets individual starting stacks. The length must match the
// number of players.
func WithStacks(stacks []int) HandOption {
	return func(c *handConfig) {
		c.stacks = stacks
	}
}

// WithDeck uses a specific pre-shuffled deck instead of shuffling with the
// hand's rng. Used for deterministic tests and replays.
func WithDeck(d deck.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = &d
	}
}

// WithID sets the hand identifier. Defaults to empty; sessions normally
// assign one from handid.
func WithID(id string) HandOption {
	return func(c *handConfig) {
		c.id = id
	}
}

// NewHand creates the state for a fresh hand: stacks set, blinds posted,
// four hole cards dealt to each seat, first actor selected. The rng is
// required so shuffling is always explicit; misuse panics, as these are
// programming errors rather than runtime conditions.
func NewHand(rng *rand.Rand, names []string, button, smallBlind, bigBlind int, opts ...HandOption) HandState {
	if rng == nil {
		panic("engine: rng is required")
	}
	if len(names) < 2 {
		panic("engine: at least 2 players required")
	}
	if button < 0 || button >= len(names) {
		panic("engine: button out of range")
	}
	if smallBlind <= 0 || bigBlind < smallBlind {
		panic("engine: blinds must satisfy 0 < small <= big")
	}

	cfg := &handConfig{startStack: 1000}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.stacks != nil && len(cfg.stacks) != len(names) {
		panic("engine: stack counts must match number of players")
	}

	players := make([]Player, len(names))
	for i, name := range names {
		chips := cfg.startStack
		if cfg.stacks != nil {
			chips = cfg.stacks[i]
		}
		if chips <= 0 {
			panic("engine: every player needs a positive stack")
		}
		players[i] = Player{
			Seat:       i,
			Name:       name,
			Stack:      chips,
			StartStack: chips,
		}
	}

	var d deck.Deck
	if cfg.deck != nil {
		d = *cfg.deck
	} else {
		d = deck.New(rng)
	}

	s := HandState{
		ID:         cfg.id,
		Players:    players,
		Button:     button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Street:     Preflop,
		Deck:       d,
		LastRaise:  bigBlind,
		LastRaiser: -1,
		Acted:      make([]bool, len(players)),
	}

	s.dealHoleCards()
	s.postBlinds()

	// Heads-up the button posts the small blind and acts first preflop;
	// otherwise the seat after the big blind opens.
	if len(players) == 2 {
		s.ToAct = s.nextCanAct(button)
	} else {
		s.ToAct = s.nextCanAct(button + 3)
	}
	// Blinds can put every other seat all-in before any action.
	if s.ToAct == -1 || s.roundClosed() {
		s.nextStreet()
	}

	return s
}

func (s *HandState) dealHoleCards() {
	for i := range s.Players {
		s.Players[i].Hole = s.Deck.Deal(deck.HoleCards)
	}
}

// postBlinds commits the blinds, clamped to short stacks. Blind posts do
// not set acted flags: the big blind keeps the option on an unraised pot.
func (s *HandState) postBlinds() {
	var sbSeat, bbSeat int
	if len(s.Players) == 2 {
		sbSeat = s.Button
		bbSeat = (s.Button + 1) % 2
	} else {
		sbSeat = (s.Button + 1) % len(s.Players)
		bbSeat = (s.Button + 2) % len(s.Players)
	}

	sb := &s.Players[sbSeat]
	sb.pay(min(s.SmallBlind, sb.Stack))

	bb := &s.Players[bbSeat]
	bb.pay(min(s.BigBlind, bb.Stack))

	s.CurrentBet = s.BigBlind
}
