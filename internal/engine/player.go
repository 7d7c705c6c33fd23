package engine

import "github.com/lcrostarosa/ploscope/internal/deck"

// Player is the per-seat ledger for one hand. It is mutated only by the
// action processor and the street advancer.
type Player struct {
	Seat       int
	Name       string
	Stack      int // chips not yet committed
	StartStack int // stack at the start of the hand
	StreetBet  int // committed this street, swept into the pot on closure
	HandBet    int // committed across the whole hand, monotonic
	Hole       []deck.Card
	Folded     bool
	AllIn      bool
}

// InHand reports whether the player has not folded.
func (p *Player) InHand() bool { return !p.Folded }

// CanAct reports whether the player may still take actions this hand.
func (p *Player) CanAct() bool { return !p.Folded && !p.AllIn }

// Reach is the highest street investment level the player can reach.
func (p *Player) Reach() int { return p.StreetBet + p.Stack }

// pay moves amount chips from the stack into the street and hand ledgers,
// marking the player all-in when the stack is consumed. amount must not
// exceed the stack.
func (p *Player) pay(amount int) {
	p.Stack -= amount
	p.StreetBet += amount
	p.HandBet += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
}
