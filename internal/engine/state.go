package engine

import (
	"github.com/lcrostarosa/ploscope/internal/deck"
)

// LogEntry records one applied action in the hand's append-only log.
type LogEntry struct {
	Seat   int
	Kind   ActionKind
	Amount int // chips moved by this action (0 for fold/check)
	Street Street
}

// HandState is the full state of one hand. It is a value: transitions clone
// it and return a new state, so the caller owns every version it holds and
// stale copies remain usable for display or persistence.
//
// Folded, all-in and active seat sets are always derived from the player
// flags; they are never stored.
type HandState struct {
	ID         string
	Players    []Player
	Button     int
	SmallBlind int
	BigBlind   int

	Street Street
	Board  []deck.Card
	Deck   deck.Deck

	Pot        int // chips swept from completed streets
	CurrentBet int // street investment level to match
	LastRaise  int // size of the last full raise increment
	LastRaiser int // seat of the last full raise, -1 if none this street
	ToAct      int // seat due to act, -1 when betting is closed

	Acted []bool // per seat: has acted since the last full raise

	Log     []LogEntry
	Settled bool // payouts applied, hand retired
}

// Clone returns a deep copy. The embedded deck is a value, so the copy
// deals independently of the original.
func (s *HandState) Clone() HandState {
	next := *s
	next.Players = make([]Player, len(s.Players))
	copy(next.Players, s.Players)
	for i := range next.Players {
		hole := make([]deck.Card, len(s.Players[i].Hole))
		copy(hole, s.Players[i].Hole)
		next.Players[i].Hole = hole
	}
	next.Board = make([]deck.Card, len(s.Board))
	copy(next.Board, s.Board)
	next.Acted = make([]bool, len(s.Acted))
	copy(next.Acted, s.Acted)
	next.Log = make([]LogEntry, len(s.Log))
	copy(next.Log, s.Log)
	return next
}

// FoldedSeats returns the seats that have folded.
func (s *HandState) FoldedSeats() []int {
	return s.seatsWhere(func(p *Player) bool { return p.Folded })
}

// AllInSeats returns the in-hand seats that are all-in.
func (s *HandState) AllInSeats() []int {
	return s.seatsWhere(func(p *Player) bool { return !p.Folded && p.AllIn })
}

// ActiveSeats returns the seats that can still act: in-hand and not all-in.
func (s *HandState) ActiveSeats() []int {
	return s.seatsWhere(func(p *Player) bool { return p.CanAct() })
}

// InHandSeats returns the seats that have not folded.
func (s *HandState) InHandSeats() []int {
	return s.seatsWhere(func(p *Player) bool { return p.InHand() })
}

func (s *HandState) seatsWhere(pred func(*Player) bool) []int {
	seats := make([]int, 0, len(s.Players))
	for i := range s.Players {
		if pred(&s.Players[i]) {
			seats = append(seats, i)
		}
	}
	return seats
}

func (s *HandState) countCanAct() int { return len(s.ActiveSeats()) }
func (s *HandState) countInHand() int { return len(s.InHandSeats()) }

// TotalInvested is the sum of every player's hand investment.
func (s *HandState) TotalInvested() int {
	total := 0
	for i := range s.Players {
		total += s.Players[i].HandBet
	}
	return total
}

// PotTotal is the swept pot plus the live bets of the current street. This
// is the figure a display should show as "the pot".
func (s *HandState) PotTotal() int {
	total := s.Pot
	for i := range s.Players {
		total += s.Players[i].StreetBet
	}
	return total
}

// BettingClosed reports whether no further betting can happen this hand.
func (s *HandState) BettingClosed() bool {
	return s.Street == Showdown
}

// Complete reports whether payouts have been applied and the hand retired.
func (s *HandState) Complete() bool {
	return s.Settled
}

// nextCanAct walks clockwise from seat (inclusive) and returns the first
// seat able to act, or -1 if none remains.
func (s *HandState) nextCanAct(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		seat := ((from + i) % n + n) % n
		if s.Players[seat].CanAct() {
			return seat
		}
	}
	return -1
}
