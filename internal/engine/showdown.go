package engine

import (
	"fmt"

	"github.com/lcrostarosa/ploscope/internal/deck"
)

// Rank is an opaque hand strength: higher wins, equal ties. The concrete
// evaluator lives outside the engine and is adapted in by the session.
type Rank uint32

// RankFunc ranks a player's four hole cards against the five-card board.
// The engine consumes it only at showdown, once per in-hand player.
type RankFunc func(hole, board []deck.Card) (Rank, error)

// Settle computes the payout for every seat once betting is closed.
//
// A single surviving player is paid the whole pot immediately and the
// evaluator is never consulted. Otherwise uncalled excess is refunded and
// each contested pot is awarded independently to its best-ranked eligible
// players, ties split evenly with any remainder handed out one chip at a
// time clockwise from the button.
//
// Settle does not mutate the state; ApplyPayouts produces the retired
// successor state.
func Settle(s *HandState, rank RankFunc) (map[int]int, error) {
	if !s.BettingClosed() {
		return nil, &StateInconsistencyError{
			HandID: s.ID,
			Detail: "settle called while betting is open",
			Log:    s.Log,
		}
	}

	payouts := make(map[int]int)

	inHand := s.InHandSeats()
	if len(inHand) == 0 {
		return nil, &StateInconsistencyError{HandID: s.ID, Detail: "no players left in hand", Log: s.Log}
	}
	if len(inHand) == 1 {
		payouts[inHand[0]] = s.TotalInvested()
		return payouts, nil
	}

	pots, refunds := ComputeSidePots(s.Players)
	for seat, amount := range refunds {
		payouts[seat] += amount
	}

	if len(s.Board) != 5 {
		return nil, &StateInconsistencyError{
			HandID: s.ID,
			Detail: fmt.Sprintf("showdown with %d board cards", len(s.Board)),
			Log:    s.Log,
		}
	}

	ranks := make(map[int]Rank, len(inHand))
	for _, seat := range inHand {
		r, err := rank(s.Players[seat].Hole, s.Board)
		if err != nil {
			return nil, &EvaluationError{HandID: s.ID, Err: err}
		}
		ranks[seat] = r
	}

	for _, pot := range pots {
		winners := bestSeats(pot.Eligible, ranks)
		s.payPot(pot.Amount, winners, payouts)
	}

	return payouts, nil
}

// bestSeats returns the eligible seats holding the highest rank.
func bestSeats(eligible []int, ranks map[int]Rank) []int {
	var best Rank
	var winners []int
	for _, seat := range eligible {
		r := ranks[seat]
		switch {
		case len(winners) == 0 || r > best:
			best = r
			winners = winners[:0]
			winners = append(winners, seat)
		case r == best:
			winners = append(winners, seat)
		}
	}
	return winners
}

// payPot splits amount evenly among winners. The remainder is distributed
// one chip at a time in seat order clockwise from the button, a fixed
// deterministic rule.
func (s *HandState) payPot(amount int, winners []int, payouts map[int]int) {
	if len(winners) == 0 {
		return
	}
	ordered := s.clockwiseFromButton(winners)
	share := amount / len(ordered)
	remainder := amount % len(ordered)
	for i, seat := range ordered {
		payouts[seat] += share
		if i < remainder {
			payouts[seat]++
		}
	}
}

// clockwiseFromButton orders seats by distance clockwise from the seat
// after the button.
func (s *HandState) clockwiseFromButton(seats []int) []int {
	n := len(s.Players)
	ordered := make([]int, len(seats))
	copy(ordered, seats)
	pos := func(seat int) int { return ((seat - s.Button - 1) % n + n) % n }
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && pos(ordered[j]) < pos(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

// ApplyPayouts returns the retired successor state: stacks credited, pot
// emptied, hand marked settled.
func ApplyPayouts(s *HandState, payouts map[int]int) HandState {
	next := s.Clone()
	for seat, amount := range payouts {
		next.Players[seat].Stack += amount
	}
	next.sweepStreetBets()
	next.Pot = 0
	next.Settled = true
	next.ToAct = -1
	return next
}

// RefundAll returns a settled state with every player's hand investment
// returned to their stack. This is the recovery path when the evaluation
// collaborator fails: no winner is awarded, but chips are conserved.
func RefundAll(s *HandState) HandState {
	next := s.Clone()
	for i := range next.Players {
		next.Players[i].Stack += next.Players[i].HandBet
		next.Players[i].StreetBet = 0
	}
	next.Pot = 0
	next.Settled = true
	next.ToAct = -1
	return next
}
