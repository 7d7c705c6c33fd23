package engine

import (
	"errors"
	"testing"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/randutil"
)

// flopState builds a hand on the flop with no betting yet: blinds already
// swept into the pot, seat 0 first to act. Stacks are the chips behind;
// each player has already invested invested[i] into the pot.
func flopState(t *testing.T, stacks, invested []int) HandState {
	t.Helper()
	if len(stacks) != len(invested) {
		t.Fatal("stacks and invested must align")
	}

	pot := 0
	players := make([]Player, len(stacks))
	for i := range stacks {
		players[i] = Player{
			Seat:       i,
			Name:       string(rune('A' + i)),
			Stack:      stacks[i],
			StartStack: stacks[i] + invested[i],
			HandBet:    invested[i],
		}
		pot += invested[i]
	}

	d := deck.Stacked()
	hole := make([][]deck.Card, len(players))
	for i := range players {
		hole[i] = d.Deal(4)
		players[i].Hole = hole[i]
	}
	board := d.Deal(3)

	s := HandState{
		ID:         "test-hand",
		Players:    players,
		Button:     len(players) - 1,
		SmallBlind: 5,
		BigBlind:   10,
		Street:     Flop,
		Board:      board,
		Deck:       d,
		Pot:        pot,
		LastRaise:  10,
		LastRaiser: -1,
		ToAct:      0,
		Acted:      make([]bool, len(players)),
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("fixture violates invariants: %v", err)
	}
	return s
}

func mustApply(t *testing.T, s HandState, seat int, a Action) HandState {
	t.Helper()
	next, err := Apply(&s, seat, a)
	if err != nil {
		t.Fatalf("apply seat %d %s: %v", seat, a, err)
	}
	return next
}

// Scenario: A bets 50, B calls all-in for its last 50, C raises to 150,
// A calls. Checks investment levels and all-in bookkeeping end to end.
func TestApplyThreeWayAllInBetting(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 50, 200}, []int{0, 0, 0})

	s = mustApply(t, s, 0, Bet{Amount: 50})
	if s.CurrentBet != 50 || s.LastRaise != 50 {
		t.Fatalf("after bet: currentBet %d lastRaise %d", s.CurrentBet, s.LastRaise)
	}

	s = mustApply(t, s, 1, AllIn{})
	if !s.Players[1].AllIn || s.Players[1].Stack != 0 {
		t.Fatal("B should be all-in")
	}
	if s.CurrentBet != 50 {
		t.Fatalf("matching all-in must not move the bet, got %d", s.CurrentBet)
	}

	s = mustApply(t, s, 2, Raise{To: 150})
	if s.CurrentBet != 150 || s.LastRaise != 100 || s.LastRaiser != 2 {
		t.Fatalf("after raise: currentBet %d lastRaise %d lastRaiser %d", s.CurrentBet, s.LastRaise, s.LastRaiser)
	}
	if s.ToAct != 0 {
		t.Fatalf("A must respond to the raise, toAct = %d", s.ToAct)
	}

	s = mustApply(t, s, 0, Call{})
	if got := s.Players[0].HandBet; got != 150 {
		t.Errorf("A invested %d, want 150", got)
	}

	// Round closes: only A and C can act and both have matched.
	if s.Street != Turn {
		t.Errorf("street = %v, want turn", s.Street)
	}
	if got := s.Pot; got != 350 {
		t.Errorf("pot = %d, want 350", got)
	}
}

// Scenario D: a 30-chip stack calling a 50 bet is applied as a forced
// all-in for 30 without moving the current bet.
func TestApplyCallClampsToForcedAllIn(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 30, 200}, []int{0, 0, 0})
	s = mustApply(t, s, 0, Bet{Amount: 50})

	s = mustApply(t, s, 1, Call{})
	b := &s.Players[1]
	if b.StreetBet != 30 || !b.AllIn || b.Stack != 0 {
		t.Errorf("clamped call: bet %d allin %v stack %d", b.StreetBet, b.AllIn, b.Stack)
	}
	if s.CurrentBet != 50 {
		t.Errorf("current bet = %d, want 50 unchanged", s.CurrentBet)
	}
}

// Scenario C: after A checks, B bets and C calls, A must still respond
// before the round closes.
func TestApplyRoundNotClosedUntilCheckerResponds(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 200, 200}, []int{10, 10, 10})

	s = mustApply(t, s, 0, Check{})
	s = mustApply(t, s, 1, Bet{Amount: 30})
	s = mustApply(t, s, 2, Call{})

	if s.Street != Flop {
		t.Fatalf("round closed early, street = %v", s.Street)
	}
	if s.ToAct != 0 {
		t.Fatalf("next actor = %d, want 0", s.ToAct)
	}

	s = mustApply(t, s, 0, Call{})
	if s.Street != Turn {
		t.Errorf("street = %v, want turn after A's call", s.Street)
	}
}

// Scenario B: everyone folding leaves one player and closes the hand
// without dealing further streets.
func TestApplyFoldToSingleSurvivor(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 200, 200}, []int{10, 10, 10})

	s = mustApply(t, s, 0, Bet{Amount: 30})
	s = mustApply(t, s, 1, Fold{})
	s = mustApply(t, s, 2, Fold{})

	if s.Street != Showdown {
		t.Fatalf("street = %v, want showdown", s.Street)
	}
	if len(s.Board) != 3 {
		t.Errorf("board grew to %d cards after everyone folded", len(s.Board))
	}
	if got := s.countInHand(); got != 1 {
		t.Errorf("in hand = %d, want 1", got)
	}
	if s.Pot != 60 {
		t.Errorf("pot = %d, want 60", s.Pot)
	}
}

func TestApplyFullRaiseReopensBetting(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{500, 500, 500}, []int{10, 10, 10})

	s = mustApply(t, s, 0, Bet{Amount: 50})
	s = mustApply(t, s, 1, Call{})
	s = mustApply(t, s, 2, Raise{To: 150})

	// A and B face a full raise: both acted flags reset.
	if s.Acted[0] || s.Acted[1] || !s.Acted[2] {
		t.Errorf("acted flags = %v, want only raiser set", s.Acted)
	}

	// A may re-raise.
	if err := Validate(&s, 0, Raise{To: 300}); err != nil {
		t.Errorf("re-raise after full raise should be legal: %v", err)
	}
}

// An all-in that exceeds the current bet by less than a full raise lifts
// the price but does not reopen betting for players who already acted.
func TestApplyUnderRaiseAllInDoesNotReopen(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{500, 70, 500}, []int{10, 10, 10})

	s = mustApply(t, s, 0, Bet{Amount: 50})
	s = mustApply(t, s, 1, AllIn{}) // to 70: increment 20 < 50

	if s.CurrentBet != 70 {
		t.Fatalf("current bet = %d, want 70", s.CurrentBet)
	}
	if s.LastRaise != 50 {
		t.Fatalf("under-raise must not move the raise reference, lastRaise = %d", s.LastRaise)
	}

	s = mustApply(t, s, 2, Call{})

	// A already acted and was not facing a full raise: may call or fold,
	// not raise.
	if s.ToAct != 0 {
		t.Fatalf("A must respond to the extra 20, toAct = %d", s.ToAct)
	}
	err := Validate(&s, 0, Raise{To: 200})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("raise after under-raise all-in should be rejected, got %v", err)
	}

	s = mustApply(t, s, 0, Call{})
	if s.Street != Turn {
		t.Errorf("street = %v, want turn", s.Street)
	}
}

// An all-in that exceeds the current bet by at least a full raise counts as
// a raise and reopens the betting.
func TestApplyFullRaiseAllInReopens(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{500, 150, 500}, []int{10, 10, 10})

	s = mustApply(t, s, 0, Bet{Amount: 50})
	s = mustApply(t, s, 1, AllIn{}) // to 150: increment 100 >= 50

	if s.CurrentBet != 150 || s.LastRaise != 100 {
		t.Fatalf("full all-in raise: currentBet %d lastRaise %d", s.CurrentBet, s.LastRaise)
	}
	if err := Validate(&s, 2, Raise{To: 300}); err != nil {
		t.Errorf("betting should be reopened for C: %v", err)
	}
	if s.Acted[0] {
		t.Error("A must act again after a full all-in raise")
	}
}

func TestApplyRejectsWithoutMutating(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 200, 200}, []int{10, 10, 10})
	before := s.Clone()

	_, err := Apply(&s, 1, Check{}) // out of turn
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if s.ToAct != before.ToAct || s.Pot != before.Pot {
		t.Error("failed apply mutated the state")
	}
	if len(s.Log) != len(before.Log) {
		t.Error("failed apply appended to the log")
	}
}

func TestApplyAppendsLog(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 200, 200}, []int{10, 10, 10})

	s = mustApply(t, s, 0, Bet{Amount: 30})
	s = mustApply(t, s, 1, Call{})

	if len(s.Log) != 2 {
		t.Fatalf("log has %d entries, want 2", len(s.Log))
	}
	want := []LogEntry{
		{Seat: 0, Kind: KindBet, Amount: 30, Street: Flop},
		{Seat: 1, Kind: KindCall, Amount: 30, Street: Flop},
	}
	for i, entry := range want {
		if s.Log[i] != entry {
			t.Errorf("log[%d] = %+v, want %+v", i, s.Log[i], entry)
		}
	}
}

func TestApplyBigBlindOptionPreflop(t *testing.T) {
	t.Parallel()

	s := NewHand(randutil.New(11), []string{"A", "B", "C"}, 0, 5, 10, WithUniformStacks(500))

	// Everyone limps; the big blind still gets the option.
	s = mustApply(t, s, 0, Call{})
	s = mustApply(t, s, 1, Call{})

	if s.Street != Preflop {
		t.Fatalf("round must stay open for the big blind, street = %v", s.Street)
	}
	if s.ToAct != 2 {
		t.Fatalf("toAct = %d, want big blind", s.ToAct)
	}
	if err := Validate(&s, 2, Raise{To: 30}); err != nil {
		t.Errorf("big blind should be able to raise the option: %v", err)
	}

	s = mustApply(t, s, 2, Check{})
	if s.Street != Flop {
		t.Errorf("street = %v, want flop after the option check", s.Street)
	}
	if len(s.Board) != 3 {
		t.Errorf("board has %d cards, want 3", len(s.Board))
	}
}
