package engine

import (
	"testing"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/randutil"
)

func TestNewHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()

	s := NewHand(randutil.New(1), []string{"A", "B", "C"}, 0, 5, 10, WithUniformStacks(200))

	if s.Players[1].StreetBet != 5 || s.Players[1].Stack != 195 {
		t.Errorf("small blind: bet %d stack %d", s.Players[1].StreetBet, s.Players[1].Stack)
	}
	if s.Players[2].StreetBet != 10 || s.Players[2].Stack != 190 {
		t.Errorf("big blind: bet %d stack %d", s.Players[2].StreetBet, s.Players[2].Stack)
	}
	if s.CurrentBet != 10 {
		t.Errorf("current bet = %d, want 10", s.CurrentBet)
	}
	if s.LastRaise != 10 {
		t.Errorf("last raise = %d, want big blind", s.LastRaise)
	}

	// Button opens three-handed preflop.
	if s.ToAct != 0 {
		t.Errorf("first to act = %d, want 0", s.ToAct)
	}

	seen := deck.CardSet(0)
	for i := range s.Players {
		if len(s.Players[i].Hole) != 4 {
			t.Fatalf("seat %d has %d hole cards, want 4", i, len(s.Players[i].Hole))
		}
		for _, c := range s.Players[i].Hole {
			if seen.Contains(c) {
				t.Fatalf("card %v dealt twice", c)
			}
			seen = seen.Add(c)
		}
	}

	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("fresh hand violates invariants: %v", err)
	}
}

func TestNewHandHeadsUpButtonPostsSmallBlindAndActsFirst(t *testing.T) {
	t.Parallel()

	s := NewHand(randutil.New(2), []string{"A", "B"}, 0, 5, 10)

	if s.Players[0].StreetBet != 5 {
		t.Errorf("button should post small blind, bet = %d", s.Players[0].StreetBet)
	}
	if s.Players[1].StreetBet != 10 {
		t.Errorf("other seat should post big blind, bet = %d", s.Players[1].StreetBet)
	}
	if s.ToAct != 0 {
		t.Errorf("button acts first heads-up, got %d", s.ToAct)
	}
}

func TestNewHandShortBlindIsForcedAllIn(t *testing.T) {
	t.Parallel()

	s := NewHand(randutil.New(3), []string{"A", "B", "C"}, 0, 5, 10, WithStacks([]int{200, 200, 4}))

	bb := &s.Players[2]
	if bb.StreetBet != 4 || !bb.AllIn || bb.Stack != 0 {
		t.Errorf("short big blind: bet %d allin %v stack %d", bb.StreetBet, bb.AllIn, bb.Stack)
	}
	// The table still plays to the full big blind.
	if s.CurrentBet != 10 {
		t.Errorf("current bet = %d, want 10", s.CurrentBet)
	}
}

func TestNewHandAllBlindAllInsFastForward(t *testing.T) {
	t.Parallel()

	// Both players are all-in from the blinds: the board runs out with no
	// betting and the hand arrives at showdown immediately.
	s := NewHand(randutil.New(4), []string{"A", "B"}, 0, 5, 10, WithStacks([]int{5, 10}))

	if s.Street != Showdown {
		t.Fatalf("street = %v, want showdown", s.Street)
	}
	if len(s.Board) != 5 {
		t.Errorf("board has %d cards, want 5", len(s.Board))
	}
	if s.ToAct != -1 {
		t.Errorf("to act = %d, want -1", s.ToAct)
	}
}

func TestNewHandPanicsOnMisuse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func()
	}{
		{"nil rng", func() { NewHand(nil, []string{"A", "B"}, 0, 5, 10) }},
		{"one player", func() { NewHand(randutil.New(1), []string{"A"}, 0, 5, 10) }},
		{"button out of range", func() { NewHand(randutil.New(1), []string{"A", "B"}, 2, 5, 10) }},
		{"bad blinds", func() { NewHand(randutil.New(1), []string{"A", "B"}, 0, 10, 5) }},
		{"stack count mismatch", func() {
			NewHand(randutil.New(1), []string{"A", "B"}, 0, 5, 10, WithStacks([]int{100}))
		}},
		{"zero stack", func() {
			NewHand(randutil.New(1), []string{"A", "B"}, 0, 5, 10, WithStacks([]int{100, 0}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.call()
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	s := NewHand(randutil.New(5), []string{"A", "B", "C"}, 0, 5, 10)
	c := s.Clone()

	c.Players[0].Stack = 1
	c.Acted[0] = true
	c.Log = append(c.Log, LogEntry{Seat: 0})

	if s.Players[0].Stack == 1 {
		t.Error("clone shares player slice")
	}
	if s.Acted[0] {
		t.Error("clone shares acted slice")
	}
	if len(s.Log) != 0 {
		t.Error("clone shares log")
	}
}
