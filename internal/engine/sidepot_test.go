package engine

import (
	"reflect"
	"testing"
)

func ledger(seat, handBet int, folded, allIn bool) Player {
	return Player{
		Seat:       seat,
		HandBet:    handBet,
		StartStack: handBet + 1000,
		Folded:     folded,
		AllIn:      allIn,
	}
}

// Scenario A from the betting engine contract: B all-in for 50, A and C
// invested 150 each.
func TestSidePotsThreeWay(t *testing.T) {
	t.Parallel()

	players := []Player{
		ledger(0, 150, false, false),
		ledger(1, 50, false, true),
		ledger(2, 150, false, false),
	}

	pots, refunds := ComputeSidePots(players)

	if len(pots) != 2 {
		t.Fatalf("got %d pots, want 2: %+v", len(pots), pots)
	}
	if pots[0].Amount != 150 || !reflect.DeepEqual(pots[0].Eligible, []int{0, 1, 2}) {
		t.Errorf("main pot = %+v, want 150 for {0,1,2}", pots[0])
	}
	if pots[0].Cap != 50 {
		t.Errorf("main pot cap = %d, want 50", pots[0].Cap)
	}
	if pots[1].Amount != 200 || !reflect.DeepEqual(pots[1].Eligible, []int{0, 2}) {
		t.Errorf("side pot = %+v, want 200 for {0,2}", pots[1])
	}
	if len(refunds) != 0 {
		t.Errorf("unexpected refunds: %v", refunds)
	}
}

func TestSidePotsNoAllIns(t *testing.T) {
	t.Parallel()

	players := []Player{
		ledger(0, 100, false, false),
		ledger(1, 100, false, false),
		ledger(2, 100, true, false), // folded after matching
	}

	pots, refunds := ComputeSidePots(players)

	if len(pots) != 1 {
		t.Fatalf("got %d pots, want 1", len(pots))
	}
	if pots[0].Amount != 300 {
		t.Errorf("pot = %d, want 300 including folded chips", pots[0].Amount)
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{0, 1}) {
		t.Errorf("eligible = %v, want {0,1}", pots[0].Eligible)
	}
	if len(refunds) != 0 {
		t.Errorf("unexpected refunds: %v", refunds)
	}
}

// An uncalled raise over the shorter stack goes back to the raiser rather
// than forming a one-player pot.
func TestSidePotsUncalledExcessRefunded(t *testing.T) {
	t.Parallel()

	players := []Player{
		ledger(0, 200, false, false),
		ledger(1, 80, false, true),
	}

	pots, refunds := ComputeSidePots(players)

	if len(pots) != 1 {
		t.Fatalf("got %d pots, want 1: %+v", len(pots), pots)
	}
	if pots[0].Amount != 160 {
		t.Errorf("contested pot = %d, want 160", pots[0].Amount)
	}
	if refunds[0] != 120 {
		t.Errorf("refund to seat 0 = %d, want 120", refunds[0])
	}
}

// Dead money from a fold between two all-in levels belongs to the single
// player who covered that layer.
func TestSidePotsFoldedMoneyAboveShortAllIn(t *testing.T) {
	t.Parallel()

	players := []Player{
		ledger(0, 50, false, true),  // short all-in
		ledger(1, 150, false, false),
		ledger(2, 100, true, false), // folded after investing 100
	}

	pots, refunds := ComputeSidePots(players)

	if len(pots) != 1 {
		t.Fatalf("got %d pots, want 1: %+v", len(pots), pots)
	}
	// 50 from each of the three players.
	if pots[0].Amount != 150 || pots[0].Cap != 50 {
		t.Errorf("main pot = %+v, want 150 capped at 50", pots[0])
	}
	// Layer 50..150 has only seat 1 eligible: their 100 plus the folded
	// player's 50 come back as an uncontested award.
	if refunds[1] != 150 {
		t.Errorf("refund to seat 1 = %d, want 150", refunds[1])
	}
}

func TestSidePotsLadderedAllIns(t *testing.T) {
	t.Parallel()

	players := []Player{
		ledger(0, 25, false, true),
		ledger(1, 75, false, true),
		ledger(2, 200, false, true),
		ledger(3, 200, false, false),
	}

	pots, refunds := ComputeSidePots(players)

	wantAmounts := []int{100, 150, 250}
	wantEligible := [][]int{{0, 1, 2, 3}, {1, 2, 3}, {2, 3}}
	if len(pots) != len(wantAmounts) {
		t.Fatalf("got %d pots, want %d: %+v", len(pots), len(wantAmounts), pots)
	}
	for i := range pots {
		if pots[i].Amount != wantAmounts[i] {
			t.Errorf("pot %d amount = %d, want %d", i, pots[i].Amount, wantAmounts[i])
		}
		if !reflect.DeepEqual(pots[i].Eligible, wantEligible[i]) {
			t.Errorf("pot %d eligible = %v, want %v", i, pots[i].Eligible, wantEligible[i])
		}
	}
	if len(refunds) != 0 {
		t.Errorf("unexpected refunds: %v", refunds)
	}
}

// Pot amounts plus refunds always equal total investment, and ordering of
// the input seats never changes the result.
func TestSidePotsConservationAndIdempotence(t *testing.T) {
	t.Parallel()

	cases := [][]Player{
		{
			ledger(0, 13, false, true),
			ledger(1, 250, false, false),
			ledger(2, 99, true, false),
			ledger(3, 178, false, true),
			ledger(4, 250, false, false),
		},
		{
			ledger(0, 10, false, true),
			ledger(1, 10, false, true),
			ledger(2, 10, false, false),
		},
		{
			ledger(0, 500, false, false),
			ledger(1, 1, false, true),
		},
	}

	for _, players := range cases {
		total := 0
		for i := range players {
			total += players[i].HandBet
		}

		pots, refunds := ComputeSidePots(players)
		sum := 0
		for _, pot := range pots {
			sum += pot.Amount
			if len(pot.Eligible) < 2 {
				t.Errorf("contested pot with %d eligible players: %+v", len(pot.Eligible), pot)
			}
		}
		for _, r := range refunds {
			sum += r
		}
		if sum != total {
			t.Errorf("pots+refunds = %d, want %d", sum, total)
		}

		again, againRefunds := ComputeSidePots(players)
		if !reflect.DeepEqual(pots, again) || !reflect.DeepEqual(refunds, againRefunds) {
			t.Error("ComputeSidePots is not idempotent")
		}
	}
}

// The calculator doubles as the mid-hand display projection.
func TestSidePotsMidHandProjection(t *testing.T) {
	t.Parallel()

	s := flopState(t, []int{200, 50, 200}, []int{0, 0, 0})
	s = mustApply(t, s, 0, Bet{Amount: 50})
	s = mustApply(t, s, 1, AllIn{})

	pots, _ := ComputeSidePots(s.Players)
	if len(pots) != 1 || pots[0].Amount != 100 {
		t.Errorf("mid-hand pots = %+v, want one 100 pot", pots)
	}
}
