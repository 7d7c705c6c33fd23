package engine

import "sort"

// SidePot is one contested segment of the pot. Eligible lists the in-hand
// seats whose total investment reached Cap, the segment's investment
// threshold.
type SidePot struct {
	Amount   int
	Cap      int
	Eligible []int
}

// ComputeSidePots partitions the hand's investments into ordered contested
// pots (main pot first, ascending by cap) plus uncalled refunds.
//
// The walk visits each distinct investment level of the in-hand players.
// The slice between two levels collects every player's contribution within
// that band, including money from players who later folded. A slice whose
// eligible set has a single member is not a contested pot: it goes back to
// that player as a refund.
//
// The function is pure and idempotent, so it also serves as the read-only
// mid-hand projection for display.
func ComputeSidePots(players []Player) ([]SidePot, map[int]int) {
	// Distinct investment levels of in-hand players, ascending. Non
	// all-in players share the top level once a street is settled; all-in
	// players contribute their own caps.
	levelSet := make(map[int]bool)
	for i := range players {
		p := &players[i]
		if p.InHand() && p.HandBet > 0 {
			levelSet[p.HandBet] = true
		}
	}
	levels := make([]int, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	var pots []SidePot
	refunds := make(map[int]int)

	prev := 0
	for _, level := range levels {
		amount := 0
		for i := range players {
			contribution := min(players[i].HandBet, level) - prev
			if contribution > 0 {
				amount += contribution
			}
		}

		var eligible []int
		for i := range players {
			if players[i].InHand() && players[i].HandBet >= level {
				eligible = append(eligible, i)
			}
		}

		switch {
		case amount == 0:
			// Nothing contributed in this band.
		case len(eligible) > 1:
			pots = append(pots, SidePot{Amount: amount, Cap: level, Eligible: eligible})
		case len(eligible) == 1:
			refunds[eligible[0]] += amount
		}
		prev = level
	}

	return pots, refunds
}
