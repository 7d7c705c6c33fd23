package engine

import (
	rand "math/rand/v2"
	"testing"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/evaluator"
	"github.com/lcrostarosa/ploscope/internal/randutil"
)

// randomAction picks a uniformly random legal action for the current actor,
// choosing amounts inside the advertised ranges.
func randomAction(rng *rand.Rand, s *HandState) (int, Action) {
	seat := s.ToAct
	available := AvailableActions(s, seat)
	pick := available[rng.IntN(len(available))]
	switch pick.Kind {
	case KindFold:
		return seat, Fold{}
	case KindCheck:
		return seat, Check{}
	case KindCall:
		return seat, Call{}
	case KindBet:
		return seat, Bet{Amount: pick.Min + rng.IntN(pick.Max-pick.Min+1)}
	case KindRaise:
		return seat, Raise{To: pick.Min + rng.IntN(pick.Max-pick.Min+1)}
	default:
		return seat, AllIn{}
	}
}

func omahaRank(hole, board []deck.Card) (Rank, error) {
	return Rank(evaluator.RankOmaha(hole, board)), nil
}

// Play several hundred random hands end to end: every reachable state must
// satisfy the ledger invariants, every settlement must conserve chips.
func TestRandomPlayoutsPreserveInvariants(t *testing.T) {
	t.Parallel()

	rng := randutil.New(1234)

	for hand := 0; hand < 300; hand++ {
		numPlayers := 2 + rng.IntN(4)
		names := make([]string, numPlayers)
		stacks := make([]int, numPlayers)
		total := 0
		for i := range names {
			names[i] = string(rune('A' + i))
			stacks[i] = 20 + rng.IntN(400)
			total += stacks[i]
		}
		button := rng.IntN(numPlayers)

		s := NewHand(rng, names, button, 5, 10, WithStacks(stacks))

		steps := 0
		for !s.BettingClosed() {
			if steps++; steps > 200 {
				t.Fatalf("hand %d did not terminate", hand)
			}
			seat, action := randomAction(rng, &s)
			next, err := Apply(&s, seat, action)
			if err != nil {
				t.Fatalf("hand %d step %d seat %d %s: %v", hand, steps, seat, action, err)
			}
			s = next
			if err := s.CheckInvariants(); err != nil {
				t.Fatalf("hand %d after %s: %v", hand, action, err)
			}
		}

		payouts, err := Settle(&s, omahaRank)
		if err != nil {
			t.Fatalf("hand %d settle: %v", hand, err)
		}
		done := ApplyPayouts(&s, payouts)

		after := 0
		for i := range done.Players {
			if done.Players[i].Stack < 0 {
				t.Fatalf("hand %d seat %d negative stack", hand, i)
			}
			after += done.Players[i].Stack
		}
		if after != total {
			t.Fatalf("hand %d chips not conserved: %d -> %d", hand, total, after)
		}
	}
}
