package engine

import "fmt"

// CheckInvariants verifies the chip-conservation and ledger invariants that
// must hold after every transition. A violation is a programming fault:
// the returned *StateInconsistencyError carries the hand id and action log
// so the fault can be reconstructed, and the hand must be reset rather than
// repaired.
func (s *HandState) CheckInvariants() error {
	fail := func(format string, args ...any) error {
		return &StateInconsistencyError{
			HandID: s.ID,
			Detail: fmt.Sprintf(format, args...),
			Log:    s.Log,
		}
	}

	streetTotal := 0
	for i := range s.Players {
		p := &s.Players[i]
		if p.Stack < 0 {
			return fail("seat %d stack is negative: %d", i, p.Stack)
		}
		if p.HandBet < 0 || p.StreetBet < 0 {
			return fail("seat %d has negative investment", i)
		}
		if p.HandBet > p.StartStack {
			return fail("seat %d invested %d beyond starting stack %d", i, p.HandBet, p.StartStack)
		}
		// Payouts restock all-in winners, so the flag only binds while
		// the hand is live.
		if p.AllIn && p.Stack != 0 && !s.Settled {
			return fail("seat %d all-in with %d chips behind", i, p.Stack)
		}
		if p.StreetBet > s.CurrentBet && s.CurrentBet != 0 {
			return fail("seat %d street bet %d exceeds current bet %d", i, p.StreetBet, s.CurrentBet)
		}
		streetTotal += p.StreetBet
	}

	if !s.Settled {
		if invested := s.TotalInvested(); invested != s.Pot+streetTotal {
			return fail("invested %d != pot %d + live bets %d", invested, s.Pot, streetTotal)
		}
	}

	if s.CurrentBet < 0 {
		return fail("current bet is negative: %d", s.CurrentBet)
	}

	return nil
}
