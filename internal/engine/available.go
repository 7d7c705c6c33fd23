package engine

// AvailableAction describes one action a player may take right now, with
// the amount range where one applies. PotLimit carries the pot-limit sizing
// cap for bet and raise: it is the recommended maximum for Pot-Limit Omaha,
// surfaced for UIs and bots, while strict legality remains stack-bounded.
type AvailableAction struct {
	Kind     ActionKind
	Min      int // minimum legal amount (bet amount / raise-to level)
	Max      int // the player's all-in level
	PotLimit int // pot-limit cap, clamped to Max
}

// AvailableActions returns the actions open to seat. It is a pure
// projection: calling it repeatedly without an intervening transition
// yields identical results. A seat that is not due to act gets nil.
func AvailableActions(s *HandState, seat int) []AvailableAction {
	if s.Settled || s.BettingClosed() || seat != s.ToAct {
		return nil
	}
	p := &s.Players[seat]
	if !p.CanAct() {
		return nil
	}

	gap := s.CurrentBet - p.StreetBet
	actions := []AvailableAction{{Kind: KindFold}}

	if gap == 0 {
		actions = append(actions, AvailableAction{Kind: KindCheck})
	} else {
		actions = append(actions, AvailableAction{Kind: KindCall, Min: min(gap, p.Stack), Max: min(gap, p.Stack)})
	}

	if s.CurrentBet == 0 && p.Stack > 0 {
		minBet := min(s.BigBlind, p.Reach())
		actions = append(actions, AvailableAction{
			Kind:     KindBet,
			Min:      minBet,
			Max:      p.Reach(),
			PotLimit: clamp(PotLimitBet(s), minBet, p.Reach()),
		})
	}

	// Raising needs chips beyond the call and a betting round that is
	// still open for this player.
	if s.CurrentBet > 0 && p.Stack > gap && !s.Acted[seat] {
		minRaise := min(s.CurrentBet+s.LastRaise, p.Reach())
		actions = append(actions, AvailableAction{
			Kind:     KindRaise,
			Min:      minRaise,
			Max:      p.Reach(),
			PotLimit: clamp(PotLimitRaise(s, seat), minRaise, p.Reach()),
		})
	}

	if p.Stack > 0 {
		actions = append(actions, AvailableAction{Kind: KindAllIn, Min: p.Reach(), Max: p.Reach()})
	}

	return actions
}

// PotLimitBet is the pot-sized opening bet: the full pot as it stands.
func PotLimitBet(s *HandState) int {
	return s.PotTotal()
}

// PotLimitRaise is the pot-sized raise-to level for seat: the current bet
// plus the pot as it would stand after their call.
func PotLimitRaise(s *HandState, seat int) int {
	gap := s.CurrentBet - s.Players[seat].StreetBet
	return s.CurrentBet + s.PotTotal() + gap
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
