package engine

// roundClosed reports whether the current street's betting is finished:
// every player who can still act has both acted since the last full raise
// and matched the current bet. Players all-in for less are not waited on.
//
// Blind posts do not count as acting, so on an unraised preflop pot the big
// blind's unset acted flag keeps the round open for the option.
func (s *HandState) roundClosed() bool {
	for i := range s.Players {
		p := &s.Players[i]
		if !p.CanAct() {
			continue
		}
		if p.StreetBet != s.CurrentBet {
			return false
		}
		if !s.Acted[i] {
			return false
		}
	}
	return true
}

// reopenBetting registers a full raise by seat: every other player able to
// act must respond again.
func (s *HandState) reopenBetting(seat, increment int) {
	s.LastRaise = increment
	s.LastRaiser = seat
	for i := range s.Acted {
		s.Acted[i] = false
	}
	s.Acted[seat] = true
}
