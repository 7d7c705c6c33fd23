package engine

// Apply validates and applies one action, returning the successor state.
// The input state is never mutated: on success the caller replaces its copy
// with the returned one, on error it keeps what it has.
//
// Validation failures come back as *ValidationError or
// *InsufficientStackError with the state untouched. A violated invariant
// after the transition comes back as *StateInconsistencyError; that is a
// bug in the engine, and the hand must be abandoned.
func Apply(s *HandState, seat int, action Action) (HandState, error) {
	if err := Validate(s, seat, action); err != nil {
		return HandState{}, err
	}

	next := s.Clone()
	next.applyValidated(seat, action)

	if err := next.CheckInvariants(); err != nil {
		return HandState{}, err
	}
	return next, nil
}

// applyValidated performs the chip movement and bookkeeping for an action
// that has passed Validate, then advances the turn and, when the round
// closes, the street.
func (s *HandState) applyValidated(seat int, action Action) {
	p := &s.Players[seat]
	gap := s.CurrentBet - p.StreetBet
	moved := 0

	switch a := action.(type) {
	case Fold:
		p.Folded = true
		if s.LastRaiser == seat {
			s.LastRaiser = -1
		}

	case Check:
		// No chips move.

	case Call:
		moved = min(gap, p.Stack)
		p.pay(moved)

	case Bet:
		moved = a.Amount - p.StreetBet
		p.pay(moved)
		s.CurrentBet = a.Amount
		s.reopenBetting(seat, a.Amount)

	case Raise:
		moved = a.To - p.StreetBet
		p.pay(moved)
		increment := a.To - s.CurrentBet
		s.CurrentBet = a.To
		if increment >= s.LastRaise {
			s.reopenBetting(seat, increment)
		}
		// An under-raise all-in lifts the bet without reopening: acted
		// flags and the raise reference stay as they were.

	case AllIn:
		moved = p.Stack
		p.pay(moved)
		if p.StreetBet > s.CurrentBet {
			increment := p.StreetBet - s.CurrentBet
			level := p.StreetBet
			s.CurrentBet = level
			if increment >= s.LastRaise {
				s.reopenBetting(seat, increment)
			}
		}
	}

	s.Acted[seat] = true
	s.Log = append(s.Log, LogEntry{Seat: seat, Kind: action.Kind(), Amount: moved, Street: s.Street})

	// Everyone else folded: betting is over regardless of street.
	if s.countInHand() == 1 {
		s.sweepStreetBets()
		s.Street = Showdown
		s.ToAct = -1
		return
	}

	s.ToAct = s.nextCanAct(seat + 1)
	if s.ToAct == -1 || s.roundClosed() {
		s.nextStreet()
	}
}

// sweepStreetBets moves the live street bets into the pot.
func (s *HandState) sweepStreetBets() {
	for i := range s.Players {
		s.Pot += s.Players[i].StreetBet
		s.Players[i].StreetBet = 0
	}
}

// nextStreet closes the current round and opens the next one: bets are
// swept, the betting state resets, and community cards are dealt. When at
// most one player can still act, the remaining streets are dealt through
// with no further betting, straight to showdown.
func (s *HandState) nextStreet() {
	s.sweepStreetBets()
	s.CurrentBet = 0
	s.LastRaise = s.BigBlind
	s.LastRaiser = -1
	for i := range s.Acted {
		s.Acted[i] = false
	}

	switch s.Street {
	case Preflop:
		s.Street = Flop
		s.Board = append(s.Board, s.Deck.Deal(3)...)
	case Flop:
		s.Street = Turn
		s.Board = append(s.Board, s.Deck.Deal(1)...)
	case Turn:
		s.Street = River
		s.Board = append(s.Board, s.Deck.Deal(1)...)
	case River:
		s.Street = Showdown
	case Showdown:
		return
	}

	if s.Street == Showdown {
		s.ToAct = -1
		return
	}

	s.ToAct = s.nextCanAct(s.Button + 1)

	// Fast-forward: with no one left to bet against, run the board out.
	if s.ToAct == -1 || s.countCanAct() <= 1 {
		s.ToAct = -1
		if s.countInHand() > 1 {
			s.nextStreet()
		}
	}
}
