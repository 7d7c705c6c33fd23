package engine

import "fmt"

// Validate checks the legality of an action without side effects. It
// returns nil when the action may be applied, a *ValidationError when a
// rule fails, or an *InsufficientStackError when an explicit bet or raise
// target exceeds the player's reach.
//
// Calls are never rejected for stack size: a call that exceeds the stack is
// applied as a forced all-in. Only explicit bet and raise targets are
// checked against the player's reach.
func Validate(s *HandState, seat int, action Action) error {
	if seat < 0 || seat >= len(s.Players) {
		return &ValidationError{Seat: seat, Kind: action.Kind(), Reason: "no such seat"}
	}
	if s.Settled {
		return &ValidationError{Seat: seat, Kind: action.Kind(), Reason: "hand is complete"}
	}
	if s.BettingClosed() {
		return &ValidationError{Seat: seat, Kind: action.Kind(), Reason: "betting is closed"}
	}
	if seat != s.ToAct {
		return &ValidationError{Seat: seat, Kind: action.Kind(), Reason: "not this player's turn"}
	}

	p := &s.Players[seat]
	if !p.CanAct() {
		return &ValidationError{Seat: seat, Kind: action.Kind(), Reason: "player cannot act"}
	}

	gap := s.CurrentBet - p.StreetBet

	switch a := action.(type) {
	case Fold:
		return nil

	case Check:
		if gap != 0 {
			return &ValidationError{Seat: seat, Kind: KindCheck,
				Reason: fmt.Sprintf("must call %d", gap)}
		}
		return nil

	case Call:
		if gap <= 0 {
			return &ValidationError{Seat: seat, Kind: KindCall, Reason: "nothing to call"}
		}
		return nil

	case Bet:
		if s.CurrentBet != 0 {
			return &ValidationError{Seat: seat, Kind: KindBet,
				Reason: fmt.Sprintf("betting already opened at %d, raise instead", s.CurrentBet)}
		}
		if a.Amount <= 0 {
			return &ValidationError{Seat: seat, Kind: KindBet, Reason: "amount must be positive"}
		}
		if a.Amount > p.Reach() {
			return &InsufficientStackError{Seat: seat, Requested: a.Amount, Max: p.Reach()}
		}
		// A short stack may open for less than the big blind only by
		// committing everything.
		if a.Amount < s.BigBlind && a.Amount != p.Reach() {
			return &ValidationError{Seat: seat, Kind: KindBet,
				Reason: fmt.Sprintf("minimum bet is %d", s.BigBlind)}
		}
		return nil

	case Raise:
		if s.CurrentBet == 0 {
			return &ValidationError{Seat: seat, Kind: KindRaise, Reason: "nothing to raise, bet instead"}
		}
		if a.To <= s.CurrentBet {
			return &ValidationError{Seat: seat, Kind: KindRaise,
				Reason: fmt.Sprintf("raise target %d must exceed current bet %d", a.To, s.CurrentBet)}
		}
		if a.To > p.Reach() {
			return &InsufficientStackError{Seat: seat, Requested: a.To, Max: p.Reach()}
		}
		// A player who already acted and has not since faced a full raise
		// may only call or fold; an under-raise all-in did not reopen the
		// betting for them.
		if s.Acted[seat] {
			return &ValidationError{Seat: seat, Kind: KindRaise, Reason: "betting was not reopened"}
		}
		// Minimum raise: the increment must match the last full raise (or
		// the big blind), unless the raiser commits their entire stack.
		if a.To-s.CurrentBet < s.LastRaise && a.To != p.Reach() {
			return &ValidationError{Seat: seat, Kind: KindRaise,
				Reason: fmt.Sprintf("raise too small, minimum %d", s.CurrentBet+s.LastRaise)}
		}
		return nil

	case AllIn:
		if p.Stack <= 0 {
			return &ValidationError{Seat: seat, Kind: KindAllIn, Reason: "no chips behind"}
		}
		return nil

	default:
		return &ValidationError{Seat: seat, Kind: action.Kind(), Reason: "unknown action"}
	}
}
