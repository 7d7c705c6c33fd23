package engine

import (
	"fmt"
	"strconv"
)

// ActionKind identifies the kind of a player action.
type ActionKind int

const (
	KindFold ActionKind = iota
	KindCheck
	KindCall
	KindBet
	KindRaise
	KindAllIn
)

func (k ActionKind) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[k]
}

// ParseActionKind parses the wire/CLI vocabulary for actions.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "fold":
		return KindFold, nil
	case "check":
		return KindCheck, nil
	case "call":
		return KindCall, nil
	case "bet":
		return KindBet, nil
	case "raise":
		return KindRaise, nil
	case "allin", "all-in":
		return KindAllIn, nil
	default:
		return 0, fmt.Errorf("engine: unknown action %q", s)
	}
}

// Action is a tagged player action. Amounts only exist on the variants that
// need them, so an invalid kind/amount combination cannot be expressed.
type Action interface {
	Kind() ActionKind
	String() string
	isAction()
}

// Fold gives up the hand.
type Fold struct{}

// Check passes when there is nothing to call.
type Check struct{}

// Call matches the current bet, clamped to the player's stack.
type Call struct{}

// Bet opens the betting on a street at Amount.
type Bet struct {
	Amount int
}

// Raise increases the current bet to the street investment level To.
type Raise struct {
	To int
}

// AllIn commits the player's entire remaining stack.
type AllIn struct{}

func (Fold) Kind() ActionKind  { return KindFold }
func (Check) Kind() ActionKind { return KindCheck }
func (Call) Kind() ActionKind  { return KindCall }
func (Bet) Kind() ActionKind   { return KindBet }
func (Raise) Kind() ActionKind { return KindRaise }
func (AllIn) Kind() ActionKind { return KindAllIn }

func (Fold) String() string    { return "fold" }
func (Check) String() string   { return "check" }
func (Call) String() string    { return "call" }
func (a Bet) String() string   { return "bet " + strconv.Itoa(a.Amount) }
func (a Raise) String() string { return "raise to " + strconv.Itoa(a.To) }
func (AllIn) String() string   { return "allin" }

func (Fold) isAction()  {}
func (Check) isAction() {}
func (Call) isAction()  {}
func (Bet) isAction()   {}
func (Raise) isAction() {}
func (AllIn) isAction() {}

// MakeAction builds an Action from a kind and optional amount, for callers
// that receive the two separately (wire protocol, CLI input). Bet and raise
// require an amount; the other kinds ignore it.
func MakeAction(kind ActionKind, amount int) (Action, error) {
	switch kind {
	case KindFold:
		return Fold{}, nil
	case KindCheck:
		return Check{}, nil
	case KindCall:
		return Call{}, nil
	case KindBet:
		if amount <= 0 {
			return nil, fmt.Errorf("engine: bet requires a positive amount")
		}
		return Bet{Amount: amount}, nil
	case KindRaise:
		if amount <= 0 {
			return nil, fmt.Errorf("engine: raise requires a positive amount")
		}
		return Raise{To: amount}, nil
	case KindAllIn:
		return AllIn{}, nil
	default:
		return nil, fmt.Errorf("engine: unknown action kind %d", kind)
	}
}
