package engine

import (
	"fmt"
	"strings"
)

// ValidationError reports an action that fails a legality rule. It is
// always recoverable: the state is unchanged and the caller may re-prompt.
type ValidationError struct {
	Seat   int
	Kind   ActionKind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("seat %d cannot %s: %s", e.Seat, e.Kind, e.Reason)
}

// InsufficientStackError reports a bet or raise target beyond the player's
// reach. Max is the all-in level that would have been legal.
type InsufficientStackError struct {
	Seat      int
	Requested int
	Max       int
}

func (e *InsufficientStackError) Error() string {
	return fmt.Sprintf("seat %d cannot put in %d: all-in maximum is %d", e.Seat, e.Requested, e.Max)
}

// StateInconsistencyError reports a violated engine invariant. It is a
// programming fault, fatal to the hand: the hand must be reset, never
// repaired. The action log is carried for diagnosis.
type StateInconsistencyError struct {
	HandID string
	Detail string
	Log    []LogEntry
}

func (e *StateInconsistencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hand %s inconsistent: %s", e.HandID, e.Detail)
	if len(e.Log) > 0 {
		b.WriteString(" (log:")
		for _, entry := range e.Log {
			fmt.Fprintf(&b, " %s:seat%d:%s:%d", entry.Street, entry.Seat, entry.Kind, entry.Amount)
		}
		b.WriteString(")")
	}
	return b.String()
}

// EvaluationError reports a failure of the external hand evaluator during
// showdown. The hand's chips are refunded rather than left in limbo.
type EvaluationError struct {
	HandID string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("hand %s evaluation failed: %v", e.HandID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
