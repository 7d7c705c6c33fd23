package table

import (
	"context"
	"errors"
	"time"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
)

// resolveShowdownLocked settles the current hand. It is called with the
// mutex held and betting closed.
//
// The evaluator is an external collaborator with unknown latency, so the
// hand is frozen and the lock released for the duration of the call;
// concurrent actions see ErrHandFrozen instead of blocking. The generation
// counter guards the re-acquire: if the hand was reset while the evaluator
// ran, the result is discarded rather than applied to the wrong hand.
func (t *Table) resolveShowdownLocked() (engine.HandState, error) {
	gen := t.gen
	t.frozen = true
	snapshot := t.state.Clone()

	t.mu.Unlock()
	payouts, err := t.settle(&snapshot)
	t.mu.Lock()

	if t.gen != gen {
		t.logger.Info("discarding stale showdown resolution", "hand", snapshot.ID)
		return engine.HandState{}, ErrHandComplete
	}
	t.frozen = false

	if err != nil {
		var evalErr *engine.EvaluationError
		if errors.As(err, &evalErr) {
			// Recoverable: void the hand and give everyone their
			// investment back.
			t.logger.Warn("evaluation failed, refunding hand", "hand", snapshot.ID, "error", err)
			t.state = engine.RefundAll(&t.state)
			t.syncStacksLocked()
			t.lastPayouts = nil
			t.bus.Publish(HandAbortedEvent{
				HandID:    snapshot.ID,
				Reason:    "evaluation failed: " + evalErr.Err.Error(),
				timestamp: time.Now(),
			})
			t.save()
			return t.state.Clone(), nil
		}
		t.broken = true
		t.logger.Error("showdown resolution failed", "hand", snapshot.ID, "error", err)
		return engine.HandState{}, err
	}

	t.state = engine.ApplyPayouts(&t.state, payouts)
	t.syncStacksLocked()

	byTableSeat := make(map[int]int, len(payouts))
	for handSeat, amount := range payouts {
		byTableSeat[t.handSeats[handSeat]] = amount
	}
	t.lastPayouts = byTableSeat

	t.logger.Info("hand settled", "hand", snapshot.ID, "payouts", byTableSeat)
	t.bus.Publish(HandSettledEvent{
		HandID:    snapshot.ID,
		Payouts:   byTableSeat,
		Board:     t.state.Clone().Board,
		Players:   t.state.Clone().Players,
		timestamp: time.Now(),
	})
	t.save()
	return t.state.Clone(), nil
}

// settle runs engine settlement with the evaluation call bounded by the
// table's deadline. Called without the mutex.
func (t *Table) settle(s *engine.HandState) (map[int]int, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := t.clock.AfterFunc(t.evalTimeout, cancel)
	defer timer.Stop()

	rank := func(hole, board []deck.Card) (engine.Rank, error) {
		return t.eval.Rank(ctx, hole, board)
	}
	return engine.Settle(s, rank)
}
