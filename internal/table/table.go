// Package table owns a single-table session around the betting engine: it
// serializes access, starts and retires hands, brokers the external hand
// evaluator at showdown, and publishes events for the TUI, the gateway and
// the history recorder.
//
// The engine itself is pure; the table is the one component holding the
// current state and swapping it for each successor returned by the engine.
package table

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/handid"
	"github.com/lcrostarosa/ploscope/internal/randutil"
)

var (
	// ErrHandFrozen is returned while a showdown resolution is in flight:
	// between round closure and payout no actions are accepted.
	ErrHandFrozen = errors.New("table: hand is frozen awaiting showdown resolution")
	// ErrHandBroken is returned after an engine invariant violation; the
	// hand is unusable until explicitly reset.
	ErrHandBroken = errors.New("table: hand is broken, reset required")
	// ErrNotYourTurn is returned when a seat acts out of turn.
	ErrNotYourTurn = errors.New("table: not this seat's turn")
	// ErrHandComplete is returned once the hand is settled.
	ErrHandComplete = errors.New("table: hand is complete")
	// ErrNotEnoughPlayers is returned when fewer than two seats have chips.
	ErrNotEnoughPlayers = errors.New("table: need at least two funded seats")
	// ErrSittingOut is returned for a seat with no chips in play.
	ErrSittingOut = errors.New("table: seat is sitting out")
)

// Evaluator is the external hand-strength oracle consumed at showdown.
// Implementations must honour ctx: the table bounds the call with its
// evaluation deadline.
type Evaluator interface {
	Rank(ctx context.Context, hole, board []deck.Card) (engine.Rank, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, hole, board []deck.Card) (engine.Rank, error)

func (f EvaluatorFunc) Rank(ctx context.Context, hole, board []deck.Card) (engine.Rank, error) {
	return f(ctx, hole, board)
}

// Saver persists hand snapshots for cross-session resume.
type Saver interface {
	Save(state *engine.HandState) error
}

// Savers fans each snapshot out to several savers, for sessions that both
// persist state and record hand histories.
type Savers []Saver

func (ss Savers) Save(state *engine.HandState) error {
	var errs []error
	for _, s := range ss {
		if err := s.Save(state); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Seat is one chair at the table. A seat with no chips sits out until the
// table is reconfigured.
type Seat struct {
	Name       string
	Stack      int
	SittingOut bool
}

// AmountRange is returned when a bet or raise arrives without an amount:
// the caller is told the legal range instead of the engine touching any UI.
type AmountRange struct {
	Min      int
	Max      int
	PotLimit int
}

// Outcome is the result of HandleAction. Exactly one of the optional
// fields is set beyond State.
type Outcome struct {
	State       engine.HandState
	NeedsAmount *AmountRange // amount required before the action can apply
	Payouts     map[int]int  // by table seat, set when this action settled the hand
}

// Config configures a table session.
type Config struct {
	Names       []string
	Stacks      []int
	SmallBlind  int
	BigBlind    int
	Seed        int64
	EvalTimeout time.Duration // bound on the showdown evaluation call
}

// Option customises table construction.
type Option func(*Table)

// WithClock injects the clock used for the evaluation deadline. Tests use
// quartz.NewMock.
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) { t.clock = clock }
}

// WithBus uses an existing event bus instead of a fresh one.
func WithBus(bus *Bus) Option {
	return func(t *Table) { t.bus = bus }
}

// WithSaver persists a snapshot after every transition.
func WithSaver(saver Saver) Option {
	return func(t *Table) { t.saver = saver }
}

// WithRand overrides the seeded rng, for deterministic decks in tests.
func WithRand(rng *rand.Rand) Option {
	return func(t *Table) { t.rng = rng }
}

// Table is a single-hand, single-process session. All methods are safe for
// concurrent use; one action is validated and applied at a time.
type Table struct {
	mu     sync.Mutex
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand
	eval   Evaluator
	bus    *Bus
	saver  Saver

	smallBlind  int
	bigBlind    int
	evalTimeout time.Duration

	seats  []Seat
	button int // table seat index

	state     engine.HandState
	handSeats []int // hand seat -> table seat
	seatIndex []int // table seat -> hand seat, -1 when sitting out
	inHand    bool

	gen    int // hand generation; stale showdown resolutions are discarded
	frozen bool
	broken bool

	// lastPayouts holds the most recent settlement keyed by table seat;
	// valid immediately after a resolution.
	lastPayouts map[int]int
}

// New creates a table session. The evaluator is required; the first hand is
// not dealt until StartHand.
func New(cfg Config, eval Evaluator, logger *log.Logger, opts ...Option) (*Table, error) {
	if len(cfg.Names) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if len(cfg.Stacks) != len(cfg.Names) {
		return nil, fmt.Errorf("table: %d stacks for %d names", len(cfg.Stacks), len(cfg.Names))
	}
	if cfg.SmallBlind <= 0 || cfg.BigBlind < cfg.SmallBlind {
		return nil, fmt.Errorf("table: invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}
	if eval == nil {
		return nil, fmt.Errorf("table: evaluator is required")
	}

	t := &Table{
		logger:      logger.WithPrefix("table"),
		clock:       quartz.NewReal(),
		rng:         randutil.New(cfg.Seed),
		eval:        eval,
		bus:         NewBus(),
		smallBlind:  cfg.SmallBlind,
		bigBlind:    cfg.BigBlind,
		evalTimeout: cfg.EvalTimeout,
		seats:       make([]Seat, len(cfg.Names)),
	}
	if t.evalTimeout <= 0 {
		t.evalTimeout = 5 * time.Second
	}
	for i, name := range cfg.Names {
		t.seats[i] = Seat{Name: name, Stack: cfg.Stacks[i], SittingOut: cfg.Stacks[i] <= 0}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Bus returns the table's event bus for subscribers.
func (t *Table) Bus() *Bus { return t.bus }

// Seats returns a copy of the roster.
func (t *Table) Seats() []Seat {
	t.mu.Lock()
	defer t.mu.Unlock()
	seats := make([]Seat, len(t.seats))
	copy(seats, t.seats)
	return seats
}

// StartHand deals the first hand. Subsequent hands go through ResetHand.
func (t *Table) StartHand() (engine.HandState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inHand && !t.state.Complete() && !t.broken {
		return engine.HandState{}, fmt.Errorf("table: hand %s still in progress", t.state.ID)
	}
	return t.dealLocked()
}

// dealLocked builds a hand from the funded seats.
func (t *Table) dealLocked() (engine.HandState, error) {
	var names []string
	var stacks []int
	t.handSeats = t.handSeats[:0]
	t.seatIndex = make([]int, len(t.seats))
	for i := range t.seatIndex {
		t.seatIndex[i] = -1
	}
	for i, seat := range t.seats {
		if seat.SittingOut || seat.Stack <= 0 {
			continue
		}
		t.seatIndex[i] = len(names)
		t.handSeats = append(t.handSeats, i)
		names = append(names, seat.Name)
		stacks = append(stacks, seat.Stack)
	}
	if len(names) < 2 {
		return engine.HandState{}, ErrNotEnoughPlayers
	}

	// The button must sit on a funded seat.
	for t.seatIndex[t.button] == -1 {
		t.button = (t.button + 1) % len(t.seats)
	}

	id := handid.New()
	t.state = engine.NewHand(t.rng, names, t.seatIndex[t.button], t.smallBlind, t.bigBlind,
		engine.WithStacks(stacks), engine.WithID(id))
	t.inHand = true
	t.frozen = false
	t.broken = false

	t.logger.Info("hand started", "hand", id, "players", len(names), "button", t.button)
	t.bus.Publish(HandStartEvent{
		HandID:     id,
		Players:    t.state.Clone().Players,
		Button:     t.button,
		SmallBlind: t.smallBlind,
		BigBlind:   t.bigBlind,
		timestamp:  time.Now(),
	})
	t.save()

	// Blinds can put everyone all-in before any action.
	if t.state.BettingClosed() && !t.state.Complete() {
		return t.resolveShowdownLocked()
	}
	return t.state.Clone(), nil
}

// ResetHand abandons any in-flight hand and deals a fresh one, carrying
// stacks forward and advancing the button. A showdown resolution still in
// flight is discarded, never applied to the new hand.
func (t *Table) ResetHand() (engine.HandState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inHand {
		if t.state.Complete() {
			t.syncStacksLocked()
		} else if !t.broken {
			// Abandoned mid-hand: investments go back to their owners.
			refunded := engine.RefundAll(&t.state)
			t.state = refunded
			t.syncStacksLocked()
		}
		t.button = (t.button + 1) % len(t.seats)
	}

	t.gen++ // discard any in-flight resolution
	t.frozen = false
	t.broken = false
	return t.dealLocked()
}

// syncStacksLocked copies engine stacks back onto the roster.
func (t *Table) syncStacksLocked() {
	for handSeat, tableSeat := range t.handSeats {
		t.seats[tableSeat].Stack = t.state.Players[handSeat].Stack
		t.seats[tableSeat].SittingOut = t.seats[tableSeat].Stack <= 0
	}
}

// HandleAction validates and applies one action for a table seat. A bet or
// raise without an amount (amount == 0) is answered with the legal range
// rather than applied.
func (t *Table) HandleAction(seat int, kind engine.ActionKind, amount int) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.broken {
		return Outcome{}, ErrHandBroken
	}
	if t.frozen {
		return Outcome{}, ErrHandFrozen
	}
	if !t.inHand || t.state.Complete() {
		return Outcome{}, ErrHandComplete
	}
	if seat < 0 || seat >= len(t.seats) {
		return Outcome{}, fmt.Errorf("table: no seat %d", seat)
	}
	handSeat := t.seatIndex[seat]
	if handSeat == -1 {
		return Outcome{}, ErrSittingOut
	}
	if handSeat != t.state.ToAct {
		return Outcome{}, ErrNotYourTurn
	}

	if (kind == engine.KindBet || kind == engine.KindRaise) && amount == 0 {
		if r := t.amountRangeLocked(handSeat, kind); r != nil {
			return Outcome{State: t.state.Clone(), NeedsAmount: r}, nil
		}
		return Outcome{}, &engine.ValidationError{Seat: seat, Kind: kind, Reason: "action not available"}
	}

	action, err := engine.MakeAction(kind, amount)
	if err != nil {
		return Outcome{}, err
	}

	prevStreet := t.state.Street
	next, err := engine.Apply(&t.state, handSeat, action)
	if err != nil {
		var fault *engine.StateInconsistencyError
		if errors.As(err, &fault) {
			t.broken = true
			t.logger.Error("hand broken", "hand", t.state.ID, "error", err)
			t.bus.Publish(HandAbortedEvent{HandID: t.state.ID, Reason: fault.Detail, timestamp: time.Now()})
		}
		return Outcome{}, err
	}
	t.state = next

	t.bus.Publish(PlayerActionEvent{
		HandID:    t.state.ID,
		Seat:      seat,
		Name:      t.seats[seat].Name,
		Kind:      kind,
		Amount:    lastMoved(&t.state),
		Street:    prevStreet,
		PotAfter:  t.state.PotTotal(),
		timestamp: time.Now(),
	})
	if t.state.Street != prevStreet {
		t.bus.Publish(StreetChangeEvent{
			HandID:    t.state.ID,
			Street:    t.state.Street,
			Board:     t.state.Clone().Board,
			Pot:       t.state.PotTotal(),
			timestamp: time.Now(),
		})
	}
	t.save()

	if t.state.BettingClosed() && !t.state.Complete() {
		state, err := t.resolveShowdownLocked()
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{State: state, Payouts: t.lastPayouts}, nil
	}

	return Outcome{State: t.state.Clone()}, nil
}

// AvailableActions returns the actions open to a table seat right now.
// It is a pure projection and is idempotent between transitions.
func (t *Table) AvailableActions(seat int) []engine.AvailableAction {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.broken || t.frozen || !t.inHand || seat < 0 || seat >= len(t.seats) {
		return nil
	}
	handSeat := t.seatIndex[seat]
	if handSeat == -1 {
		return nil
	}
	return engine.AvailableActions(&t.state, handSeat)
}

// SidePots is the read-only pot projection, keyed by table seat, callable
// at any point in the hand for display.
func (t *Table) SidePots() []engine.SidePot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.inHand {
		return nil
	}
	pots, _ := engine.ComputeSidePots(t.state.Players)
	for i := range pots {
		for j, handSeat := range pots[i].Eligible {
			pots[i].Eligible[j] = t.handSeats[handSeat]
		}
	}
	return pots
}

// State returns a copy of the current hand state.
func (t *Table) State() engine.HandState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

func (t *Table) amountRangeLocked(handSeat int, kind engine.ActionKind) *AmountRange {
	for _, a := range engine.AvailableActions(&t.state, handSeat) {
		if a.Kind == kind {
			return &AmountRange{Min: a.Min, Max: a.Max, PotLimit: a.PotLimit}
		}
	}
	return nil
}

func (t *Table) save() {
	if t.saver == nil {
		return
	}
	snapshot := t.state.Clone()
	if err := t.saver.Save(&snapshot); err != nil {
		t.logger.Warn("snapshot save failed", "hand", t.state.ID, "error", err)
	}
}

func lastMoved(s *engine.HandState) int {
	if len(s.Log) == 0 {
		return 0
	}
	return s.Log[len(s.Log)-1].Amount
}
