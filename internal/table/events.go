package table

import (
	"time"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
)

// EventType identifies a table event.
type EventType string

const (
	EventTypeHandStart    EventType = "hand_start"
	EventTypePlayerAction EventType = "player_action"
	EventTypeStreetChange EventType = "street_change"
	EventTypeHandSettled  EventType = "hand_settled"
	EventTypeHandAborted  EventType = "hand_aborted"
)

func (et EventType) String() string { return string(et) }

// Event is anything the table publishes to its subscribers: the TUI, the
// gateway, and the history recorder all consume the same stream.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartEvent is published when a fresh hand begins.
type HandStartEvent struct {
	HandID     string
	Players    []engine.Player
	Button     int
	SmallBlind int
	BigBlind   int
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published after each applied action.
type PlayerActionEvent struct {
	HandID    string
	Seat      int
	Name      string
	Kind      engine.ActionKind
	Amount    int // chips moved by the action
	Street    engine.Street
	PotAfter  int
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// StreetChangeEvent is published when betting closes and a new street is
// dealt (or the hand reaches showdown).
type StreetChangeEvent struct {
	HandID    string
	Street    engine.Street
	Board     []deck.Card
	Pot       int
	timestamp time.Time
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.timestamp }

// HandSettledEvent is published once payouts are applied.
type HandSettledEvent struct {
	HandID    string
	Payouts   map[int]int
	Players   []engine.Player
	Board     []deck.Card
	timestamp time.Time
}

func (e HandSettledEvent) EventType() EventType { return EventTypeHandSettled }
func (e HandSettledEvent) Timestamp() time.Time { return e.timestamp }

// HandAbortedEvent is published when a hand ends without a winner: the
// evaluator failed and investments were refunded, or an invariant broke.
type HandAbortedEvent struct {
	HandID    string
	Reason    string
	timestamp time.Time
}

func (e HandAbortedEvent) EventType() EventType { return EventTypeHandAborted }
func (e HandAbortedEvent) Timestamp() time.Time { return e.timestamp }

// Subscriber receives table events synchronously, in publish order.
type Subscriber interface {
	OnEvent(Event)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(e Event) { f(e) }

// Bus is a minimal synchronous in-memory event bus.
type Bus struct {
	subscribers []Subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a subscriber. Not safe for concurrent use with
// Publish; the table serializes both behind its lock.
func (b *Bus) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

// Publish delivers the event to every subscriber in order.
func (b *Bus) Publish(e Event) {
	for _, s := range b.subscribers {
		s.OnEvent(e)
	}
}
