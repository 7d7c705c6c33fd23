package server

import (
	"encoding/json"
	"time"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/table"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// Client to server messages.
	MessageTypeAction   MessageType = "action"
	MessageTypeGetState MessageType = "get_state"
	MessageTypeGetOpen  MessageType = "get_actions"
	MessageTypeNextHand MessageType = "next_hand"

	// Server to client messages.
	MessageTypeState          MessageType = "state"
	MessageTypeActionsOpen    MessageType = "actions_open"
	MessageTypeAmountRequired MessageType = "amount_required"
	MessageTypeError          MessageType = "error"
	MessageTypeHandStart      MessageType = "hand_start"
	MessageTypePlayerAction   MessageType = "player_action"
	MessageTypeStreetChange   MessageType = "street_change"
	MessageTypeHandSettled    MessageType = "hand_settled"
	MessageTypeHandAborted    MessageType = "hand_aborted"
)

func (mt MessageType) String() string { return string(mt) }

// Message is the wire envelope for every WebSocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client to server payloads.

// ActionData submits one action for a seat. Amount is the bet amount or
// raise-to level; zero asks the server for the legal range instead.
type ActionData struct {
	Seat   int    `json:"seat"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// GetOpenData asks which actions a seat may take.
type GetOpenData struct {
	Seat int `json:"seat"`
}

// Server to client payloads.

// ErrorData reports a rejected request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AmountRequiredData answers a bet or raise that arrived without an
// amount.
type AmountRequiredData struct {
	Seat     int    `json:"seat"`
	Action   string `json:"action"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	PotLimit int    `json:"potLimit"`
}

// PlayerState is the per-seat view in a state broadcast. This gateway
// serves a single-operator analysis session, so hole cards are not
// redacted.
type PlayerState struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Stack     int    `json:"stack"`
	StreetBet int    `json:"betThisStreet"`
	HandBet   int    `json:"betThisHand"`
	HoleCards string `json:"holeCards,omitempty"`
	Folded    bool   `json:"folded"`
	AllIn     bool   `json:"allIn"`
}

// SidePotState is one pot slice in a state broadcast.
type SidePotState struct {
	Amount   int   `json:"amount"`
	Cap      int   `json:"cap"`
	Eligible []int `json:"eligible"`
}

// StateData is the full table view broadcast after every transition.
type StateData struct {
	HandID     string         `json:"handId"`
	Street     string         `json:"street"`
	Board      string         `json:"board"`
	Pot        int            `json:"pot"`
	CurrentBet int            `json:"currentBet"`
	ToAct      int            `json:"toAct"`
	Button     int            `json:"button"`
	Settled    bool           `json:"settled"`
	Players    []PlayerState  `json:"players"`
	SidePots   []SidePotState `json:"sidePots,omitempty"`
}

// ActionInfo describes one available action.
type ActionInfo struct {
	Action   string `json:"action"`
	Min      int    `json:"min,omitempty"`
	Max      int    `json:"max,omitempty"`
	PotLimit int    `json:"potLimit,omitempty"`
}

// ActionsOpenData answers a get_actions request.
type ActionsOpenData struct {
	Seat    int          `json:"seat"`
	Actions []ActionInfo `json:"actions"`
}

// HandStartData announces a fresh hand.
type HandStartData struct {
	HandID     string        `json:"handId"`
	Players    []PlayerState `json:"players"`
	Button     int           `json:"button"`
	SmallBlind int           `json:"smallBlind"`
	BigBlind   int           `json:"bigBlind"`
}

// PlayerActionData announces an applied action.
type PlayerActionData struct {
	HandID   string `json:"handId"`
	Seat     int    `json:"seat"`
	Player   string `json:"player"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
	Street   string `json:"street"`
	PotAfter int    `json:"potAfter"`
}

// StreetChangeData announces new community cards.
type StreetChangeData struct {
	HandID string `json:"handId"`
	Street string `json:"street"`
	Board  string `json:"board"`
	Pot    int    `json:"pot"`
}

// HandSettledData announces the payouts.
type HandSettledData struct {
	HandID  string        `json:"handId"`
	Payouts map[int]int   `json:"payouts"`
	Board   string        `json:"board"`
	Players []PlayerState `json:"players"`
}

// HandAbortedData announces a voided hand.
type HandAbortedData struct {
	HandID string `json:"handId"`
	Reason string `json:"reason"`
}

// Conversions from engine and table types.

func playerStateFrom(p *engine.Player) PlayerState {
	return PlayerState{
		Seat:      p.Seat,
		Name:      p.Name,
		Stack:     p.Stack,
		StreetBet: p.StreetBet,
		HandBet:   p.HandBet,
		HoleCards: deck.FormatCards(p.Hole),
		Folded:    p.Folded,
		AllIn:     p.AllIn,
	}
}

func playerStatesFrom(players []engine.Player) []PlayerState {
	out := make([]PlayerState, len(players))
	for i := range players {
		out[i] = playerStateFrom(&players[i])
	}
	return out
}

func stateDataFrom(s *engine.HandState, pots []engine.SidePot) StateData {
	data := StateData{
		HandID:     s.ID,
		Street:     s.Street.String(),
		Board:      deck.FormatCards(s.Board),
		Pot:        s.PotTotal(),
		CurrentBet: s.CurrentBet,
		ToAct:      s.ToAct,
		Button:     s.Button,
		Settled:    s.Settled,
		Players:    playerStatesFrom(s.Players),
	}
	for _, pot := range pots {
		data.SidePots = append(data.SidePots, SidePotState{
			Amount:   pot.Amount,
			Cap:      pot.Cap,
			Eligible: pot.Eligible,
		})
	}
	return data
}

func actionInfosFrom(actions []engine.AvailableAction) []ActionInfo {
	out := make([]ActionInfo, len(actions))
	for i, a := range actions {
		out[i] = ActionInfo{
			Action:   a.Kind.String(),
			Min:      a.Min,
			Max:      a.Max,
			PotLimit: a.PotLimit,
		}
	}
	return out
}

// messageForEvent translates a table event into its broadcast message.
// Unknown event types are dropped.
func messageForEvent(event table.Event) (*Message, error) {
	switch e := event.(type) {
	case table.HandStartEvent:
		return NewMessage(MessageTypeHandStart, HandStartData{
			HandID:     e.HandID,
			Players:    playerStatesFrom(e.Players),
			Button:     e.Button,
			SmallBlind: e.SmallBlind,
			BigBlind:   e.BigBlind,
		})
	case table.PlayerActionEvent:
		return NewMessage(MessageTypePlayerAction, PlayerActionData{
			HandID:   e.HandID,
			Seat:     e.Seat,
			Player:   e.Name,
			Action:   e.Kind.String(),
			Amount:   e.Amount,
			Street:   e.Street.String(),
			PotAfter: e.PotAfter,
		})
	case table.StreetChangeEvent:
		return NewMessage(MessageTypeStreetChange, StreetChangeData{
			HandID: e.HandID,
			Street: e.Street.String(),
			Board:  deck.FormatCards(e.Board),
			Pot:    e.Pot,
		})
	case table.HandSettledEvent:
		return NewMessage(MessageTypeHandSettled, HandSettledData{
			HandID:  e.HandID,
			Payouts: e.Payouts,
			Board:   deck.FormatCards(e.Board),
			Players: playerStatesFrom(e.Players),
		})
	case table.HandAbortedEvent:
		return NewMessage(MessageTypeHandAborted, HandAbortedData{
			HandID: e.HandID,
			Reason: e.Reason,
		})
	default:
		return nil, nil
	}
}
