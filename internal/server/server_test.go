package server

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/table"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)

	eval := table.EvaluatorFunc(func(ctx context.Context, hole, board []deck.Card) (engine.Rank, error) {
		return 1, nil
	})
	tbl, err := table.New(table.Config{
		Names:      []string{"alice", "bob", "carol"},
		Stacks:     []int{1000, 1000, 1000},
		SmallBlind: 10,
		BigBlind:   20,
		Seed:       11,
	}, eval, logger)
	require.NoError(t, err)
	_, err = tbl.StartHand()
	require.NoError(t, err)

	srv := New("127.0.0.1:0", tbl, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		return srv.Addr() != "127.0.0.1:0"
	}, 5*time.Second, 10*time.Millisecond, "server never started listening")

	return srv
}

func dialTestClient(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readMessage reads frames until one of the wanted type arrives.
func readMessage(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return &msg
		}
	}
}

func sendMessage(t *testing.T, conn *websocket.Conn, messageType MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func TestClientReceivesStateOnConnect(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestClient(t, srv)

	msg := readMessage(t, conn, MessageTypeState)
	var state StateData
	require.NoError(t, json.Unmarshal(msg.Data, &state))

	assert.Equal(t, "preflop", state.Street)
	assert.Equal(t, 30, state.Pot)
	assert.Len(t, state.Players, 3)
	assert.Equal(t, 0, state.ToAct)
}

func TestActionFlowsToAllClients(t *testing.T) {
	srv := startTestServer(t)
	actor := dialTestClient(t, srv)
	watcher := dialTestClient(t, srv)
	readMessage(t, actor, MessageTypeState)
	readMessage(t, watcher, MessageTypeState)

	sendMessage(t, actor, MessageTypeAction, ActionData{Seat: 0, Action: "call"})

	msg := readMessage(t, watcher, MessageTypePlayerAction)
	var action PlayerActionData
	require.NoError(t, json.Unmarshal(msg.Data, &action))
	assert.Equal(t, "alice", action.Player)
	assert.Equal(t, "call", action.Action)
	assert.Equal(t, 20, action.Amount)
	assert.Equal(t, 50, action.PotAfter)

	state := readMessage(t, watcher, MessageTypeState)
	var data StateData
	require.NoError(t, json.Unmarshal(state.Data, &data))
	assert.Equal(t, 1, data.ToAct)
}

func TestOutOfTurnActionRejected(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestClient(t, srv)
	readMessage(t, conn, MessageTypeState)

	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 2, Action: "fold"})

	msg := readMessage(t, conn, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "not_your_turn", errData.Code)
}

func TestRaiseWithoutAmountGetsRange(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestClient(t, srv)
	readMessage(t, conn, MessageTypeState)

	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 0, Action: "raise"})

	msg := readMessage(t, conn, MessageTypeAmountRequired)
	var data AmountRequiredData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, 40, data.Min)
	assert.Equal(t, 1000, data.Max)
	assert.Equal(t, 70, data.PotLimit)
}

func TestGetActions(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestClient(t, srv)
	readMessage(t, conn, MessageTypeState)

	sendMessage(t, conn, MessageTypeGetOpen, GetOpenData{Seat: 0})

	msg := readMessage(t, conn, MessageTypeActionsOpen)
	var data ActionsOpenData
	require.NoError(t, json.Unmarshal(msg.Data, &data))

	var kinds []string
	for _, a := range data.Actions {
		kinds = append(kinds, a.Action)
	}
	assert.Equal(t, []string{"fold", "call", "raise", "allin"}, kinds)
}

func TestHandSettledBroadcast(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestClient(t, srv)
	readMessage(t, conn, MessageTypeState)

	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 0, Action: "fold"})
	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 1, Action: "fold"})

	msg := readMessage(t, conn, MessageTypeHandSettled)
	var data HandSettledData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, map[int]int{2: 30}, data.Payouts)
}

func TestNextHandDealsAgain(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestClient(t, srv)
	readMessage(t, conn, MessageTypeState)

	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 0, Action: "fold"})
	sendMessage(t, conn, MessageTypeAction, ActionData{Seat: 1, Action: "fold"})
	readMessage(t, conn, MessageTypeHandSettled)

	sendMessage(t, conn, MessageTypeNextHand, struct{}{})

	msg := readMessage(t, conn, MessageTypeHandStart)
	var data HandStartData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, 1, data.Button, "button advances on the next hand")
}
