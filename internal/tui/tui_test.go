package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/table"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	eval := table.EvaluatorFunc(func(ctx context.Context, hole, board []deck.Card) (engine.Rank, error) {
		return 1, nil
	})
	tbl, err := table.New(table.Config{
		Names:      []string{"alice", "bob", "carol"},
		Stacks:     []int{1000, 1000, 1000},
		SmallBlind: 10,
		BigBlind:   20,
		Seed:       21,
	}, eval, logger)
	require.NoError(t, err)
	_, err = tbl.StartHand()
	require.NoError(t, err)

	m := New(tbl, logger)
	m.SetTestMode()
	return m
}

func logText(m *Model) string {
	return strings.Join(m.HandLog(), "\n")
}

func TestHandStartLogged(t *testing.T) {
	m := newTestModel(t)

	text := logText(m)
	assert.Contains(t, text, "blinds 10/20")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "btn")
}

func TestProcessActionInput(t *testing.T) {
	m := newTestModel(t)

	quit := m.processInput("call")
	assert.False(t, quit)
	assert.Contains(t, logText(m), "alice call 20")

	m.processInput("call")
	m.processInput("check")
	assert.Contains(t, logText(m), "flop")
}

func TestRaiseWithoutAmountPrompts(t *testing.T) {
	m := newTestModel(t)

	m.processInput("raise")
	assert.Contains(t, logText(m), "needs an amount: min 40, max 1000, pot 70")
}

func TestInvalidInputLogged(t *testing.T) {
	m := newTestModel(t)

	m.processInput("jam")
	assert.Contains(t, logText(m), `unknown command "jam"`)

	m.processInput("bet banana")
	assert.Contains(t, logText(m), `bad amount "banana"`)

	// Preflop the blinds already opened the betting.
	m.processInput("bet 40")
	assert.Contains(t, logText(m), "betting already opened at 20, raise instead")
}

func TestQuitCommand(t *testing.T) {
	m := newTestModel(t)
	assert.True(t, m.processInput("quit"))
	assert.True(t, m.processInput("q"))
	assert.False(t, m.processInput("help"))
}

func TestHandSettlementAndNext(t *testing.T) {
	m := newTestModel(t)

	m.processInput("fold")
	m.processInput("fold")

	text := logText(m)
	assert.Contains(t, text, "carol wins 30")
	assert.Contains(t, text, "'next' deals the next hand")

	m.processInput("next")
	assert.Equal(t, engine.Preflop, m.state.Street)
	assert.False(t, m.state.Complete())
}

func TestSidePotsCommand(t *testing.T) {
	m := newTestModel(t)

	m.processInput("call")
	m.processInput("call")
	m.processInput("check")
	m.processInput("pots")
	assert.Contains(t, logText(m), "pot 1: 60")
}
