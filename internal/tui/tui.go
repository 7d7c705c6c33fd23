// Package tui is the interactive terminal front end for a local table
// session. The operator plays every seat: the input line always addresses
// the seat due to act, which is what an analysis session needs.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/table"
)

// Model is the Bubble Tea model driving a table session.
type Model struct {
	tbl    *table.Table
	logger *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model

	handLog     []string
	state       engine.HandState
	focusedPane int // 0 = log, 1 = input
	quitting    bool

	width       int
	height      int
	initialized bool

	testMode bool
}

// New creates the model. The table's first hand must already be dealt.
func New(tbl *table.Table, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, bet 60, raise 180, allin, pots, next"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorWin).Bold(true)
	ti.Prompt = "> "

	m := &Model{
		tbl:         tbl,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		state:       tbl.State(),
	}

	tbl.Bus().Subscribe(table.SubscriberFunc(m.onEvent))
	m.addLog(HeaderStyle.Render(" ploscope "))
	m.logHandStart()
	return m
}

// SetTestMode suppresses viewport updates so tests can drive Update
// without a terminal.
func (m *Model) SetTestMode() { m.testMode = true }

// HandLog returns the accumulated log lines.
func (m *Model) HandLog() []string { return m.handLog }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if quit := m.processInput(input); quit {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processInput parses one line of operator input. It returns true when the
// session should end.
func (m *Model) processInput(input string) bool {
	if input == "" {
		return false
	}
	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])

	switch verb {
	case "quit", "exit", "q":
		return true

	case "next", "deal":
		if _, err := m.tbl.ResetHand(); err != nil {
			m.addLog(ErrorStyle.Render(err.Error()))
			return false
		}
		m.state = m.tbl.State()
		return false

	case "pots":
		m.logSidePots()
		return false

	case "help", "?":
		m.addLog(InfoStyle.Render("actions: fold check call bet <amount> raise <to> allin | pots | next | quit"))
		return false
	}

	kind, err := engine.ParseActionKind(verb)
	if err != nil {
		m.addLog(ErrorStyle.Render(fmt.Sprintf("unknown command %q, try 'help'", verb)))
		return false
	}

	amount := 0
	if len(fields) > 1 {
		amount, err = strconv.Atoi(fields[1])
		if err != nil || amount <= 0 {
			m.addLog(ErrorStyle.Render(fmt.Sprintf("bad amount %q", fields[1])))
			return false
		}
	}

	m.submit(kind, amount)
	return false
}

// submit routes one action for the seat due to act.
func (m *Model) submit(kind engine.ActionKind, amount int) {
	seat := m.actingSeat()
	if seat == -1 {
		m.addLog(InfoStyle.Render("no one to act; 'next' deals the next hand"))
		return
	}

	outcome, err := m.tbl.HandleAction(seat, kind, amount)
	if err != nil {
		var validation *engine.ValidationError
		var stack *engine.InsufficientStackError
		switch {
		case errors.As(err, &validation):
			m.addLog(ErrorStyle.Render(validation.Reason))
		case errors.As(err, &stack):
			m.addLog(ErrorStyle.Render(fmt.Sprintf("max is %d (all-in)", stack.Max)))
		default:
			m.addLog(ErrorStyle.Render(err.Error()))
		}
		return
	}

	if outcome.NeedsAmount != nil {
		r := outcome.NeedsAmount
		m.addLog(WarningStyle.Render(
			fmt.Sprintf("%s needs an amount: min %d, max %d, pot %d", kind, r.Min, r.Max, r.PotLimit)))
		return
	}

	m.state = outcome.State
}

// actingSeat maps the hand's acting seat back to a table seat.
func (m *Model) actingSeat() int {
	state := m.tbl.State()
	if state.Complete() || state.ToAct == -1 {
		return -1
	}
	for _, seat := range m.seatsInPlay() {
		if len(m.tbl.AvailableActions(seat)) > 0 {
			return seat
		}
	}
	return -1
}

func (m *Model) seatsInPlay() []int {
	seats := make([]int, len(m.tbl.Seats()))
	for i := range seats {
		seats[i] = i
	}
	return seats
}

// onEvent keeps the log and cached state in step with the table.
func (m *Model) onEvent(event table.Event) {
	switch e := event.(type) {
	case table.HandStartEvent:
		m.state = m.tbl.State()
		m.logHandStart()
	case table.PlayerActionEvent:
		line := fmt.Sprintf("%s %s", e.Name, e.Kind)
		if e.Amount > 0 {
			line = fmt.Sprintf("%s %s %d", e.Name, e.Kind, e.Amount)
		}
		m.addLog(line + InfoStyle.Render(fmt.Sprintf("  (pot %d)", e.PotAfter)))
	case table.StreetChangeEvent:
		if e.Street == engine.Showdown {
			m.addLog(HandInfoStyle.Render("showdown"))
		} else {
			m.addLog(HandInfoStyle.Render(fmt.Sprintf("%s %s  pot %d",
				e.Street, m.formatCards(e.Board), e.Pot)))
		}
	case table.HandSettledEvent:
		m.state = m.tbl.State()
		for seat, amount := range e.Payouts {
			m.addLog(SuccessStyle.Render(fmt.Sprintf("%s wins %d", m.seatName(seat), amount)))
		}
		m.addLog(InfoStyle.Render("'next' deals the next hand"))
	case table.HandAbortedEvent:
		m.state = m.tbl.State()
		m.addLog(ErrorStyle.Render("hand aborted: " + e.Reason))
	}
}

func (m *Model) seatName(seat int) string {
	seats := m.tbl.Seats()
	if seat < 0 || seat >= len(seats) {
		return fmt.Sprintf("seat %d", seat)
	}
	return seats[seat].Name
}

func (m *Model) logHandStart() {
	state := m.tbl.State()
	m.addLog("")
	m.addLog(HandInfoStyle.Render(fmt.Sprintf("hand %s  blinds %d/%d",
		state.ID, state.SmallBlind, state.BigBlind)))
	for i := range state.Players {
		p := &state.Players[i]
		marker := "  "
		if p.Seat == state.Button {
			marker = "btn"
		}
		m.addLog(fmt.Sprintf("%-3s %-10s %5d  %s", marker, p.Name, p.Stack, m.formatCards(p.Hole)))
	}
}

func (m *Model) logSidePots() {
	pots := m.tbl.SidePots()
	if len(pots) == 0 {
		m.addLog(InfoStyle.Render("no pot yet"))
		return
	}
	for i, pot := range pots {
		names := make([]string, len(pot.Eligible))
		for j, seat := range pot.Eligible {
			names[j] = m.seatName(seat)
		}
		m.addLog(InfoStyle.Render(fmt.Sprintf("pot %d: %d (cap %d) - %s",
			i+1, pot.Amount, pot.Cap, strings.Join(names, ", "))))
	}
}

func (m *Model) addLog(entry string) {
	m.handLog = append(m.handLog, entry)
	if m.testMode {
		return
	}
	m.logViewport.SetContent(strings.Join(m.handLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorWin).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.handLog, "\n"))
	if !m.initialized {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	borderColor := colorMuted
	if m.focusedPane == 0 {
		borderColor = colorWin
	}
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the board, pot and every stack.
func (m *Model) renderSidebarPane() string {
	var content strings.Builder
	state := m.tbl.State()

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: %d", state.PotTotal())))
	if state.CurrentBet > 0 {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("  Bet: %d", state.CurrentBet)))
	}
	content.WriteString("\n")
	content.WriteString(HandInfoStyle.Render(state.Street.String()))
	if len(state.Board) > 0 {
		content.WriteString(" " + m.formatCards(state.Board))
	}
	content.WriteString("\n\n")

	for i := range state.Players {
		p := &state.Players[i]
		line := fmt.Sprintf("%-10s %5d", p.Name, p.Stack)
		switch {
		case p.Folded:
			line = InfoStyle.Render(line + "  folded")
		case p.AllIn:
			line = WarningStyle.Render(line + "  all-in")
		case p.Seat == state.ToAct:
			line = ToActStyle.Render(line + "  to act")
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	return content.String()
}

// renderActionPane shows the acting player's cards, the open actions and
// the input line.
func (m *Model) renderActionPane() string {
	var content strings.Builder
	state := m.tbl.State()

	seat := m.actingSeat()
	if seat >= 0 {
		p := state.Players[state.ToAct]
		content.WriteString(HandInfoStyle.Render(
			fmt.Sprintf("%s to act  %s  pot %d", p.Name, m.formatCards(p.Hole), state.PotTotal())))
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions(seat))
		content.WriteString("\n")
	} else if state.Complete() {
		content.WriteString(HandInfoStyle.Render("hand complete - 'next' to deal"))
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")
	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: arrows scroll, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log - Enter to submit - Ctrl+C to quit"))
	}
	return content.String()
}

func (m *Model) renderAvailableActions(seat int) string {
	var actions []string
	for _, a := range m.tbl.AvailableActions(seat) {
		switch a.Kind {
		case engine.KindFold:
			actions = append(actions, ErrorStyle.Render("[fold]"))
		case engine.KindCheck:
			actions = append(actions, SuccessStyle.Render("[check]"))
		case engine.KindCall:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call %d]", a.Min)))
		case engine.KindBet:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[bet %d-%d, pot %d]", a.Min, a.Max, a.PotLimit)))
		case engine.KindRaise:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[raise %d-%d, pot %d]", a.Min, a.Max, a.PotLimit)))
		case engine.KindAllIn:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[allin %d]", a.Min)))
		}
	}
	if len(actions) == 0 {
		return ActionsStyle.Render("Actions: none")
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

func (m *Model) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			formatted[i] = RedCardStyle.Render(card.String())
		} else {
			formatted[i] = BlackCardStyle.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
