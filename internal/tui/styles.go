package tui

import "github.com/charmbracelet/lipgloss"

// Pane palette. Card and settlement colors match the watch command's
// plain-terminal renderer.
const (
	colorHeaderBg  = lipgloss.Color("#5A3FD4")
	colorText      = lipgloss.Color("#FAFAFA")
	colorBoard     = lipgloss.Color("#96CEB4")
	colorAmount    = lipgloss.Color("#FFD700")
	colorRedSuit   = lipgloss.Color("#FF6B6B")
	colorBlackSuit = lipgloss.Color("#AFAFAF")
	colorWin       = lipgloss.Color("#04B575")
	colorWarn      = lipgloss.Color("#FFEAA7")
	colorMuted     = lipgloss.Color("#626262")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorHeaderBg).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(colorBoard).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(colorAmount).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(colorRedSuit).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(colorBlackSuit).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorWin).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorRedSuit).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	ToActStyle = lipgloss.NewStyle().
			Foreground(colorWin).
			Bold(true)
)
