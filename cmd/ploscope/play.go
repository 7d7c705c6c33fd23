package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lcrostarosa/ploscope/internal/config"
	"github.com/lcrostarosa/ploscope/internal/tui"
)

type PlayCmd struct {
	Config string `kong:"default='ploscope.hcl',help='Path to HCL configuration file'"`
	Seed   *int64 `kong:"help='Deterministic deck seed (overrides config)'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	debugFile, err := os.OpenFile("ploscope-play.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to create debug log: %w", err)
	}
	defer func() {
		if err := debugFile.Close(); err != nil {
			log.Error("failed to close debug file", "error", err)
		}
	}()

	level := log.InfoLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(debugFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	tbl, err := newTable(cfg, c.Seed, logger)
	if err != nil {
		return err
	}
	if _, err := tbl.StartHand(); err != nil {
		return err
	}

	model := tui.New(tbl, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
