package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/lcrostarosa/ploscope/internal/simulator"
)

type SimulateCmd struct {
	Hands      int    `kong:"default='1000',help='Number of hands to play'"`
	Players    int    `kong:"default='4',help='Seats at the table'"`
	Stack      int    `kong:"default='1000',help='Maximum starting stack'"`
	SmallBlind int    `kong:"default='10',help='Small blind amount'"`
	BigBlind   int    `kong:"default='20',help='Big blind amount'"`
	Seed       *int64 `kong:"help='Deterministic base seed (optional)'"`
	Workers    int    `kong:"default='4',help='Parallel workers'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := setupLogger(level)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("using random seed", "seed", seed)
	}

	sim := simulator.New(simulator.Config{
		Hands:      c.Hands,
		Players:    c.Players,
		Stack:      c.Stack,
		SmallBlind: c.SmallBlind,
		BigBlind:   c.BigBlind,
		Seed:       seed,
		Workers:    c.Workers,
		Logger:     logger,
	})

	ctx := signalContext(logger)
	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(report.String())
	if !report.ChipsConserved {
		return errors.New("chip conservation violated")
	}
	return nil
}
