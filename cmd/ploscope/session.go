package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lcrostarosa/ploscope/internal/config"
	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/evaluator"
	"github.com/lcrostarosa/ploscope/internal/history"
	"github.com/lcrostarosa/ploscope/internal/store"
	"github.com/lcrostarosa/ploscope/internal/table"
)

// setupLogger configures the console logger from a config log level.
func setupLogger(level string) *log.Logger {
	logger := log.New(os.Stderr)
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// signalContext returns a context cancelled on interrupt signals.
func signalContext(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	return ctx
}

// omahaEvaluator adapts the hand evaluator to the table's interface.
func omahaEvaluator() table.Evaluator {
	return table.EvaluatorFunc(func(ctx context.Context, hole, board []deck.Card) (engine.Rank, error) {
		return engine.Rank(evaluator.RankOmaha(hole, board)), nil
	})
}

// newTable builds a table session from the config: seats and blinds from
// the table block, snapshotting and PHH recording from the history block.
func newTable(cfg *config.Config, seedOverride *int64, logger *log.Logger) (*table.Table, error) {
	seed := cfg.Table.Seed
	if seedOverride != nil {
		seed = *seedOverride
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("table seed", "seed", seed)

	var savers table.Savers
	if cfg.History.SnapshotDir != "" {
		opts := []store.Option{}
		if cfg.History.Archive {
			opts = append(opts, store.WithArchive())
		}
		st, err := store.New(cfg.History.SnapshotDir, opts...)
		if err != nil {
			return nil, err
		}
		savers = append(savers, st)
	}
	if cfg.History.HistoryDir != "" {
		recorder, err := history.NewRecorder(cfg.History.HistoryDir, logger)
		if err != nil {
			return nil, err
		}
		savers = append(savers, recorder)
	}

	opts := []table.Option{}
	if len(savers) > 0 {
		opts = append(opts, table.WithSaver(savers))
	}

	return table.New(table.Config{
		Names:       cfg.Table.Players,
		Stacks:      cfg.Table.AllStacks(),
		SmallBlind:  cfg.Table.SmallBlind,
		BigBlind:    cfg.Table.BigBlind,
		Seed:        seed,
		EvalTimeout: time.Duration(cfg.Table.EvalTimeout) * time.Second,
	}, omahaEvaluator(), logger, opts...)
}
