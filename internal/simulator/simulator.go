// Package simulator plays large volumes of randomized hands through the
// engine as a soak test. Every transition goes through the usual
// invariant checks, and the simulator verifies chip conservation end to
// end on every hand.
package simulator

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/evaluator"
	"github.com/lcrostarosa/ploscope/internal/randutil"
)

// Config controls a simulation run.
type Config struct {
	Hands      int
	Players    int
	Stack      int
	SmallBlind int
	BigBlind   int
	Seed       int64
	Workers    int
	Logger     *log.Logger
}

// Report aggregates the results of a run.
type Report struct {
	Hands          int
	Showdowns      int
	FoldWins       int
	Actions        int
	SidePotHands   int
	LargestPot     int
	TotalPot       int
	ChipsConserved bool
}

// String renders the report for the CLI.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hands:        %d\n", r.Hands)
	fmt.Fprintf(&b, "showdowns:    %d (%.1f%%)\n", r.Showdowns, percent(r.Showdowns, r.Hands))
	fmt.Fprintf(&b, "fold wins:    %d (%.1f%%)\n", r.FoldWins, percent(r.FoldWins, r.Hands))
	fmt.Fprintf(&b, "side pots:    %d hands\n", r.SidePotHands)
	fmt.Fprintf(&b, "actions:      %d (%.1f per hand)\n", r.Actions, ratio(r.Actions, r.Hands))
	fmt.Fprintf(&b, "largest pot:  %d\n", r.LargestPot)
	fmt.Fprintf(&b, "average pot:  %.1f\n", ratio(r.TotalPot, r.Hands))
	fmt.Fprintf(&b, "conservation: %v\n", r.ChipsConserved)
	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Simulator runs randomized hands across a worker pool.
type Simulator struct {
	cfg    Config
	logger *log.Logger
}

// New applies defaults and returns a simulator.
func New(cfg Config) *Simulator {
	if cfg.Players < 2 {
		cfg.Players = 4
	}
	if cfg.Stack <= 0 {
		cfg.Stack = 1000
	}
	if cfg.SmallBlind <= 0 {
		cfg.SmallBlind = 10
	}
	if cfg.BigBlind < cfg.SmallBlind {
		cfg.BigBlind = cfg.SmallBlind * 2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{cfg: cfg, logger: logger.WithPrefix("sim")}
}

// Run plays the configured number of hands. The first engine fault
// aborts the run with its diagnostic error.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	report := &Report{ChipsConserved: true}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	seeds := make(chan int64)

	g.Go(func() error {
		defer close(seeds)
		for i := 0; i < s.cfg.Hands; i++ {
			select {
			case seeds <- s.cfg.Seed + int64(i):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < s.cfg.Workers; w++ {
		g.Go(func() error {
			for seed := range seeds {
				result, err := s.playHand(seed)
				if err != nil {
					return fmt.Errorf("hand with seed %d: %w", seed, err)
				}
				mu.Lock()
				report.Hands++
				report.Actions += result.actions
				report.TotalPot += result.pot
				if result.pot > report.LargestPot {
					report.LargestPot = result.pot
				}
				if result.showdown {
					report.Showdowns++
				} else {
					report.FoldWins++
				}
				if result.sidePots {
					report.SidePotHands++
				}
				if !result.conserved {
					report.ChipsConserved = false
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("run complete", "hands", report.Hands, "showdowns", report.Showdowns)
	return report, nil
}

type handResult struct {
	actions   int
	pot       int
	showdown  bool
	sidePots  bool
	conserved bool
}

// playHand plays a single hand to settlement with random legal actions.
func (s *Simulator) playHand(seed int64) (handResult, error) {
	rng := randutil.New(seed)

	names := make([]string, s.cfg.Players)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i+1)
	}
	// Uneven stacks so short all-ins and side pots show up in the mix.
	stacks := make([]int, s.cfg.Players)
	for i := range stacks {
		stacks[i] = s.cfg.BigBlind + rng.IntN(s.cfg.Stack)
	}
	button := rng.IntN(s.cfg.Players)

	state := engine.NewHand(rng, names, button, s.cfg.SmallBlind, s.cfg.BigBlind,
		engine.WithStacks(stacks))

	var result handResult
	for !state.BettingClosed() {
		seat := state.ToAct
		next, err := engine.Apply(&state, seat, randomAction(rng, &state, seat))
		if err != nil {
			return result, err
		}
		state = next
		result.actions++
	}

	result.pot = state.TotalInvested()
	result.showdown = len(state.InHandSeats()) > 1
	pots, _ := engine.ComputeSidePots(state.Players)
	result.sidePots = len(pots) > 1

	payouts, err := engine.Settle(&state, func(hole, board []deck.Card) (engine.Rank, error) {
		return engine.Rank(evaluator.RankOmaha(hole, board)), nil
	})
	if err != nil {
		return result, err
	}

	done := engine.ApplyPayouts(&state, payouts)
	result.conserved = conserved(stacks, done.Players)
	return result, nil
}

// randomAction picks a legal action, weighted towards the passive
// options so hands reach later streets.
func randomAction(rng *rand.Rand, s *engine.HandState, seat int) engine.Action {
	available := engine.AvailableActions(s, seat)

	weighted := make([]engine.AvailableAction, 0, len(available)*6)
	for _, a := range available {
		weight := 1
		switch a.Kind {
		case engine.KindCheck, engine.KindCall:
			weight = 6
		case engine.KindFold:
			weight = 3
		case engine.KindBet, engine.KindRaise:
			weight = 2
		}
		for i := 0; i < weight; i++ {
			weighted = append(weighted, a)
		}
	}
	pick := weighted[rng.IntN(len(weighted))]

	switch pick.Kind {
	case engine.KindBet:
		return engine.Bet{Amount: randomAmount(rng, pick)}
	case engine.KindRaise:
		return engine.Raise{To: randomAmount(rng, pick)}
	default:
		action, _ := engine.MakeAction(pick.Kind, 0)
		return action
	}
}

// randomAmount picks an amount in [Min, Max], potting half the time.
func randomAmount(rng *rand.Rand, a engine.AvailableAction) int {
	if rng.IntN(2) == 0 {
		return a.PotLimit
	}
	if a.Max <= a.Min {
		return a.Min
	}
	return a.Min + rng.IntN(a.Max-a.Min+1)
}

func conserved(startStacks []int, players []engine.Player) bool {
	before := 0
	for _, chips := range startStacks {
		before += chips
	}
	after := 0
	for i := range players {
		after += players[i].Stack
	}
	return before == after
}
