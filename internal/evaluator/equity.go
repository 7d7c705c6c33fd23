package evaluator

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lcrostarosa/ploscope/internal/deck"
	"github.com/lcrostarosa/ploscope/internal/randutil"
)

// EquityOptions configures a Monte-Carlo equity estimate.
type EquityOptions struct {
	Trials  int // total simulated runouts; default 10000
	Workers int // parallel workers; default GOMAXPROCS
	Seed    int64
}

// Equity estimates each hand's share of the pot by dealing random runouts.
// holes contains four hole cards per player; board holds zero to five known
// community cards. The result sums to 1 across players (ties split).
func Equity(ctx context.Context, holes [][]deck.Card, board []deck.Card, opts EquityOptions) ([]float64, error) {
	if len(holes) < 2 {
		return nil, fmt.Errorf("evaluator: equity needs at least two hands, got %d", len(holes))
	}
	if len(board) > 5 {
		return nil, fmt.Errorf("evaluator: board has %d cards", len(board))
	}

	used := deck.NewCardSet(board...)
	for i, hole := range holes {
		if len(hole) != deck.HoleCards {
			return nil, fmt.Errorf("evaluator: hand %d has %d hole cards, want %d", i, len(hole), deck.HoleCards)
		}
		for _, c := range hole {
			if used.Contains(c) {
				return nil, fmt.Errorf("evaluator: duplicate card %v", c)
			}
			used = used.Add(c)
		}
	}

	trials := opts.Trials
	if trials <= 0 {
		trials = 10000
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > trials {
		workers = trials
	}

	// Remaining cards available for runouts.
	var stub []deck.Card
	for c := deck.Card(0); c < 52; c++ {
		if !used.Contains(c) {
			stub = append(stub, c)
		}
	}

	results := make(chan []float64, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := trials / workers
		if w < trials%workers {
			n++
		}
		seed := opts.Seed + int64(w)
		g.Go(func() error {
			rng := randutil.New(seed)
			shares := make([]float64, len(holes))
			local := make([]deck.Card, len(stub))
			copy(local, stub)
			full := make([]deck.Card, 5)
			for i := 0; i < n; i++ {
				if i%1024 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				sampleRunout(rng, local, board, full)
				splitTrial(holes, full, shares)
			}
			select {
			case results <- shares:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	equity := make([]float64, len(holes))
	for shares := range results {
		for i, s := range shares {
			equity[i] += s
		}
	}
	for i := range equity {
		equity[i] /= float64(trials)
	}
	return equity, nil
}

// sampleRunout fills full with the known board plus randomly drawn cards
// from stub, using a partial Fisher-Yates over the stub prefix.
func sampleRunout(rng *rand.Rand, stub []deck.Card, board []deck.Card, full []deck.Card) {
	need := 5 - len(board)
	for i := 0; i < need; i++ {
		j := i + rng.IntN(len(stub)-i)
		stub[i], stub[j] = stub[j], stub[i]
	}
	copy(full, board)
	copy(full[len(board):], stub[:need])
}

// splitTrial ranks every hand on the runout and adds each winner's share of
// one trial to shares.
func splitTrial(holes [][]deck.Card, board []deck.Card, shares []float64) {
	var best HandRank
	var winners []int
	for i, hole := range holes {
		r := RankOmaha(hole, board)
		switch {
		case r > best:
			best = r
			winners = winners[:0]
			winners = append(winners, i)
		case r == best:
			winners = append(winners, i)
		}
	}
	share := 1 / float64(len(winners))
	for _, w := range winners {
		shares[w] += share
	}
}
