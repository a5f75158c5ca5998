// Package trials plays the same game many times over and summarizes one
// metric per game.
package trials

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/dicesim/internal/analyzer"
	"github.com/xtding233/dicesim/internal/die"
	"github.com/xtding233/dicesim/internal/game"
)

// Goal selects what a trial measures.
type Goal string

const (
	// Jackpots in a game of Params.Rolls rolls.
	GoalJackpots Goal = "jackpots"
	// Rolls until the first jackpot; Rolls+1 when none came up.
	GoalFirstJackpot Goal = "first_jackpot"
	// Distinct combinations seen in one game.
	GoalDistinctCombinations Goal = "distinct_combinations"
	// Distinct permutations seen in one game.
	GoalDistinctPermutations Goal = "distinct_permutations"
)

var ErrInvalidParams = errors.New("invalid trial parameters")

// Params describes one batch of trials.
type Params struct {
	Rolls   int    // rolls per game
	Trials  int    // number of games
	Seed    uint64 // trial i uses NewSeededRNG(Seed+i)
	Workers int    // <=0 means GOMAXPROCS
}

// Builder creates a fresh game whose dice all draw from rng.
type Builder[L die.Label] func(rng die.RandomSource) (*game.Game[L], error)

// ParseGoal maps a name onto a Goal.
func ParseGoal(s string) (Goal, error) {
	switch g := Goal(s); g {
	case GoalJackpots, GoalFirstJackpot, GoalDistinctCombinations, GoalDistinctPermutations:
		return g, nil
	case "":
		return GoalJackpots, nil
	}
	return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidParams, s)
}

func (p Params) validate() error {
	if p.Rolls < 1 {
		return fmt.Errorf("%w: rolls must be >= 1", ErrInvalidParams)
	}
	if p.Trials < 1 {
		return fmt.Errorf("%w: trials must be >= 1", ErrInvalidParams)
	}
	return nil
}

// Run plays p.Trials games and summarizes the goal metric. Each trial gets
// its own seeded source, so the result does not depend on p.Workers.
// progress, if set, is called once per finished trial from worker goroutines.
func Run[L die.Label](ctx context.Context, build Builder[L], goal Goal, p Params, progress func()) (Stats, error) {
	if err := p.validate(); err != nil {
		return Stats{}, err
	}
	if _, err := ParseGoal(string(goal)); err != nil {
		return Stats{}, err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > p.Trials {
		workers = p.Trials
	}

	samples := make([]int, p.Trials)
	var next atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= p.Trials {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				v, err := simulateOne(build, goal, p.Rolls, p.Seed+uint64(i))
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				samples[i] = v
				if progress != nil {
					progress()
				}
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return Stats{}, err
	}
	return calcStats(samples), nil
}

// simulateOne returns the goal metric for one fresh game.
func simulateOne[L die.Label](build Builder[L], goal Goal, rolls int, seed uint64) (int, error) {
	g, err := build(die.NewSeededRNG(seed))
	if err != nil {
		return 0, err
	}
	if err := g.Play(rolls); err != nil {
		return 0, err
	}
	a, err := analyzer.New(g)
	if err != nil {
		return 0, err
	}
	switch goal {
	case GoalFirstJackpot:
		if i := a.FirstJackpot(); i >= 0 {
			return i + 1, nil
		}
		return rolls + 1, nil
	case GoalDistinctCombinations:
		return a.CombinationCounts().Len(), nil
	case GoalDistinctPermutations:
		return a.PermutationCounts().Len(), nil
	default:
		return a.Jackpot(), nil
	}
}
