package trials

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/dicesim/internal/die"
	"github.com/xtding233/dicesim/internal/game"
)

func coins(n int) Builder[string] {
	return func(rng die.RandomSource) (*game.Game[string], error) {
		dice := make([]*die.Die[string], n)
		for i := range dice {
			d, err := die.New([]string{"H", "T"}, rng)
			if err != nil {
				return nil, err
			}
			dice[i] = d
		}
		return game.New(dice...)
	}
}

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{4, 1, 3, 2})
	assert.Equal(t, 4, s.Trials)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.25, s.Var, 1e-12)
	assert.Equal(t, 1, s.Min)
	assert.Equal(t, 4, s.Max)
	assert.InDelta(t, 2.5, s.P50, 1e-12)
	assert.Equal(t, []int{4, 1, 3, 2}, s.Samples, "samples keep trial order")

	assert.Equal(t, Stats{}, calcStats(nil))
}

func TestRunValidates(t *testing.T) {
	ctx := context.Background()
	_, err := Run(ctx, coins(2), GoalJackpots, Params{Rolls: 0, Trials: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = Run(ctx, coins(2), GoalJackpots, Params{Rolls: 1, Trials: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = Run(ctx, coins(2), Goal("nope"), Params{Rolls: 1, Trials: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestRunIndependentOfWorkers(t *testing.T) {
	ctx := context.Background()
	p := Params{Rolls: 50, Trials: 40, Seed: 7, Workers: 1}
	one, err := Run(ctx, coins(2), GoalJackpots, p, nil)
	require.NoError(t, err)

	p.Workers = 4
	four, err := Run(ctx, coins(2), GoalJackpots, p, nil)
	require.NoError(t, err)
	assert.Equal(t, one.Samples, four.Samples)
}

func TestRunJackpotMean(t *testing.T) {
	// two fair coins match half the time
	s, err := Run(context.Background(), coins(2), GoalJackpots, Params{Rolls: 1000, Trials: 50, Seed: 1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 500, s.Mean, 25)
}

func TestRunGoals(t *testing.T) {
	ctx := context.Background()
	p := Params{Rolls: 64, Trials: 10, Seed: 3}

	s, err := Run(ctx, coins(1), GoalFirstJackpot, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Mean, "a single die is a jackpot on roll one")

	s, err = Run(ctx, coins(2), GoalDistinctPermutations, p, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, s.Max, 4)

	s, err = Run(ctx, coins(2), GoalDistinctCombinations, p, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, s.Max, 3)
}

func TestRunProgress(t *testing.T) {
	var done atomic.Int32
	_, err := Run(context.Background(), coins(2), GoalJackpots, Params{Rolls: 5, Trials: 12, Workers: 3}, func() { done.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, int32(12), done.Load())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, coins(2), GoalJackpots, Params{Rolls: 5, Trials: 10}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseGoal(t *testing.T) {
	g, err := ParseGoal("")
	require.NoError(t, err)
	assert.Equal(t, GoalJackpots, g)
	g, err = ParseGoal("first_jackpot")
	require.NoError(t, err)
	assert.Equal(t, GoalFirstJackpot, g)
}
