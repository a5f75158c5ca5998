// Package game rolls a fixed list of dice together, many times over, and
// keeps the outcome as a roll × die table.
package game

import (
	"errors"
	"fmt"

	"github.com/xtding233/dicesim/internal/die"
)

var (
	ErrNoDice           = errors.New("game needs at least one die")
	ErrNilDie           = errors.New("game dice must not be nil")
	ErrInvalidRollCount = errors.New("number of rolls must be >= 1")
	ErrNotPlayed        = errors.New("game has not been played yet")
	ErrUnknownLayout    = errors.New("layout must be either wide or narrow")
	ErrEmptyTable       = errors.New("result table must have at least one roll and one die")
	ErrRaggedTable      = errors.New("result table rows must all have the same length")
)

// Game holds its dice by reference: a weight change made on a die after
// New is seen by the next Play, and by any other game sharing that die.
type Game[L die.Label] struct {
	dice    []*die.Die[L]
	results *WideTable[L]
}

// New creates a game over dice, in the given order. Dice may have
// different faces.
func New[L die.Label](dice ...*die.Die[L]) (*Game[L], error) {
	if len(dice) == 0 {
		return nil, ErrNoDice
	}
	for i, d := range dice {
		if d == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilDie, i)
		}
	}
	return &Game[L]{dice: append([]*die.Die[L](nil), dice...)}, nil
}

// Play rolls every die numRolls times and replaces the stored results.
// If any die fails to roll the previous results are kept as they were.
func (g *Game[L]) Play(numRolls int) error {
	if numRolls < 1 {
		return ErrInvalidRollCount
	}
	rows := make([][]L, numRolls)
	for r := range rows {
		row := make([]L, len(g.dice))
		for i, d := range g.dice {
			face, err := d.Roll(1)
			if err != nil {
				return fmt.Errorf("roll %d, die %d: %w", r, i, err)
			}
			row[i] = face[0]
		}
		rows[r] = row
	}
	g.results = &WideTable[L]{rows: rows}
	return nil
}

// Played reports whether results exist.
func (g *Game[L]) Played() bool { return g.results != nil }

// Results returns a fresh copy of the last results in the requested layout.
// An empty layout means LayoutWide.
func (g *Game[L]) Results(layout Layout) (Table[L], error) {
	if g.results == nil {
		return nil, ErrNotPlayed
	}
	return g.results.As(layout)
}

// Wide returns a copy of the results, one row per roll.
func (g *Game[L]) Wide() (*WideTable[L], error) {
	if g.results == nil {
		return nil, ErrNotPlayed
	}
	return g.results.Clone(), nil
}

// Narrow returns the results reshaped to one row per (roll, die).
func (g *Game[L]) Narrow() (*NarrowTable[L], error) {
	if g.results == nil {
		return nil, ErrNotPlayed
	}
	return g.results.Narrow(), nil
}

// Dice returns the game's dice in order. The slice is a copy; the dice are not.
func (g *Game[L]) Dice() []*die.Die[L] { return append([]*die.Die[L](nil), g.dice...) }

// NumDice is the number of dice.
func (g *Game[L]) NumDice() int { return len(g.dice) }
