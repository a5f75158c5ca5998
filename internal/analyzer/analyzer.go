// Package analyzer derives descriptive statistics from a played game.
//
// An Analyzer copies the game's wide result table when it is built; playing
// the game again afterwards does not change what the analyzer sees. Every
// query is a pure function of that copy.
package analyzer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/xtding233/dicesim/internal/die"
	"github.com/xtding233/dicesim/internal/game"
)

var (
	ErrNilGame  = errors.New("analyzer needs a game")
	ErrNilTable = errors.New("analyzer needs a result table")
)

// Analyzer answers questions about one snapshot of results.
type Analyzer[L die.Label] struct {
	rows [][]L
}

// New snapshots the results of a played game.
func New[L die.Label](g *game.Game[L]) (*Analyzer[L], error) {
	if g == nil {
		return nil, ErrNilGame
	}
	wide, err := g.Wide()
	if err != nil {
		return nil, fmt.Errorf("analyze game: %w", err)
	}
	return &Analyzer[L]{rows: wide.Rows()}, nil
}

// FromTable snapshots an existing wide table. The table needs at least one
// roll of at least one die.
func FromTable[L die.Label](t *game.WideTable[L]) (*Analyzer[L], error) {
	if t == nil {
		return nil, ErrNilTable
	}
	if t.NumRolls() == 0 || t.NumDice() == 0 {
		return nil, game.ErrEmptyTable
	}
	return &Analyzer[L]{rows: t.Rows()}, nil
}

// NumRolls is the number of rolls in the snapshot.
func (a *Analyzer[L]) NumRolls() int { return len(a.rows) }

// NumDice is the number of dice in the snapshot.
func (a *Analyzer[L]) NumDice() int {
	if len(a.rows) == 0 {
		return 0
	}
	return len(a.rows[0])
}

// Table returns a fresh wide table of the snapshot.
func (a *Analyzer[L]) Table() *game.WideTable[L] {
	t, _ := game.NewWideTable(a.rows) // never empty or ragged, see New/FromTable
	return t
}

// Results returns the snapshot in layout, like game.Game.Results.
func (a *Analyzer[L]) Results(layout game.Layout) (game.Table[L], error) {
	return a.Table().As(layout)
}

// Jackpot counts the rolls on which every die showed the same face.
func (a *Analyzer[L]) Jackpot() int {
	n := 0
	for _, row := range a.rows {
		if isJackpot(row) {
			n++
		}
	}
	return n
}

// FirstJackpot returns the index of the first jackpot roll, or -1.
func (a *Analyzer[L]) FirstJackpot() int {
	for i, row := range a.rows {
		if isJackpot(row) {
			return i
		}
	}
	return -1
}

func isJackpot[L die.Label](row []L) bool {
	for _, f := range row[1:] {
		if f != row[0] {
			return false
		}
	}
	return true
}

// FaceCounts counts, for every roll, how many dice showed each face.
// Columns are every face seen anywhere in the snapshot, ascending.
func (a *Analyzer[L]) FaceCounts() *FaceCountTable[L] {
	faces := a.universe()
	col := make(map[L]int, len(faces))
	for i, f := range faces {
		col[f] = i
	}
	counts := make([][]int, len(a.rows))
	for r, row := range a.rows {
		c := make([]int, len(faces))
		for _, f := range row {
			c[col[f]]++
		}
		counts[r] = c
	}
	return &FaceCountTable[L]{faces: faces, col: col, counts: counts}
}

// FaceTotals counts every face over the whole snapshot.
func (a *Analyzer[L]) FaceTotals() map[L]int {
	out := make(map[L]int)
	for _, row := range a.rows {
		for _, f := range row {
			out[f]++
		}
	}
	return out
}

// CombinationCounts tallies rolls regardless of which die showed which face:
// (1,2) and (2,1) are the same combination. Entries are in first-seen order
// and each holds the faces sorted ascending.
func (a *Analyzer[L]) CombinationCounts() Tallies[L] {
	return a.tally(func(row []L) []L {
		sorted := append([]L(nil), row...)
		slices.Sort(sorted)
		return sorted
	})
}

// PermutationCounts tallies rolls in die order: (1,2) and (2,1) are kept
// apart. Entries are in first-seen order.
func (a *Analyzer[L]) PermutationCounts() Tallies[L] {
	return a.tally(func(row []L) []L {
		return append([]L(nil), row...)
	})
}

func (a *Analyzer[L]) tally(canon func([]L) []L) Tallies[L] {
	enc := newKeyEncoder(a.universe())
	pos := make(map[string]int)
	var out Tallies[L]
	for _, row := range a.rows {
		faces := canon(row)
		k := enc.key(faces)
		if i, ok := pos[k]; ok {
			out[i].Count++
			continue
		}
		pos[k] = len(out)
		out = append(out, Tally[L]{Faces: faces, Count: 1})
	}
	return out
}

// universe returns every distinct face in the snapshot, ascending.
func (a *Analyzer[L]) universe() []L {
	seen := make(map[L]struct{})
	var faces []L
	for _, row := range a.rows {
		for _, f := range row {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				faces = append(faces, f)
			}
		}
	}
	slices.Sort(faces)
	return faces
}
