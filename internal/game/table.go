package game

import (
	"fmt"

	"github.com/xtding233/dicesim/internal/die"
)

// Layout selects the shape Results returns.
type Layout string

const (
	// LayoutWide is one row per roll, one column per die.
	LayoutWide Layout = "wide"
	// LayoutNarrow is one row per (roll, die) pair.
	LayoutNarrow Layout = "narrow"
)

// Table is a result table in either layout. Len is the number of rows.
type Table[L die.Label] interface {
	Layout() Layout
	Len() int
}

// WideTable is a roll × die table of faces. Row order is roll order and
// column order is die order.
type WideTable[L die.Label] struct {
	rows [][]L
}

// NewWideTable copies rows into a table. Every row must have the same
// non-zero number of columns.
func NewWideTable[L die.Label](rows [][]L) (*WideTable[L], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyTable
	}
	width := len(rows[0])
	cp := make([][]L, len(rows))
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedTable, i, len(r), width)
		}
		cp[i] = append([]L(nil), r...)
	}
	return &WideTable[L]{rows: cp}, nil
}

func (t *WideTable[L]) Layout() Layout { return LayoutWide }
func (t *WideTable[L]) Len() int       { return len(t.rows) }

// NumRolls is the number of rows.
func (t *WideTable[L]) NumRolls() int { return len(t.rows) }

// NumDice is the number of columns.
func (t *WideTable[L]) NumDice() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows[0])
}

// At returns the face the die in column col showed on roll.
func (t *WideTable[L]) At(roll, col int) L { return t.rows[roll][col] }

// Row returns a copy of one roll.
func (t *WideTable[L]) Row(roll int) []L { return append([]L(nil), t.rows[roll]...) }

// Rows returns a deep copy of the table.
func (t *WideTable[L]) Rows() [][]L {
	out := make([][]L, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]L(nil), r...)
	}
	return out
}

// Clone returns an independent copy.
func (t *WideTable[L]) Clone() *WideTable[L] { return &WideTable[L]{rows: t.Rows()} }

// As returns a fresh copy of the table in layout; "" means LayoutWide.
func (t *WideTable[L]) As(layout Layout) (Table[L], error) {
	switch layout {
	case "", LayoutWide:
		return t.Clone(), nil
	case LayoutNarrow:
		return t.Narrow(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
}

// Narrow reshapes the table into one observation per (roll, die), roll-major.
func (t *WideTable[L]) Narrow() *NarrowTable[L] {
	obs := make([]Observation[L], 0, t.NumRolls()*t.NumDice())
	for r, row := range t.rows {
		for d, face := range row {
			obs = append(obs, Observation[L]{Roll: r, Die: d, Face: face})
		}
	}
	return &NarrowTable[L]{obs: obs}
}

// Observation is one die's face on one roll.
type Observation[L die.Label] struct {
	Roll int `json:"roll"`
	Die  int `json:"die"`
	Face L   `json:"face"`
}

// NarrowTable is keyed by (roll, die) with a single face column.
type NarrowTable[L die.Label] struct {
	obs []Observation[L]
}

func (t *NarrowTable[L]) Layout() Layout { return LayoutNarrow }
func (t *NarrowTable[L]) Len() int       { return len(t.obs) }

// Observations returns a copy of every row in roll-major order.
func (t *NarrowTable[L]) Observations() []Observation[L] {
	return append([]Observation[L](nil), t.obs...)
}

// Lookup finds the face for a (roll, die) key.
func (t *NarrowTable[L]) Lookup(roll, col int) (L, bool) {
	for _, o := range t.obs {
		if o.Roll == roll && o.Die == col {
			return o.Face, true
		}
	}
	var zero L
	return zero, false
}
