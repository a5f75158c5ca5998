package analyzer

import (
	"encoding/binary"
	"slices"

	"github.com/xtding233/dicesim/internal/die"
)

// FaceCountTable is a roll × face table of counts.
type FaceCountTable[L die.Label] struct {
	faces  []L
	col    map[L]int
	counts [][]int
}

// Faces returns the column faces, ascending.
func (t *FaceCountTable[L]) Faces() []L { return append([]L(nil), t.faces...) }

// NumRolls is the number of rows.
func (t *FaceCountTable[L]) NumRolls() int { return len(t.counts) }

// Count is how many dice showed face on roll. A face absent from that roll,
// or from the whole snapshot, counts 0.
func (t *FaceCountTable[L]) Count(roll int, face L) int {
	n, _ := t.Lookup(roll, face)
	return n
}

// Lookup is Count that also reports whether face appeared on roll.
func (t *FaceCountTable[L]) Lookup(roll int, face L) (int, bool) {
	c, ok := t.col[face]
	if !ok || roll < 0 || roll >= len(t.counts) {
		return 0, false
	}
	n := t.counts[roll][c]
	return n, n > 0
}

// Row returns face -> count for the faces present on roll.
func (t *FaceCountTable[L]) Row(roll int) map[L]int {
	out := make(map[L]int)
	for c, n := range t.counts[roll] {
		if n > 0 {
			out[t.faces[c]] = n
		}
	}
	return out
}

// Matrix returns a copy of the counts, one row per roll, one column per face
// in Faces order. Absent faces are 0.
func (t *FaceCountTable[L]) Matrix() [][]int {
	out := make([][]int, len(t.counts))
	for i, r := range t.counts {
		out[i] = append([]int(nil), r...)
	}
	return out
}

// Tally is one distinct combination or permutation and how often it came up.
type Tally[L die.Label] struct {
	Faces []L `json:"faces"`
	Count int `json:"count"`
}

// Tallies is a list of distinct outcomes in first-seen order.
type Tallies[L die.Label] []Tally[L]

// Len is the number of distinct outcomes.
func (ts Tallies[L]) Len() int { return len(ts) }

// Total sums every count; it equals the number of rolls tallied.
func (ts Tallies[L]) Total() int {
	n := 0
	for _, t := range ts {
		n += t.Count
	}
	return n
}

// Get returns the count for an exact face sequence, or 0.
func (ts Tallies[L]) Get(faces ...L) int {
	for _, t := range ts {
		if slices.Equal(t.Faces, faces) {
			return t.Count
		}
	}
	return 0
}

// ByCount returns a copy sorted by count, highest first. Ties keep
// first-seen order.
func (ts Tallies[L]) ByCount() Tallies[L] {
	out := slices.Clone(ts)
	slices.SortStableFunc(out, func(a, b Tally[L]) int { return b.Count - a.Count })
	return out
}

// keyEncoder turns a face sequence into a map key by writing each face's
// index in the sorted universe as a uvarint.
type keyEncoder[L die.Label] struct {
	idx map[L]uint64
	buf []byte
}

func newKeyEncoder[L die.Label](universe []L) *keyEncoder[L] {
	idx := make(map[L]uint64, len(universe))
	for i, f := range universe {
		idx[f] = uint64(i)
	}
	return &keyEncoder[L]{idx: idx}
}

func (e *keyEncoder[L]) key(faces []L) string {
	e.buf = e.buf[:0]
	for _, f := range faces {
		e.buf = binary.AppendUvarint(e.buf, e.idx[f])
	}
	return string(e.buf)
}
