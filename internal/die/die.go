// Package die implements a weighted die: a fixed set of unique faces, each
// carrying a mutable non-negative weight, rolled with replacement.
package die

import "fmt"

// Label is the set of types a face can be. Faces of one die share a type;
// ordering is needed by the analysis layer to build canonical combinations.
type Label interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~string
}

// Die holds faces in construction order and one weight per face.
// A Die is not safe for concurrent use; Clone it for another goroutine.
type Die[L Label] struct {
	faces   []L
	index   map[L]int // face -> position in faces/weights
	weights []float64
	RNG     RandomSource
}

// New creates a die whose faces all weigh 1.0.
// If rng is nil the die draws from DefaultRNG().
func New[L Label](faces []L, rng RandomSource) (*Die[L], error) {
	weights := make([]float64, len(faces))
	for i := range weights {
		weights[i] = 1.0
	}
	return NewWeighted(faces, weights, rng)
}

// NewWeighted creates a die with explicit starting weights, weights[i]
// belonging to faces[i]. Each weight is validated like SetWeight.
// A die whose weights are all zero can be built but not rolled.
func NewWeighted[L Label](faces []L, weights []float64, rng RandomSource) (*Die[L], error) {
	idx, err := indexFaces(faces)
	if err != nil {
		return nil, err
	}
	if len(weights) != len(faces) {
		return nil, fmt.Errorf("%w: %d faces, %d weights", ErrWeightCount, len(faces), len(weights))
	}
	for i, w := range weights {
		if err := validateWeight(w); err != nil {
			return nil, fmt.Errorf("face %v: %w", faces[i], err)
		}
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Die[L]{
		faces:   append([]L(nil), faces...),
		index:   idx,
		weights: append([]float64(nil), weights...),
		RNG:     rng,
	}, nil
}

// SetWeight replaces the weight of one face. On error nothing changes.
func (d *Die[L]) SetWeight(face L, weight float64) error {
	i, ok := d.index[face]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownFace, face)
	}
	if err := validateWeight(weight); err != nil {
		return err
	}
	d.weights[i] = weight
	return nil
}

// Roll draws n faces with replacement. Each face comes up with probability
// weight/total, using the weights as they are at the time of the call.
func (d *Die[L]) Roll(n int) ([]L, error) {
	if n < 1 {
		return nil, ErrInvalidRollCount
	}
	total := d.Total()
	if total <= 0 {
		return nil, ErrZeroWeight
	}
	out := make([]L, n)
	for k := range out {
		out[k] = d.faces[d.pick(total)]
	}
	return out, nil
}

// pick walks the cumulative weights. Zero-weight faces can never be chosen:
// target < acc only ever flips on a face that added weight.
func (d *Die[L]) pick(total float64) int {
	target := d.RNG.Float64() * total
	var acc float64
	last := -1
	for i, w := range d.weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if target < acc {
			return i
		}
	}
	// float rounding left target == total
	return last
}

// Total is the sum of all weights.
func (d *Die[L]) Total() float64 {
	var sum float64
	for _, w := range d.weights {
		sum += w
	}
	return sum
}

// Weight returns the current weight of face.
func (d *Die[L]) Weight(face L) (float64, bool) {
	i, ok := d.index[face]
	if !ok {
		return 0, false
	}
	return d.weights[i], true
}

// Probability returns weight(face)/total, or 0 when the die cannot be rolled.
func (d *Die[L]) Probability(face L) float64 {
	w, ok := d.Weight(face)
	total := d.Total()
	if !ok || total <= 0 {
		return 0
	}
	return w / total
}

// Faces returns a copy of the faces in construction order.
func (d *Die[L]) Faces() []L { return append([]L(nil), d.faces...) }

// Len is the number of faces.
func (d *Die[L]) Len() int { return len(d.faces) }

// State returns a snapshot of every face and its weight.
func (d *Die[L]) State() State[L] {
	s := make(State[L], len(d.faces))
	for i, f := range d.faces {
		s[i] = FaceWeight[L]{Face: f, Weight: d.weights[i]}
	}
	return s
}

// Clone copies faces and weights into an independent die drawing from rng
// (DefaultRNG() when nil).
func (d *Die[L]) Clone(rng RandomSource) *Die[L] {
	if rng == nil {
		rng = DefaultRNG()
	}
	idx := make(map[L]int, len(d.index))
	for f, i := range d.index {
		idx[f] = i
	}
	return &Die[L]{
		faces:   append([]L(nil), d.faces...),
		index:   idx,
		weights: append([]float64(nil), d.weights...),
		RNG:     rng,
	}
}
