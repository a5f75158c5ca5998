package die

import (
	"fmt"
	"math"
)

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return ErrInvalidWeight
	}
	if w < 0 {
		return ErrNegativeWeight
	}
	return nil
}

// indexFaces maps every face to its position, rejecting empty or repeated
// face lists.
func indexFaces[L Label](faces []L) (map[L]int, error) {
	if len(faces) == 0 {
		return nil, ErrNoFaces
	}
	idx := make(map[L]int, len(faces))
	for i, f := range faces {
		if _, dup := idx[f]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateFace, f)
		}
		idx[f] = i
	}
	return idx, nil
}
