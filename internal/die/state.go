package die

// FaceWeight is one row of a die snapshot.
type FaceWeight[L Label] struct {
	Face   L       `json:"face" yaml:"face"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// State is a point-in-time copy of a die's weights, in face order.
// It shares nothing with the die it came from.
type State[L Label] []FaceWeight[L]

// Weight looks up a face in the snapshot.
func (s State[L]) Weight(face L) (float64, bool) {
	for _, fw := range s {
		if fw.Face == face {
			return fw.Weight, true
		}
	}
	return 0, false
}

// Map returns the snapshot as face -> weight.
func (s State[L]) Map() map[L]float64 {
	m := make(map[L]float64, len(s))
	for _, fw := range s {
		m[fw.Face] = fw.Weight
	}
	return m
}
