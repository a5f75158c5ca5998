package die

import "errors"

var (
	ErrNoFaces          = errors.New("die must have at least one face")
	ErrDuplicateFace    = errors.New("die faces must be unique")
	ErrWeightCount      = errors.New("weights must match faces one to one")
	ErrUnknownFace      = errors.New("face not on die")
	ErrInvalidWeight    = errors.New("weight must be a finite number")
	ErrNegativeWeight   = errors.New("weight must be 0 or positive")
	ErrInvalidRollCount = errors.New("number of rolls must be >= 1")
	ErrZeroWeight       = errors.New("total weight is 0; nothing can be rolled")
)
