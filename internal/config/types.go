// types.go
package config

// RawConfig is one game definition as loaded from YAML.
type RawConfig struct {
	Version string    `yaml:"version"`
	Rolls   *int      `yaml:"rolls,omitempty"`
	Seed    *uint64   `yaml:"seed,omitempty"`
	Dice    []DieSpec `yaml:"dice,omitempty"`
	Notes   string    `yaml:"notes,omitempty"`
}

// DieSpec describes one die, or Count identical dice.
type DieSpec struct {
	Name    string             `yaml:"name,omitempty"`
	Faces   []string           `yaml:"faces,omitempty"`
	Sides   int                `yaml:"sides,omitempty"`   // shorthand for faces "1".."sides"
	Weights map[string]float64 `yaml:"weights,omitempty"` // faces not listed weigh 1
	Count   *int               `yaml:"count,omitempty"`   // nil means 1
}

// Resolved is a validated game ready to build.
type Resolved struct {
	Name    string
	Version string // effective config version for tracing
	Rolls   int
	Seed    *uint64 // nil means crypto randomness
	Dice    []ResolvedDie
}

// ResolvedDie is one concrete die; Count has already been expanded.
type ResolvedDie struct {
	Name    string
	Faces   []string
	Weights []float64 // aligned with Faces
}
