// resolve.go
package config

import (
	"fmt"
	"strconv"

	"github.com/xtding233/dicesim/internal/die"
	"github.com/xtding233/dicesim/internal/game"
)

// DefaultRolls is used when neither the config nor an override sets rolls.
const DefaultRolls = 1000

// Overrides carries per-request values that beat the config file.
type Overrides struct {
	Rolls *int
	Seed  *uint64
}

// faceList returns the explicit faces, or "1".."Sides".
func (d DieSpec) faceList() []string {
	if len(d.Faces) > 0 {
		return d.Faces
	}
	faces := make([]string, 0, max(d.Sides, 0))
	for i := 1; i <= d.Sides; i++ {
		faces = append(faces, strconv.Itoa(i))
	}
	return faces
}

// Resolve validates cfg, applies o and expands every die spec.
func Resolve(name string, cfg RawConfig, o Overrides) (Resolved, error) {
	if o.Rolls != nil {
		r := *o.Rolls
		cfg.Rolls = &r
	}
	if o.Seed != nil {
		s := *o.Seed
		cfg.Seed = &s
	}
	if err := ValidateRaw(cfg); err != nil {
		return Resolved{}, fmt.Errorf("game %q: %w", name, err)
	}

	out := Resolved{Name: name, Version: cfg.Version, Rolls: DefaultRolls, Seed: cfg.Seed}
	if cfg.Rolls != nil {
		out.Rolls = *cfg.Rolls
	}
	for i, d := range cfg.Dice {
		faces := d.faceList()
		weights := make([]float64, len(faces))
		for j, f := range faces {
			weights[j] = 1.0
			if w, ok := d.Weights[f]; ok {
				weights[j] = w
			}
		}
		count := 1
		if d.Count != nil {
			count = *d.Count
		}
		dieName := d.Name
		if dieName == "" {
			dieName = fmt.Sprintf("die%d", i)
		}
		for k := 0; k < count; k++ {
			rd := ResolvedDie{
				Name:    dieName,
				Faces:   append([]string(nil), faces...),
				Weights: append([]float64(nil), weights...),
			}
			if count > 1 {
				rd.Name = fmt.Sprintf("%s#%d", dieName, k+1)
			}
			out.Dice = append(out.Dice, rd)
		}
	}
	if len(out.Dice) == 0 {
		return Resolved{}, fmt.Errorf("game %q: %w: every die has count 0", name, ErrInvalidConfig)
	}
	return out, nil
}

// RNG returns the source the game should use: seeded when Seed is set.
func (r Resolved) RNG() die.RandomSource {
	if r.Seed != nil {
		return die.NewSeededRNG(*r.Seed)
	}
	return die.DefaultRNG()
}

// BaseSeed is where a batch of trials starts: Seed when the game sets one,
// otherwise a fresh random seed the caller should report back.
func (r Resolved) BaseSeed() uint64 {
	if r.Seed != nil {
		return *r.Seed
	}
	return die.RandomSeed()
}

// Build creates a game whose dice all draw from rng. A nil rng means r.RNG().
func (r Resolved) Build(rng die.RandomSource) (*game.Game[string], error) {
	if rng == nil {
		rng = r.RNG()
	}
	dice := make([]*die.Die[string], len(r.Dice))
	for i, rd := range r.Dice {
		d, err := die.NewWeighted(rd.Faces, rd.Weights, rng)
		if err != nil {
			return nil, fmt.Errorf("die %s: %w", rd.Name, err)
		}
		dice[i] = d
	}
	return game.New(dice...)
}

// DieNames lists die names in game order.
func (r Resolved) DieNames() []string {
	names := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		names[i] = d.Name
	}
	return names
}
