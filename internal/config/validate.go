package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidConfig = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.Rolls != nil && *cfg.Rolls < 1 {
		errs = append(errs, "rolls must be >= 1")
	}
	if len(cfg.Dice) == 0 {
		errs = append(errs, "dice must list at least one die")
	}

	for i, d := range cfg.Dice {
		prefix := fmt.Sprintf("dice[%d]", i)
		if d.Name != "" {
			prefix = fmt.Sprintf("dice[%d] (%s)", i, d.Name)
		}
		switch {
		case len(d.Faces) > 0 && d.Sides != 0:
			errs = append(errs, prefix+": set either faces or sides, not both")
		case len(d.Faces) == 0 && d.Sides <= 0:
			errs = append(errs, prefix+": faces or sides >= 1 is required")
		}
		if d.Count != nil && *d.Count < 0 {
			errs = append(errs, prefix+".count must be >= 0")
		}

		faces := d.faceList()
		seen := make(map[string]bool, len(faces))
		for _, f := range faces {
			if seen[f] {
				errs = append(errs, fmt.Sprintf("%s.faces: %q is repeated", prefix, f))
			}
			seen[f] = true
		}
		for f, w := range d.Weights {
			if !seen[f] {
				errs = append(errs, fmt.Sprintf("%s.weights: %q is not a face", prefix, f))
				continue
			}
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				errs = append(errs, fmt.Sprintf("%s.weights[%s] must be a finite number >= 0", prefix, f))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
