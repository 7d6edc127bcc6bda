// Package grinder holds the per-grinder dial range table used to turn recipe
// rules into concrete dial numbers.
package grinder

import (
	"errors"
	"fmt"
	"math"

	"tangled.org/arabica.social/dialin/internal/models"
)

// Sculptor064S is the grinder assumed when a request does not name one.
const Sculptor064S = "TIMEMORE Sculptor 064S"

var (
	ErrUnknownGrinder     = errors.New("unknown grinder")
	ErrMethodNotSupported = errors.New("grinder has no range for this method")
	ErrInvalidProfile     = errors.New("invalid grinder profile")
)

// MethodRange is the valid dial range of a grinder for one brew method, plus
// the calibration data the recipe rules need: a default dial per roast level,
// a shift per taste goal and the step used by the dial-in assistant.
type MethodRange struct {
	Min       float64                       `json:"min" yaml:"min"`
	Max       float64                       `json:"max" yaml:"max"`
	Unit      string                        `json:"unit" yaml:"unit"`
	Step      float64                       `json:"step" yaml:"step"`
	Baselines map[models.RoastLevel]float64 `json:"baselines,omitempty" yaml:"baselines"`
	Shifts    map[models.TasteGoal]float64  `json:"shifts,omitempty" yaml:"shifts"`
}

// Clamp limits x to [Min, Max].
func (r MethodRange) Clamp(x float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, x))
}

// Midpoint returns the centre of the range.
func (r MethodRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// Baseline returns the default dial for a roast level, or the midpoint of the
// range if the roast is unknown or has no entry.
func (r MethodRange) Baseline(roast models.RoastLevel) float64 {
	if b, ok := r.Baselines[roast]; ok {
		return b
	}
	return r.Midpoint()
}

// Shift returns the dial offset for a taste goal. Unknown goals shift by zero.
func (r MethodRange) Shift(goal models.TasteGoal) float64 {
	return r.Shifts[goal]
}

// String formats the range for display, e.g. "8.0–13.0".
func (r MethodRange) String() string {
	return fmt.Sprintf("%.1f–%.1f", r.Min, r.Max)
}

// Validate checks the range is usable: ordered bounds, a positive step and
// baselines that fall inside the range.
func (r MethodRange) Validate() error {
	if r.Min >= r.Max {
		return fmt.Errorf("%w: min %.1f must be below max %.1f", ErrInvalidProfile, r.Min, r.Max)
	}
	if r.Step <= 0 {
		return fmt.Errorf("%w: step must be > 0", ErrInvalidProfile)
	}
	if r.Unit == "" {
		return fmt.Errorf("%w: unit is required", ErrInvalidProfile)
	}
	for roast, b := range r.Baselines {
		if !roast.IsValid() {
			return fmt.Errorf("%w: unknown roast level %q", ErrInvalidProfile, roast)
		}
		if b < r.Min || b > r.Max {
			return fmt.Errorf("%w: %s baseline %.1f outside %s", ErrInvalidProfile, roast, b, r)
		}
	}
	for goal := range r.Shifts {
		if !goal.IsValid() {
			return fmt.Errorf("%w: unknown taste goal %q", ErrInvalidProfile, goal)
		}
	}
	return nil
}

// Profile is one grinder model and its ranges per method.
type Profile struct {
	Name    string                        `json:"name" yaml:"name"`
	Methods map[models.Method]MethodRange `json:"methods" yaml:"methods"`
}

// Range returns the range for a method.
func (p Profile) Range(m models.Method) (MethodRange, error) {
	r, ok := p.Methods[m]
	if !ok {
		return MethodRange{}, fmt.Errorf("%w: %s does not list %s", ErrMethodNotSupported, p.Name, m)
	}
	return r, nil
}

// Validate checks the profile and every method range it carries.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if len(p.Methods) == 0 {
		return fmt.Errorf("%w: %s has no methods", ErrInvalidProfile, p.Name)
	}
	for m, r := range p.Methods {
		if !m.IsValid() {
			return fmt.Errorf("%w: %s lists unknown method %q", ErrInvalidProfile, p.Name, m)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s %s: %w", p.Name, m, err)
		}
	}
	return nil
}

// Default returns the built-in grinder table.
func Default() []Profile {
	return []Profile{
		{
			Name: Sculptor064S,
			Methods: map[models.Method]MethodRange{
				models.MethodV60: {
					Min:  8.0,
					Max:  13.0,
					Unit: "dial",
					Step: 0.2,
					Baselines: map[models.RoastLevel]float64{
						models.RoastLight:  12.5,
						models.RoastMedium: 11.0,
						models.RoastDark:   10.0,
					},
					Shifts: map[models.TasteGoal]float64{
						models.TasteBalanced:   0,
						models.TasteBrighter:   -0.4,
						models.TasteSweeter:    -0.2,
						models.TasteLessBitter: 0.4,
					},
				},
				models.MethodEspresso: {
					Min:  1.0,
					Max:  4.0,
					Unit: "dial",
					Step: 0.1,
					Baselines: map[models.RoastLevel]float64{
						models.RoastLight:  2.5,
						models.RoastMedium: 2.0,
						models.RoastDark:   1.6,
					},
					Shifts: map[models.TasteGoal]float64{
						models.TasteBalanced:   0,
						models.TasteBrighter:   -0.2,
						models.TasteSweeter:    -0.1,
						models.TasteLessBitter: 0.2,
					},
				},
			},
		},
	}
}
