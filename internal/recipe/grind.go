// Package recipe turns brew inputs into a recipe: water, temperature, target
// time, and a grind-dial setting from the grinder table. Every function here
// is pure; the grinder table is the only input besides the request.
package recipe

import (
	"strconv"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"
)

// ProfileSource resolves a grinder's dial range for a method.
// *grinder.Registry satisfies it.
type ProfileSource interface {
	Range(name string, m models.Method) (grinder.Profile, grinder.MethodRange, error)
}

// RecommendGrind returns a dial setting for the grinder named in req.
//
// The starting point is the caller's baseline when one is given (clamped into
// range), otherwise the grinder's default for the roast level. The taste-goal
// shift is applied on top and the result clamped again.
func RecommendGrind(src ProfileSource, req models.GrindRequest) (*models.GrindSetting, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return recommendGrind(src, req)
}

func recommendGrind(src ProfileSource, req models.GrindRequest) (*models.GrindSetting, error) {
	profile, r, err := src.Range(req.Grinder, req.Method)
	if err != nil {
		return nil, err
	}

	base := r.Baseline(req.RoastLevel)
	if req.BaselineGrind != nil {
		base = r.Clamp(*req.BaselineGrind)
	}
	recommended := r.Clamp(base + r.Shift(req.TasteGoal))

	return &models.GrindSetting{
		Grinder:      profile.Name,
		Method:       req.Method,
		Unit:         r.Unit,
		BaselineUsed: round(r.Clamp(base), 1),
		Recommended:  round(recommended, 1),
		Min:          r.Min,
		Max:          r.Max,
		Range:        r.String(),
	}, nil
}

// round rounds the exact value of x to places decimals. Exact ties go to the
// even digit: 12.25 → 12.2, 10.75 → 10.8.
func round(x float64, places int) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	return v
}
