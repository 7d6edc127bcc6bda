package models

import (
	"fmt"
	"math"
	"strings"

	"tangled.org/arabica.social/dialin/internal/validation"
)

// RecipeRequest holds the inputs for generating a brew recipe.
// WaterG is total water for V60 and target yield (g out) for espresso.
// When WaterG is zero the water amount is derived from CoffeeG × Ratio.
type RecipeRequest struct {
	Method        Method     `json:"method" url:"method"`
	RoastLevel    RoastLevel `json:"roast_level" url:"roast_level"`
	Grinder       string     `json:"grinder,omitempty" url:"grinder,omitempty" validate:"max=100"`
	CoffeeG       float64    `json:"coffee_g" url:"coffee_g" validate:"gte=0"`
	WaterG        float64    `json:"water_g,omitempty" url:"water_g,omitempty" validate:"gte=0"`
	Ratio         float64    `json:"ratio,omitempty" url:"ratio,omitempty" validate:"gte=0"`
	TasteGoal     TasteGoal  `json:"taste_goal,omitempty" url:"taste_goal,omitempty"`
	BaselineGrind *float64   `json:"baseline_grind,omitempty" url:"baseline_grind,omitempty"`
}

// MaxRatio caps a ratio that is used to derive the water amount.
const MaxRatio = 30.0

// Normalize rewrites the enum fields into their canonical spelling.
func (r *RecipeRequest) Normalize() error {
	m, err := ParseMethod(string(r.Method))
	if err != nil {
		return err
	}
	roast, err := ParseRoastLevel(string(r.RoastLevel))
	if err != nil {
		return err
	}
	goal, err := ParseTasteGoal(string(r.TasteGoal))
	if err != nil {
		return err
	}
	r.Method, r.RoastLevel, r.TasteGoal = m, roast, goal
	r.Grinder = strings.TrimSpace(r.Grinder)
	return nil
}

// Validate normalizes the request in place and checks it against the
// per-method input limits.
func (r *RecipeRequest) Validate() error {
	if err := r.Normalize(); err != nil {
		return err
	}
	if r.CoffeeG <= 0 {
		return ErrDoseRequired
	}
	if r.WaterG <= 0 && r.Ratio <= 0 {
		return ErrWaterRequired
	}
	if r.WaterG <= 0 && r.Ratio > MaxRatio {
		return fmt.Errorf("%w: got 1:%g, max 1:%g", ErrRatioOutOfRange, r.Ratio, MaxRatio)
	}
	if err := validation.ValidateStruct(r); err != nil {
		return err
	}
	return checkLimits(r.Method, r.CoffeeG, r.Water())
}

// Water returns the water (or yield) amount in grams, deriving it from the
// ratio when no explicit amount was given.
func (r *RecipeRequest) Water() float64 {
	if r.WaterG > 0 {
		return r.WaterG
	}
	return math.Round(r.CoffeeG*r.Ratio*10) / 10
}

func checkLimits(m Method, coffee, water float64) error {
	limits, ok := MethodLimits[m]
	if !ok {
		return ErrInvalidMethod
	}
	if coffee < limits.MinDoseG || coffee > limits.MaxDoseG {
		return fmt.Errorf("%w: %s accepts %.0f–%.0f g", ErrDoseOutOfRange, m, limits.MinDoseG, limits.MaxDoseG)
	}
	if water < limits.MinWaterG || water > limits.MaxWaterG {
		return fmt.Errorf("%w: %s accepts %.0f–%.0f g", ErrWaterOutOfRange, m, limits.MinWaterG, limits.MaxWaterG)
	}
	return nil
}

// GrindRequest asks for a dial recommendation without a full recipe.
// An empty roast level falls back to the middle of the grinder range.
// BaselineGrind may lie outside the grinder range; it is clamped, not rejected.
type GrindRequest struct {
	Method        Method     `json:"method"`
	RoastLevel    RoastLevel `json:"roast_level,omitempty"`
	Grinder       string     `json:"grinder,omitempty" validate:"max=100"`
	TasteGoal     TasteGoal  `json:"taste_goal,omitempty"`
	BaselineGrind *float64   `json:"baseline_grind,omitempty"`
}

func (r *GrindRequest) Validate() error {
	m, err := ParseMethod(string(r.Method))
	if err != nil {
		return err
	}
	if r.RoastLevel != "" {
		roast, err := ParseRoastLevel(string(r.RoastLevel))
		if err != nil {
			return err
		}
		r.RoastLevel = roast
	}
	goal, err := ParseTasteGoal(string(r.TasteGoal))
	if err != nil {
		return err
	}
	r.Method, r.TasteGoal = m, goal
	r.Grinder = strings.TrimSpace(r.Grinder)
	return validation.ValidateStruct(r)
}

// DialInRequest describes what actually happened on the last brew.
// CurrentGrind is clamped into the grinder range by the assistant.
// TimeS is the espresso shot time or the V60 total brew time.
// CurrentRatio is water/coffee for V60 or yield/dose for espresso.
type DialInRequest struct {
	Method       Method      `json:"method" url:"method"`
	RoastLevel   RoastLevel  `json:"roast_level,omitempty" url:"roast_level,omitempty"`
	Grinder      string      `json:"grinder,omitempty" url:"grinder,omitempty" validate:"max=100"`
	CurrentGrind float64     `json:"current_grind" url:"current_grind"`
	TimeS        int         `json:"time_s" url:"time_s"`
	TasteResult  TasteResult `json:"taste_result" url:"taste_result"`
	CurrentRatio float64     `json:"current_ratio,omitempty" url:"current_ratio,omitempty" validate:"gte=0"`
}

func (r *DialInRequest) Validate() error {
	m, err := ParseMethod(string(r.Method))
	if err != nil {
		return err
	}
	if r.RoastLevel != "" {
		roast, err := ParseRoastLevel(string(r.RoastLevel))
		if err != nil {
			return err
		}
		r.RoastLevel = roast
	}
	result, err := ParseTasteResult(string(r.TasteResult))
	if err != nil {
		return err
	}
	r.Method, r.TasteResult = m, result
	r.Grinder = strings.TrimSpace(r.Grinder)
	if r.TimeS < 0 {
		return ErrNegativeTime
	}
	return validation.ValidateStruct(r)
}

// CalibrationRequest sets a personal baseline dial for a grinder and method.
type CalibrationRequest struct {
	Dial float64 `json:"dial"`
}

func (r *CalibrationRequest) Validate() error {
	if r.Dial <= 0 {
		return ErrInvalidDial
	}
	return nil
}
