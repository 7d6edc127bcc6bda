package models

import "errors"

// Validation errors returned by the request types.
var (
	ErrInvalidMethod      = errors.New("method must be V60 or ESPRESSO")
	ErrInvalidRoastLevel  = errors.New("roast_level must be: light, medium, or dark")
	ErrInvalidTasteGoal   = errors.New("taste_goal must be: balanced, sweeter, brighter, or less_bitter")
	ErrInvalidTasteResult = errors.New("taste_result must be: too_sour, too_bitter, too_weak, too_strong, balanced")
	ErrDoseRequired       = errors.New("coffee_g must be > 0")
	ErrWaterRequired      = errors.New("water_g or ratio must be > 0")
	ErrDoseOutOfRange     = errors.New("coffee_g is outside the accepted range for this method")
	ErrWaterOutOfRange    = errors.New("water_g is outside the accepted range for this method")
	ErrRatioOutOfRange    = errors.New("ratio is above the accepted maximum")
	ErrNegativeTime       = errors.New("time_s must be >= 0")
	ErrInvalidDial        = errors.New("dial setting must be > 0")
)
