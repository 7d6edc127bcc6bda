package models

import "time"

// GrindSetting is a dial recommendation for one grinder and method.
// Recommended and BaselineUsed always lie within [Min, Max].
type GrindSetting struct {
	Grinder      string  `json:"grinder"`
	Method       Method  `json:"method"`
	Unit         string  `json:"unit"`
	BaselineUsed float64 `json:"baseline_used"`
	Recommended  float64 `json:"recommended"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Range        string  `json:"range"`
}

// Recipe is the full recommendation returned for a RecipeRequest.
// WaterG is total water for V60 and target yield for espresso.
type Recipe struct {
	Method       Method       `json:"method"`
	RoastLevel   RoastLevel   `json:"roast_level"`
	TasteGoal    TasteGoal    `json:"taste_goal"`
	CoffeeG      float64      `json:"coffee_g"`
	WaterG       float64      `json:"water_g"`
	Ratio        float64      `json:"ratio"`
	WaterTempC   int          `json:"water_temp_c"`
	TargetTimeS  int          `json:"target_time_s"`
	GrindSetting GrindSetting `json:"grind_setting"`
	Steps        []string     `json:"steps"`
	Adjustments  []string     `json:"adjustments"`
}

// DialInAdvice is the dial-in assistant's answer for one brew.
type DialInAdvice struct {
	Method         Method   `json:"method"`
	Grinder        string   `json:"grinder"`
	TargetTimeS    int      `json:"target_time_s"`
	TimeS          int      `json:"time_s"`
	CurrentGrind   float64  `json:"current_grind"`
	SuggestedGrind float64  `json:"suggested_grind"`
	Direction      string   `json:"direction"`
	Notes          []string `json:"notes"`
	RatioUsed      float64  `json:"ratio_used"`
}

// HistoryRecord is a generated recipe saved together with the request that produced it.
type HistoryRecord struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Request   RecipeRequest `json:"request"`
	Recipe    *Recipe       `json:"recipe"`
}

// Calibration is a user's personal baseline dial for a grinder and method.
type Calibration struct {
	Grinder   string    `json:"grinder"`
	Method    Method    `json:"method"`
	Dial      float64   `json:"dial"`
	UpdatedAt time.Time `json:"updated_at"`
}
