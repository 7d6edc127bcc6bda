package models

// Option lists for clients building forms or completions.
// These are served as-is by the options endpoint and the CLI help text.

var (
	// Methods defines the supported brew methods
	Methods = []Method{
		MethodV60,
		MethodEspresso,
	}

	// RoastLevels defines the roast levels the recipe rules distinguish
	RoastLevels = []RoastLevel{
		RoastLight,
		RoastMedium,
		RoastDark,
	}

	// TasteGoals defines the available taste goal options for recipe generation
	TasteGoals = []TasteGoal{
		TasteBalanced,
		TasteSweeter,
		TasteBrighter,
		TasteLessBitter,
	}

	// TasteResults defines the outcomes the dial-in assistant understands
	TasteResults = []TasteResult{
		ResultTooSour,
		ResultTooBitter,
		ResultTooWeak,
		ResultTooStrong,
		ResultBalanced,
	}
)

// BrewLimits bounds the dose and water (or espresso yield) accepted for a method.
type BrewLimits struct {
	MinDoseG  float64 `json:"min_dose_g"`
	MaxDoseG  float64 `json:"max_dose_g"`
	MinWaterG float64 `json:"min_water_g"`
	MaxWaterG float64 `json:"max_water_g"`
}

// MethodLimits holds the accepted input ranges per method.
var MethodLimits = map[Method]BrewLimits{
	MethodV60:      {MinDoseG: 5, MaxDoseG: 60, MinWaterG: 50, MaxWaterG: 1500},
	MethodEspresso: {MinDoseG: 10, MaxDoseG: 25, MinWaterG: 15, MaxWaterG: 80},
}
