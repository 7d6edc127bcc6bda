package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"tangled.org/arabica.social/dialin/internal/models"
)

// brewTarget is the starting temperature and total time for a method and roast.
type brewTarget struct {
	TempC       int
	TargetTimeS int
}

var v60Targets = map[models.RoastLevel]brewTarget{
	models.RoastLight:  {TempC: 94, TargetTimeS: 180},
	models.RoastMedium: {TempC: 92, TargetTimeS: 170},
	models.RoastDark:   {TempC: 90, TargetTimeS: 155},
}

var espressoTargets = map[models.RoastLevel]brewTarget{
	models.RoastLight:  {TempC: 94, TargetTimeS: 28},
	models.RoastMedium: {TempC: 93, TargetTimeS: 28},
	models.RoastDark:   {TempC: 92, TargetTimeS: 28},
}

// Generate builds a recipe for req using the grinder table in src.
// req is validated (and normalized) first; see models.RecipeRequest.Validate.
func Generate(src ProfileSource, req models.RecipeRequest) (*models.Recipe, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := targetFor(req.Method, req.RoastLevel)
	if err != nil {
		return nil, err
	}

	water := req.Water()
	ratio := water / req.CoffeeG
	if req.Method == models.MethodV60 {
		ratio = round(ratio, 1)
	} else {
		ratio = round(ratio, 2)
	}

	target, adjustments := applyTasteGoal(req.Method, req.TasteGoal, target)

	grind, err := recommendGrind(src, models.GrindRequest{
		Method:        req.Method,
		RoastLevel:    req.RoastLevel,
		Grinder:       req.Grinder,
		TasteGoal:     req.TasteGoal,
		BaselineGrind: req.BaselineGrind,
	})
	if err != nil {
		return nil, err
	}

	return &models.Recipe{
		Method:       req.Method,
		RoastLevel:   req.RoastLevel,
		TasteGoal:    req.TasteGoal,
		CoffeeG:      req.CoffeeG,
		WaterG:       water,
		Ratio:        ratio,
		WaterTempC:   target.TempC,
		TargetTimeS:  target.TargetTimeS,
		GrindSetting: *grind,
		Steps:        steps(req.Method, req.CoffeeG, water, ratio, target, grind),
		Adjustments:  adjustments,
	}, nil
}

func targetFor(m models.Method, roast models.RoastLevel) (brewTarget, error) {
	var table map[models.RoastLevel]brewTarget
	switch m {
	case models.MethodV60:
		table = v60Targets
	case models.MethodEspresso:
		table = espressoTargets
	default:
		return brewTarget{}, models.ErrInvalidMethod
	}
	t, ok := table[roast]
	if !ok {
		return brewTarget{}, models.ErrInvalidRoastLevel
	}
	return t, nil
}

// applyTasteGoal nudges a V60 target towards the taste goal and returns the
// advice line for it. Espresso targets are left alone; only the advice changes.
func applyTasteGoal(m models.Method, goal models.TasteGoal, t brewTarget) (brewTarget, []string) {
	if m == models.MethodV60 {
		switch goal {
		case models.TasteBrighter:
			t.TempC++
			return t, []string{"Sour/under-extracted? Go slightly finer or pour slower."}
		case models.TasteSweeter:
			t.TargetTimeS += 10
			return t, []string{"Try +10s total time with an even pour."}
		case models.TasteLessBitter:
			t.TempC--
			t.TargetTimeS -= 10
			return t, []string{"Bitter/over-extracted? Go slightly coarser or shorten time."}
		default:
			return t, []string{"Baseline recipe. Adjust one variable at a time."}
		}
	}

	switch goal {
	case models.TasteBrighter:
		return t, []string{"If sour/fast: grind finer OR increase yield slightly."}
	case models.TasteSweeter:
		return t, []string{"Keep dose consistent; adjust grind in tiny steps; aim 25–30s."}
	case models.TasteLessBitter:
		return t, []string{"If bitter/slow: grind coarser OR reduce yield slightly."}
	default:
		return t, []string{"Adjust grind first, then yield, then temperature."}
	}
}

func steps(m models.Method, coffee, water, ratio float64, t brewTarget, g *models.GrindSetting) []string {
	grindLine := fmt.Sprintf("Set grinder to %.1f on %s (range %s, baseline used %.1f).",
		g.Recommended, g.Grinder, g.Range, g.BaselineUsed)

	if m == models.MethodV60 {
		return []string{
			fmt.Sprintf("Heat water to %d°C.", t.TempC),
			"Rinse filter and preheat dripper/server.",
			grindLine,
			fmt.Sprintf("Add %.0fg coffee.", coffee),
			"Bloom with ~2x coffee weight water for 30–45s.",
			fmt.Sprintf("Continue pouring in slow circles to reach %.0fg total water.", water),
			fmt.Sprintf("Target total brew time: ~%s.", FormatBrewTime(t.TargetTimeS)),
		}
	}

	return []string{
		fmt.Sprintf("Heat machine/water to ~%d°C (approx).", t.TempC),
		grindLine,
		fmt.Sprintf("Dose %.0fg into portafilter.", coffee),
		"Distribute evenly and tamp level.",
		fmt.Sprintf("Target yield: %.0fg out (ratio ~1:%s).", water, FormatRatio(ratio)),
		fmt.Sprintf("Target shot time: ~%ds.", t.TargetTimeS),
	}
}

// FormatBrewTime renders seconds as m:ss.
func FormatBrewTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatRatio renders a ratio with at least one decimal, e.g. 2 → "2.0", 2.06 → "2.06".
func FormatRatio(ratio float64) string {
	s := strconv.FormatFloat(ratio, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
