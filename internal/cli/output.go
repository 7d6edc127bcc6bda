package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/recipe"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecipe(w io.Writer, r *models.Recipe) {
	fmt.Fprintf(w, "Recipe: %s, %s roast, %s\n", r.Method.DisplayName(), r.RoastLevel, r.TasteGoal)

	g := r.GrindSetting
	if r.Method == models.MethodEspresso {
		fmt.Fprintf(w, "  Dose:        %.1f g in, %.1f g out\n", r.CoffeeG, r.WaterG)
		fmt.Fprintf(w, "  Yield ratio: 1:%s\n", recipe.FormatRatio(r.Ratio))
		fmt.Fprintf(w, "  Water temp:  %d °C\n", r.WaterTempC)
		fmt.Fprintf(w, "  Target time: ~%d s\n", r.TargetTimeS)
	} else {
		fmt.Fprintf(w, "  Coffee:      %.1f g, water %.0f g\n", r.CoffeeG, r.WaterG)
		fmt.Fprintf(w, "  Ratio:       1:%s\n", recipe.FormatRatio(r.Ratio))
		fmt.Fprintf(w, "  Water temp:  %d °C\n", r.WaterTempC)
		fmt.Fprintf(w, "  Target time: ~%s\n", recipe.FormatBrewTime(r.TargetTimeS))
	}
	fmt.Fprintf(w, "  Grind (%s):  %.1f on %s (range %s, baseline used %.1f)\n",
		g.Unit, g.Recommended, g.Grinder, g.Range, g.BaselineUsed)

	writeList(w, "Steps", r.Steps)
	writeList(w, "Adjustments", r.Adjustments)
}

func writeAdvice(w io.Writer, a *models.DialInAdvice) {
	fmt.Fprintf(w, "Dial-in: %s on %s\n", a.Method.DisplayName(), a.Grinder)
	fmt.Fprintf(w, "  Current grind:   %.1f\n", a.CurrentGrind)
	fmt.Fprintf(w, "  Suggested grind: %.1f, %s\n", a.SuggestedGrind, a.Direction)
	fmt.Fprintf(w, "  Brew time:       %d s (target ~%d s)\n", a.TimeS, a.TargetTimeS)
	if a.RatioUsed > 0 {
		fmt.Fprintf(w, "  Ratio used:      1:%s\n", recipe.FormatRatio(a.RatioUsed))
	}

	writeList(w, "Notes", a.Notes)
}

func writeGrinders(w io.Writer, profiles []grinder.Profile) {
	for i, p := range profiles {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, p.Name)
		for _, m := range models.Methods {
			r, ok := p.Methods[m]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-9s %s %s (step %g)\n", m, r, r.Unit, r.Step)
		}
	}
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
