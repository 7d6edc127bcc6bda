package recipe

import (
	"fmt"

	"tangled.org/arabica.social/dialin/internal/models"
)

// timeWindow is the target brew time and how far off it may be before the
// assistant calls it fast or slow.
type timeWindow struct {
	TargetS    int
	ToleranceS int
}

var dialInWindows = map[models.Method]timeWindow{
	models.MethodEspresso: {TargetS: 28, ToleranceS: 3},
	models.MethodV60:      {TargetS: 180, ToleranceS: 15},
}

// DialIn looks at what actually happened on a brew (time and taste) and
// suggests the next dial setting, moving one grinder step at a time.
//
// Under-extracted cups go finer, over-extracted cups go coarser, and a brew
// that was also off in time in the same direction moves a second step. A
// balanced cup only moves if the time was outside the window.
func DialIn(src ProfileSource, req models.DialInRequest) (*models.DialInAdvice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, r, err := src.Range(req.Grinder, req.Method)
	if err != nil {
		return nil, err
	}
	window := dialInWindows[req.Method]
	step := r.Step

	current := r.Clamp(req.CurrentGrind)
	tooFast := req.TimeS < window.TargetS-window.ToleranceS
	tooSlow := req.TimeS > window.TargetS+window.ToleranceS
	espresso := req.Method == models.MethodEspresso

	var notes []string
	delta := 0.0

	switch {
	case req.TasteResult.UnderExtracted():
		delta -= step
		if tooFast {
			delta -= step
		}
		notes = append(notes, "Likely under-extracted: go a bit finer.")
		if espresso {
			notes = append(notes, "If still sour: consider slightly increasing yield (e.g., +2g out).")
		} else {
			notes = append(notes, "If still sour: pour slightly slower or increase brew time a bit.")
		}
	case req.TasteResult.OverExtracted():
		delta += step
		if tooSlow {
			delta += step
		}
		notes = append(notes, "Likely over-extracted: go a bit coarser.")
		if espresso {
			notes = append(notes, "If still bitter: consider slightly reducing yield (e.g., -2g out).")
		} else {
			notes = append(notes, "If still bitter: shorten brew time slightly or reduce agitation.")
		}
	default:
		notes = append(notes, "Taste is balanced. Only adjust if you want a different style (brighter/sweeter).")
		if tooFast {
			notes = append(notes, "Time was fast. If you want more body, go a tiny bit finer.")
			delta -= step
		} else if tooSlow {
			notes = append(notes, "Time was slow. If you want cleaner cup, go a tiny bit coarser.")
			delta += step
		}
	}

	if req.TasteResult != models.ResultBalanced {
		if tooFast {
			notes = append(notes, "Time is fast vs target. A finer grind should slow it down.")
		} else if tooSlow {
			notes = append(notes, "Time is slow vs target. A coarser grind should speed it up.")
		}
	}

	if req.RoastLevel == models.RoastLight && req.TasteResult.UnderExtracted() {
		notes = append(notes, "Light roasts often need a bit more extraction than you expect.")
	}
	if req.RoastLevel == models.RoastDark && req.TasteResult.OverExtracted() {
		notes = append(notes, "Dark roasts can get bitter quickly—small changes only.")
	}

	suggested := r.Clamp(current + delta)

	return &models.DialInAdvice{
		Method:         req.Method,
		Grinder:        profile.Name,
		TargetTimeS:    window.TargetS,
		TimeS:          req.TimeS,
		CurrentGrind:   round(current, 1),
		SuggestedGrind: round(suggested, 1),
		Direction:      direction(current, suggested),
		Notes:          notes,
		RatioUsed:      req.CurrentRatio,
	}, nil
}

func direction(current, suggested float64) string {
	switch {
	case suggested > current:
		return fmt.Sprintf("coarser (+%.1f)", round(suggested-current, 1))
	case suggested < current:
		return fmt.Sprintf("finer (-%.1f)", round(current-suggested, 1))
	default:
		return "no change"
	}
}
