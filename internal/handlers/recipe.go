package handlers

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tangled.org/arabica.social/dialin/internal/metrics"
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/recipe"
	"tangled.org/arabica.social/dialin/internal/tracing"

	"github.com/rs/zerolog/log"
)

// recipeBody is the POST /api/recipes payload.
type recipeBody struct {
	models.RecipeRequest

	// Save appends the generated recipe to history.
	Save bool `json:"save,omitempty"`

	// UseCalibration fills BaselineGrind from the stored calibration for the
	// grinder and method when the request carries no baseline.
	UseCalibration bool `json:"use_calibration,omitempty"`
}

// recipeResponse wraps a recipe with the history ID it was saved under.
type recipeResponse struct {
	*models.Recipe
	HistoryID string `json:"history_id,omitempty"`
}

// HandleRecipeCreate generates a recipe from a JSON body.
func (h *Handler) HandleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	var body recipeBody
	if err := decodeJSON(r, &body); err != nil {
		log.Warn().Err(err).Msg("Failed to decode recipe request")
		writeBadRequest(w, "invalid request body", "")
		return
	}

	req := body.RecipeRequest
	if body.UseCalibration && req.BaselineGrind == nil {
		if err := h.applyCalibration(r.Context(), &req); err != nil {
			writeError(w, "recipe", err)
			return
		}
	}

	rec, err := h.generate(r.Context(), req)
	if err != nil {
		writeError(w, "recipe", err)
		return
	}

	resp := recipeResponse{Recipe: rec}
	if body.Save {
		id, err := h.saveHistory(r.Context(), req, rec)
		if err != nil {
			writeError(w, "history", err)
			return
		}
		resp.HistoryID = id
	}

	writeJSON(w, http.StatusOK, resp, "recipe")
}

// HandleRecipeQuery generates a recipe from query parameters. It never saves.
func (h *Handler) HandleRecipeQuery(w http.ResponseWriter, r *http.Request) {
	req, field, err := parseRecipeQuery(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error(), field)
		return
	}

	rec, err := h.generate(r.Context(), req)
	if err != nil {
		writeError(w, "recipe", err)
		return
	}

	writeJSON(w, http.StatusOK, recipeResponse{Recipe: rec}, "recipe")
}

// HandleGrind returns a grind recommendation without a full recipe.
func (h *Handler) HandleGrind(w http.ResponseWriter, r *http.Request) {
	var req models.GrindRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn().Err(err).Msg("Failed to decode grind request")
		writeBadRequest(w, "invalid request body", "")
		return
	}

	_, span := tracing.CalcSpan(r.Context(), "grind", string(req.Method), req.Grinder)
	setting, err := recipe.RecommendGrind(h.registry, req)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "grind", err)
		return
	}

	metrics.GrindRecommendationsTotal.WithLabelValues(string(setting.Method)).Inc()
	metrics.RecommendedGrind.WithLabelValues(string(setting.Method)).Observe(setting.Recommended)

	writeJSON(w, http.StatusOK, setting, "grind")
}

// HandleDialIn suggests the next grind setting from a brew's time and taste.
func (h *Handler) HandleDialIn(w http.ResponseWriter, r *http.Request) {
	var req models.DialInRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn().Err(err).Msg("Failed to decode dial-in request")
		writeBadRequest(w, "invalid request body", "")
		return
	}

	_, span := tracing.CalcSpan(r.Context(), "dial_in", string(req.Method), req.Grinder)
	advice, err := recipe.DialIn(h.registry, req)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "dial_in", err)
		return
	}

	metrics.DialInAdviceTotal.WithLabelValues(string(advice.Method), string(req.TasteResult), directionLabel(advice)).Inc()

	writeJSON(w, http.StatusOK, advice, "dial-in")
}

func (h *Handler) generate(ctx context.Context, req models.RecipeRequest) (*models.Recipe, error) {
	_, span := tracing.CalcSpan(ctx, "recipe", string(req.Method), req.Grinder)
	defer span.End()

	rec, err := recipe.Generate(h.registry, req)
	tracing.EndWithError(span, err)
	if err != nil {
		return nil, err
	}

	metrics.RecipesGeneratedTotal.WithLabelValues(string(rec.Method), string(rec.RoastLevel), string(rec.TasteGoal)).Inc()
	metrics.RecommendedGrind.WithLabelValues(string(rec.Method)).Observe(rec.GrindSetting.Recommended)
	return rec, nil
}

// applyCalibration copies the stored calibration for the request's grinder
// and method into BaselineGrind. A missing calibration leaves req unchanged.
func (h *Handler) applyCalibration(ctx context.Context, req *models.RecipeRequest) error {
	if err := req.Normalize(); err != nil {
		return err
	}
	profile, err := h.registry.Lookup(req.Grinder)
	if err != nil {
		return err
	}

	ctx, span := tracing.StoreSpan(ctx, "get_calibration")
	cal, err := h.store.GetCalibration(ctx, profile.Name, req.Method)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		return err
	}
	if cal != nil {
		dial := cal.Dial
		req.BaselineGrind = &dial
	}
	return nil
}

func (h *Handler) saveHistory(ctx context.Context, req models.RecipeRequest, rec *models.Recipe) (string, error) {
	// Record the request as it was resolved, so history shows the canonical
	// enums and the grinder actually used.
	_ = req.Normalize()
	req.Grinder = rec.GrindSetting.Grinder

	entry := &models.HistoryRecord{
		CreatedAt: time.Now().UTC(),
		Request:   req,
		Recipe:    rec,
	}

	ctx, span := tracing.StoreSpan(ctx, "save_record")
	err := h.store.SaveRecord(ctx, entry)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

func directionLabel(a *models.DialInAdvice) string {
	switch {
	case a.SuggestedGrind > a.CurrentGrind:
		return "coarser"
	case a.SuggestedGrind < a.CurrentGrind:
		return "finer"
	default:
		return "none"
	}
}

// parseRecipeQuery builds a RecipeRequest from query parameters. On error it
// also returns the offending parameter name.
func parseRecipeQuery(q url.Values) (models.RecipeRequest, string, error) {
	req := models.RecipeRequest{
		Method:     models.Method(q.Get("method")),
		RoastLevel: models.RoastLevel(q.Get("roast_level")),
		Grinder:    q.Get("grinder"),
		TasteGoal:  models.TasteGoal(q.Get("taste_goal")),
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"coffee_g", &req.CoffeeG},
		{"water_g", &req.WaterG},
		{"ratio", &req.Ratio},
	}
	for _, f := range floats {
		v, ok, err := queryFloat(q, f.name)
		if err != nil {
			return req, f.name, err
		}
		if ok {
			*f.dst = v
		}
	}

	baseline, ok, err := queryFloat(q, "baseline_grind")
	if err != nil {
		return req, "baseline_grind", err
	}
	if ok {
		req.BaselineGrind = &baseline
	}

	return req, "", nil
}

func queryFloat(q url.Values, name string) (float64, bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &queryError{name: name}
	}
	return v, true, nil
}

type queryError struct {
	name string
}

func (e *queryError) Error() string {
	return e.name + " must be a number"
}
