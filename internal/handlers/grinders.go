package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/suggestions"
)

// grinderView is the API shape of a grinder profile.
type grinderView struct {
	Name    string                                `json:"name"`
	Default bool                                  `json:"default"`
	Methods map[models.Method]grinder.MethodRange `json:"methods"`
}

func newGrinderView(p grinder.Profile) grinderView {
	return grinderView{
		Name:    p.Name,
		Default: p.Name == grinder.Sculptor064S,
		Methods: p.Methods,
	}
}

// HandleGrinderList returns every grinder in the active table, or with
// ?q= only the grinders matching the query, best match first.
func (h *Handler) HandleGrinderList(w http.ResponseWriter, r *http.Request) {
	profiles := h.registry.List()

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		profiles = suggestions.Filter(profiles, q, suggestions.DefaultLimit)
	}

	views := make([]grinderView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, newGrinderView(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"grinders": views}, "grinders")
}

// HandleGrinderGet returns one grinder by name. An unknown name gets a 404
// listing similarly named grinders.
func (h *Handler) HandleGrinderGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, err := h.registry.Lookup(name)
	if errors.Is(err, grinder.ErrUnknownGrinder) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:       err.Error(),
			Field:       "grinder",
			Suggestions: suggestions.Names(h.registry, name, 5),
		}, "error")
		return
	}
	if err != nil {
		writeError(w, "grinder", err)
		return
	}
	writeJSON(w, http.StatusOK, newGrinderView(p), "grinder")
}

// methodOption describes a brew method for clients building forms.
type methodOption struct {
	Value  models.Method     `json:"value"`
	Label  string            `json:"label"`
	Limits models.BrewLimits `json:"limits"`
}

type optionsResponse struct {
	Methods        []methodOption       `json:"methods"`
	RoastLevels    []models.RoastLevel  `json:"roast_levels"`
	TasteGoals     []models.TasteGoal   `json:"taste_goals"`
	TasteResults   []models.TasteResult `json:"taste_results"`
	Grinders       []string             `json:"grinders"`
	DefaultGrinder string               `json:"default_grinder"`
}

// HandleOptions lists the accepted enum values and input limits.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	methods := make([]methodOption, 0, len(models.Methods))
	for _, m := range models.Methods {
		methods = append(methods, methodOption{
			Value:  m,
			Label:  m.DisplayName(),
			Limits: models.MethodLimits[m],
		})
	}

	writeJSON(w, http.StatusOK, optionsResponse{
		Methods:        methods,
		RoastLevels:    models.RoastLevels,
		TasteGoals:     models.TasteGoals,
		TasteResults:   models.TasteResults,
		Grinders:       h.registry.Names(),
		DefaultGrinder: grinder.Sculptor064S,
	}, "options")
}
