package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/metrics"
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/validation"

	"github.com/rs/zerolog/log"
)

// Config holds handler configuration options
type Config struct {
	// HistoryLimit is the page size used when a history request has no limit.
	HistoryLimit int
}

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	registry *grinder.Registry
	store    database.Store
	config   Config
}

// NewHandler creates a new Handler with all required dependencies.
func NewHandler(registry *grinder.Registry, store database.Store, config Config) *Handler {
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = database.DefaultHistoryLimit
	}
	return &Handler{
		registry: registry,
		store:    store,
		config:   config,
	}
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error       string   `json:"error"`
	Field       string   `json:"field,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// isJSONRequest checks if the request Content-Type is JSON
func isJSONRequest(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	return contentType == "" || strings.Contains(contentType, "application/json")
}

// decodeJSON decodes the request body into target, rejecting unknown fields.
func decodeJSON(r *http.Request, target interface{}) error {
	if !isJSONRequest(r) {
		return errUnsupportedContentType
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

var errUnsupportedContentType = errors.New("content type must be application/json")

// writeJSON encodes and writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}, entityName string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode " + entityName + " response")
	}
}

// writeBadRequest reports a malformed request body or query.
func writeBadRequest(w http.ResponseWriter, msg, field string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Field: field}, "error")
}

// fieldForError names the request field a sentinel error refers to.
var fieldForError = []struct {
	err   error
	field string
}{
	{models.ErrInvalidMethod, "method"},
	{models.ErrInvalidRoastLevel, "roast_level"},
	{models.ErrInvalidTasteGoal, "taste_goal"},
	{models.ErrInvalidTasteResult, "taste_result"},
	{models.ErrDoseRequired, "coffee_g"},
	{models.ErrDoseOutOfRange, "coffee_g"},
	{models.ErrWaterRequired, "water_g"},
	{models.ErrWaterOutOfRange, "water_g"},
	{models.ErrRatioOutOfRange, "ratio"},
	{models.ErrNegativeTime, "time_s"},
	{models.ErrInvalidDial, "dial"},
	{grinder.ErrUnknownGrinder, "grinder"},
	{grinder.ErrMethodNotSupported, "method"},
}

// writeError maps a calculator or store error onto an HTTP status and
// records it against operation in the error counter.
func writeError(w http.ResponseWriter, operation string, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		metrics.CalculationErrorsTotal.WithLabelValues(operation, "validation").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.FirstField()}, "error")
		return
	case errors.Is(err, grinder.ErrUnknownGrinder):
		metrics.CalculationErrorsTotal.WithLabelValues(operation, "unknown_grinder").Inc()
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Field: "grinder"}, "error")
		return
	}

	for _, fe := range fieldForError {
		if errors.Is(err, fe.err) {
			metrics.CalculationErrorsTotal.WithLabelValues(operation, "validation").Inc()
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: fe.field}, "error")
			return
		}
	}

	metrics.CalculationErrorsTotal.WithLabelValues(operation, "internal").Inc()
	log.Error().Err(err).Str("operation", operation).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"}, "error")
}
