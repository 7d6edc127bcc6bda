package handlers

import (
	"net/http"
	"time"

	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/tracing"

	"github.com/rs/zerolog/log"
)

// HandleCalibrationList returns every stored calibration.
func (h *Handler) HandleCalibrationList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StoreSpan(r.Context(), "list_calibrations")
	cals, err := h.store.ListCalibrations(ctx)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "calibration", err)
		return
	}
	if cals == nil {
		cals = []models.Calibration{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"calibrations": cals}, "calibrations")
}

// HandleCalibrationGet returns the calibration for /{grinder}/{method}.
func (h *Handler) HandleCalibrationGet(w http.ResponseWriter, r *http.Request) {
	name, method, ok := h.calibrationTarget(w, r)
	if !ok {
		return
	}

	ctx, span := tracing.StoreSpan(r.Context(), "get_calibration")
	cal, err := h.store.GetCalibration(ctx, name, method)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "calibration", err)
		return
	}
	if cal == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no calibration stored"}, "error")
		return
	}
	writeJSON(w, http.StatusOK, cal, "calibration")
}

// HandleCalibrationPut stores a personal baseline dial. The dial is clamped
// into the grinder's range for the method before it is saved.
func (h *Handler) HandleCalibrationPut(w http.ResponseWriter, r *http.Request) {
	name, method, ok := h.calibrationTarget(w, r)
	if !ok {
		return
	}

	var req models.CalibrationRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn().Err(err).Msg("Failed to decode calibration request")
		writeBadRequest(w, "invalid request body", "")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "calibration", err)
		return
	}

	_, mr, err := h.registry.Range(name, method)
	if err != nil {
		writeError(w, "calibration", err)
		return
	}

	cal := models.Calibration{
		Grinder:   name,
		Method:    method,
		Dial:      mr.Clamp(req.Dial),
		UpdatedAt: time.Now().UTC(),
	}

	ctx, span := tracing.StoreSpan(r.Context(), "set_calibration")
	err = h.store.SetCalibration(ctx, cal)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "calibration", err)
		return
	}

	writeJSON(w, http.StatusOK, cal, "calibration")
}

// HandleCalibrationDelete removes a stored calibration. Deleting one that
// doesn't exist still succeeds.
func (h *Handler) HandleCalibrationDelete(w http.ResponseWriter, r *http.Request) {
	name, method, ok := h.calibrationTarget(w, r)
	if !ok {
		return
	}

	ctx, span := tracing.StoreSpan(r.Context(), "delete_calibration")
	err := h.store.DeleteCalibration(ctx, name, method)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "calibration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// calibrationTarget resolves the {grinder} and {method} path values to the
// canonical grinder name and method. It writes the error reply itself.
func (h *Handler) calibrationTarget(w http.ResponseWriter, r *http.Request) (string, models.Method, bool) {
	method, err := models.ParseMethod(r.PathValue("method"))
	if err != nil {
		writeError(w, "calibration", err)
		return "", "", false
	}
	profile, err := h.registry.Lookup(r.PathValue("grinder"))
	if err != nil {
		writeError(w, "calibration", err)
		return "", "", false
	}
	return profile.Name, method, true
}
