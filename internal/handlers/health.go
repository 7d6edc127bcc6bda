package handlers

import (
	"net/http"
)

// HandleHealth reports liveness along with the size of the grinder table.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"grinders": h.registry.Count(),
	}, "health")
}
