package handlers

import (
	"net/http"
	"strconv"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/models"
	"tangled.org/arabica.social/dialin/internal/tracing"
)

type historyResponse struct {
	Records []*models.HistoryRecord `json:"records"`
	Total   int                     `json:"total"`
}

// HandleHistoryList returns saved recipes, newest first.
// ?limit=N caps the page size at database.MaxHistoryLimit.
func (h *Handler) HandleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := h.config.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer", "limit")
			return
		}
		if n > 0 {
			limit = n
		}
	}
	limit = database.NormalizeLimit(limit)

	ctx, span := tracing.StoreSpan(r.Context(), "list_records")
	defer span.End()

	records, err := h.store.ListRecords(ctx, limit)
	if err != nil {
		tracing.EndWithError(span, err)
		writeError(w, "history", err)
		return
	}
	total, err := h.store.CountRecords(ctx)
	if err != nil {
		tracing.EndWithError(span, err)
		writeError(w, "history", err)
		return
	}

	if records == nil {
		records = []*models.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Records: records, Total: total}, "history")
}

// HandleHistoryClear deletes every saved recipe.
func (h *Handler) HandleHistoryClear(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StoreSpan(r.Context(), "clear_records")
	err := h.store.ClearRecords(ctx)
	tracing.EndWithError(span, err)
	span.End()
	if err != nil {
		writeError(w, "history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
