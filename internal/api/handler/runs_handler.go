package handler

import (
	"errors"
	"net/http"
	"strings"

	"nyc-trip-loader/internal/store"
	"nyc-trip-loader/pkg/utils"
)

// ListRuns retrieves recent loader runs
// @Summary List loader runs
// @Description Most recent runs first, with loaded/skipped month counts and appended rows
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum runs to return (1-500, default 20)"
// @Success 200 {array} model.RunSummary
// @Failure 400 {string} string "Invalid limit"
// @Failure 500 {string} string "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, ok := utils.ParseIntInRange(v, 1, 500)
		if !ok {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		serverError(w, "Failed to fetch runs", err)
		return
	}
	writeJSON(w, runs)
}

// GetRun retrieves one loader run
// @Summary Get loader run
// @Description A run with the outcome of every month it processed
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.RunSummary
// @Failure 400 {string} string "Invalid run ID"
// @Failure 404 {string} string "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	// Extract run ID from URL path
	path := r.URL.Path
	prefix := "/api/v1/runs/"

	if !strings.HasPrefix(path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	runID := path[len(prefix):]
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.Runs.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, "Failed to fetch run", err)
		return
	}
	writeJSON(w, run)
}
