package handler

import (
	"net/http"
	"strconv"

	domainerrors "go-wood-dashboard/internal/errors"
)

const defaultRunLimit = 50

// ListRuns returns the page run history
// @Summary List runs
// @Description Get recorded page runs, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} model.RunRecord "Run history"
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, domainerrors.Validation("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRunErrors returns the section diagnostics of a run
// @Summary Get run errors
// @Description Retrieve the errors of the sections that failed during a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {array} model.SectionError "Section errors"
// @Failure 404 {object} ErrorResponse "Run not found"
// @Router /runs/{id}/errors [get]
func (h *Handler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	errs, err := h.store.RunErrors(r.Context(), pathParam(r, 3))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": pathParam(r, 3),
		"errors": errs,
		"count":  len(errs),
	})
}
