package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/report"
)

// PageResponse is a built page together with the id of the run that recorded it.
type PageResponse struct {
	RunID string `json:"run_id"`
	report.PageResult
}

// DatasetResponse summarizes the loaded dataset.
type DatasetResponse struct {
	Records        int              `json:"records"`
	MissingColumns []string         `json:"missing_columns"`
	Error          string           `json:"error,omitempty"`
	Report         model.LoadReport `json:"report"`
}

// ListPages returns the page catalogue
// @Summary List report pages
// @Description Get every dashboard page with its sections and the columns they need
// @Tags pages
// @Produce json
// @Success 200 {array} report.PageInfo "Page catalogue"
// @Router /pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages := report.Pages()
	infos := make([]report.PageInfo, 0, len(pages))
	for _, p := range pages {
		infos = append(infos, p.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

// GetPage builds a report page and records the run
// @Summary Get report page
// @Description Build every section of a page. Failed sections carry their own error; the page still answers 200
// @Tags pages
// @Produce json
// @Param page path string true "Page ID"
// @Success 200 {object} PageResponse "Built page"
// @Failure 404 {object} ErrorResponse "Unknown page"
// @Router /pages/{page} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	pageID := pathParam(r, 3)
	res, err := h.builder.Page(r.Context(), pageID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	runID := uuid.New().String()
	h.recordRun(r, runID, res)
	writeJSON(w, http.StatusOK, PageResponse{RunID: runID, PageResult: res})
}

// recordRun stores the run and its section diagnostics. Store failures are logged only.
func (h *Handler) recordRun(r *http.Request, runID string, res report.PageResult) {
	ctx := r.Context()
	now := time.Now().UTC()
	run := model.RunRecord{
		ID:        runID,
		Page:      res.Page,
		Status:    res.Status,
		Sections:  len(res.Sections),
		Failed:    res.Failed,
		CreatedAt: now,
	}
	if err := h.store.SaveRun(ctx, run); err != nil {
		h.logger.Warn("failed to save run", zap.String("run_id", runID), zap.Error(err))
		return
	}

	var errs []model.SectionError
	for _, s := range res.Sections {
		if s.Error == nil {
			continue
		}
		errs = append(errs, model.SectionError{
			RunID:     runID,
			Section:   s.ID,
			Code:      string(s.Error.Code),
			Message:   s.Error.Message,
			CreatedAt: now,
		})
	}
	if err := h.store.SaveSectionErrors(ctx, errs); err != nil {
		h.logger.Warn("failed to save section errors", zap.String("run_id", runID), zap.Error(err))
	}
}

// GetChart renders the chart of one section
// @Summary Get section chart
// @Description Render the chart or map of a section as SVG
// @Tags pages
// @Produce image/svg+xml
// @Param page path string true "Page ID"
// @Param section path string true "Section ID"
// @Success 200 {file} file "SVG chart"
// @Failure 404 {object} ErrorResponse "Unknown page or section, or the section draws no chart"
// @Failure 422 {object} ErrorResponse "Section could not be built from the data"
// @Failure 503 {object} ErrorResponse "Source data unavailable"
// @Router /charts/{page}/{section} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	pageID, sectionID := pathParam(r, 3), pathParam(r, 4)
	res, err := h.builder.Section(r.Context(), pageID, sectionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if res.Error != nil {
		h.writeError(w, r, res.Error)
		return
	}
	if !res.HasChart {
		h.writeError(w, r, domainerrors.NotFound(fmt.Sprintf("section %q has no chart", sectionID)))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "max-age=300")
	w.Write(res.Chart)
}

// GetDataset returns the load report of the dataset
// @Summary Get dataset report
// @Description Record count, malformed cells, column resolution and boundary sets of the loaded data
// @Tags dataset
// @Produce json
// @Success 200 {object} DatasetResponse "Load report"
// @Router /dataset [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.builder.Dataset()
	rep := ds.Report()
	resp := DatasetResponse{
		Records:        ds.Len(),
		MissingColumns: rep.MissingColumns(),
		Report:         rep,
	}
	if resp.MissingColumns == nil {
		resp.MissingColumns = []string{}
	}
	if err := ds.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.builder.Dataset().Err() != nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
