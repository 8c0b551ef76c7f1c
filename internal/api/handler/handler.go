// Package handler serves the dashboard pages, section charts, exports and run history.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/pipeline"
	"go-wood-dashboard/internal/report"
	"go-wood-dashboard/pkg/utils"
)

// Store persists runs, section diagnostics and exports.
type Store interface {
	pipeline.AggregateSink
	SaveRun(ctx context.Context, run model.RunRecord) error
	SaveSectionErrors(ctx context.Context, errs []model.SectionError) error
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	RunErrors(ctx context.Context, runID string) ([]model.SectionError, error)
	SaveExport(ctx context.Context, exp model.ExportRecord) error
	GetExport(ctx context.Context, id string) (model.ExportRecord, error)
}

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	builder *report.Builder
	store   Store
	outputs *utils.OutputManager
	logger  *zap.Logger
}

// New creates a handler serving pages built by builder.
func New(builder *report.Builder, store Store, outputs *utils.OutputManager, logger *zap.Logger) *Handler {
	return &Handler{builder: builder, store: store, outputs: outputs, logger: logger}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error *domainerrors.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	derr := domainerrors.From(err)
	if derr.Code == domainerrors.CodeInternal {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		// Internal causes stay in the log.
		derr = domainerrors.Internal(derr.Message)
	}
	writeJSON(w, derr.HTTPStatus(), ErrorResponse{Error: derr})
}

// pathParam returns the path segment at index i after trimming the leading slash,
// e.g. segment 3 of /api/v1/pages/especies is "especies".
func pathParam(r *http.Request, i int) string {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}
