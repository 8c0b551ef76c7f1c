package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/pipeline"
)

var validate = newValidator()

// newValidator reports fields by their JSON names, as the client sent them.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ExportRequest selects the section table to export.
type ExportRequest struct {
	Page    string `json:"page" validate:"required"`
	Section string `json:"section" validate:"required"`
	Format  string `json:"format" validate:"required,oneof=csv json xlsx db"`
	RunID   string `json:"run_id,omitempty"`
}

// ExportResponse is the stored export and where to fetch it.
type ExportResponse struct {
	Export      model.ExportRecord `json:"export"`
	DownloadURL string             `json:"download_url,omitempty"`
}

// CreateExport exports the table of a section
// @Summary Export a section table
// @Description Write the table of a report section as csv, json, xlsx, or into the aggregates table (db)
// @Tags exports
// @Accept json
// @Produce json
// @Param export body ExportRequest true "Section and format"
// @Success 201 {object} ExportResponse "Export created"
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 404 {object} ErrorResponse "Unknown page or section"
// @Failure 422 {object} ErrorResponse "Section could not be built from the data"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /exports [post]
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domainerrors.Validation("invalid JSON payload"))
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeError(w, r, validationError(err))
		return
	}

	ctx := r.Context()
	section, err := h.builder.Section(ctx, req.Page, req.Section)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if section.Error != nil {
		h.writeError(w, r, section.Error)
		return
	}
	if section.Table == nil {
		h.writeError(w, r, domainerrors.Validation(fmt.Sprintf("section %q has no table to export", req.Section)))
		return
	}

	exportID := uuid.New().String()
	var dir string
	if req.Format != pipeline.FormatDB {
		if dir, err = h.outputs.CreateOutputDir(exportID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	name := req.Page + "_" + req.Section
	result := pipeline.NewExportManager(exportID, dir, h.store, h.logger).Export(ctx, *section.Table, name, req.Format)
	if !result.Success {
		h.writeError(w, r, domainerrors.Internal("export failed: "+result.Error))
		return
	}

	exp := model.ExportRecord{
		ID:        exportID,
		RunID:     req.RunID,
		Page:      req.Page,
		Section:   req.Section,
		Format:    req.Format,
		Path:      result.Path,
		Rows:      result.RecordCount,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveExport(ctx, exp); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.exportResponse(exp))
}

// GetExport returns export metadata
// @Summary Get export
// @Description Retrieve the metadata and download URL of an export
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} ExportResponse "Export details"
// @Failure 404 {object} ErrorResponse "Export not found"
// @Router /exports/{id} [get]
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	exp, err := h.store.GetExport(r.Context(), pathParam(r, 3))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.exportResponse(exp))
}

// DownloadFile serves an exported file
// @Summary Download export file
// @Description Download a file written by an export
// @Tags exports
// @Produce octet-stream
// @Param id path string true "Export ID"
// @Param file path string true "File name"
// @Success 200 {file} file "Exported file"
// @Failure 404 {object} ErrorResponse "File not found"
// @Router /download/{id}/{file} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, file := pathParam(r, 3), pathParam(r, 4)
	path, err := h.outputs.ResolveFile(id, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.writeError(w, r, domainerrors.NotFound(fmt.Sprintf("file %s not found", file)))
			return
		}
		h.writeError(w, r, domainerrors.Validation(err.Error()))
		return
	}

	w.Header().Set("Content-Type", h.outputs.ContentType(file))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	http.ServeFile(w, r, path)
}

func (h *Handler) exportResponse(exp model.ExportRecord) ExportResponse {
	resp := ExportResponse{Export: exp}
	if exp.Format != pipeline.FormatDB {
		resp.DownloadURL = h.outputs.GetDownloadURL(exp.ID, filepath.Base(exp.Path))
	}
	return resp
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domainerrors.Validation(err.Error())
	}
	details := make(map[string]string, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			details[e.Field()] = "is required"
		case "oneof":
			details[e.Field()] = "must be one of: " + e.Param()
		default:
			details[e.Field()] = "failed " + e.Tag()
		}
	}
	return domainerrors.ValidationWithDetails("invalid export request", details)
}
