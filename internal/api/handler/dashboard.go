package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"go-wood-dashboard/internal/report"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").
	Funcs(template.FuncMap{"cell": formatCell}).
	ParseFS(templateFS, "templates/dashboard.html"))

type dashboardView struct {
	Pages   []report.Page
	Page    report.PageResult
	Records int
}

// Dashboard renders the page named by the page query parameter as HTML, the overview by default.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	pageID := r.URL.Query().Get("page")
	if pageID == "" {
		pageID = report.PageOverview
	}

	res, err := h.builder.Page(r.Context(), pageID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	view := dashboardView{Pages: report.Pages(), Page: res, Records: h.builder.Dataset().Len()}
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	default:
		return fmt.Sprint(x)
	}
}
