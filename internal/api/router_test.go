package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-wood-dashboard/internal/api/handler"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/pipeline"
	"go-wood-dashboard/internal/report"
	"go-wood-dashboard/internal/store"
	"go-wood-dashboard/pkg/router"
	"go-wood-dashboard/pkg/utils"
)

func TestRegisterRoutes(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ds := pipeline.FromRecords([]model.Record{
		{Year: 2020, Semester: 1, Quarter: 1, Department: "Caldas", Municipality: "Manizales",
			Species: "Pinus patula", ProductType: "ROLLIZA", Source: "PLANTACION", Volume: 5, HasVolume: true},
	})
	h := handler.New(report.NewBuilder(ds, report.Options{}, zap.NewNop()), s,
		utils.NewOutputManager(filepath.Join(dir, "outputs")), zap.NewNop())

	r := router.New(zap.NewNop())
	RegisterRoutes(r, h)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/dataset", http.StatusOK},
		{http.MethodGet, "/api/v1/pages", http.StatusOK},
		{http.MethodGet, "/api/v1/pages/especies", http.StatusOK},
		{http.MethodGet, "/api/v1/charts/especies/top_nacional", http.StatusOK},
		{http.MethodGet, "/api/v1/exports/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/runs", http.StatusOK},
		{http.MethodGet, "/api/v1/runs/unknown/errors", http.StatusNotFound},
		{http.MethodGet, "/swagger/doc.json", http.StatusOK},
		{http.MethodDelete, "/api/v1/pages", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
