package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-wood-dashboard/internal/config"
	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

func testConfig(t *testing.T, recordsURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.RecordsURL = recordsURL
	cfg.Data.Retry = model.RetryConfig{MaxAttempts: 1}
	return cfg
}

func TestLoadFromFileAndServer(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(departmentsGeoJSON))
	}))
	defer srv.Close()

	cfg := testConfig(t, csvPath)
	cfg.Data.Boundaries = []config.BoundaryConfig{
		{Kind: "department", URL: srv.URL, NameProperty: "NOMBRE_DPT"},
		{Kind: "municipality", URL: filepath.Join(dir, "missing.geojson"), NameProperty: "MPIO_CNMBR"},
	}

	ds, err := Load(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, ds.Err())

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, "ANTIOQUIA", ds.Records()[1].Department, "records are canonicalized")
	assert.Equal(t, "Antioquia", ds.Raw()[1].Department, "raw keeps the source spelling")
	assert.True(t, ds.Has(model.FieldVolume))

	report := ds.Report()
	assert.Equal(t, csvPath, report.SourceURL)
	assert.Equal(t, 2, report.Boundaries["department"])
	assert.Contains(t, report.BoundaryErrors, "municipality")
	assert.Contains(t, report.Stages, "parse")

	depts, err := ds.Boundaries("department")
	require.NoError(t, err)
	assert.Len(t, depts, 2)

	_, err = ds.Boundaries("municipality")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
}

func TestLoadUnavailableStillReturnsDataset(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent.csv"))

	ds, err := Load(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.NotNil(t, ds)

	assert.Equal(t, 0, ds.Len())
	assert.True(t, domainerrors.Is(ds.Err(), domainerrors.ErrUnavailable))
	assert.True(t, domainerrors.Is(ds.Require(model.FieldSpecies), domainerrors.ErrUnavailable))
	assert.NotEmpty(t, ds.Report().Error)
}

func TestDatasetAccessorsReturnCopies(t *testing.T) {
	ds := FromRecords(sampleRecords(), model.GeoEntity{Kind: "department", Name: "CALDAS"})

	recs := ds.Records()
	recs[0].Species = "CHANGED"
	assert.Equal(t, "PINUS", ds.Records()[0].Species)

	b, err := ds.Boundaries("department")
	require.NoError(t, err)
	b[0].Name = "CHANGED"
	b2, _ := ds.Boundaries("department")
	assert.Equal(t, "CALDAS", b2[0].Name)

	assert.NoError(t, ds.Require(model.Fields...))
}
