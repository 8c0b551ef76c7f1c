package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultRecordsURL, cfg.Data.RecordsURL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Report.TopN)
	assert.Equal(t, string(model.JoinLeft), cfg.Report.JoinMode)
	assert.Equal(t, "VOLUMEN_M3", cfg.ColumnMapping()[model.FieldVolume])
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  records_url: ./testdata/records.csv
  fetch_timeout: 5s
  columns:
    volume: VOLUMEN M3
  boundaries:
    - kind: department
      url: ./testdata/departments.geojson
      name_property: NOMBRE_DPT
server:
  addr: ":9090"
report:
  top_n: 5
  join_mode: inner
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./testdata/records.csv", cfg.Data.RecordsURL)
	assert.Equal(t, 5*time.Second, cfg.Data.FetchTimeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.Equal(t, "inner", cfg.Report.JoinMode)
	require.Len(t, cfg.Data.Boundaries, 1)
	assert.Equal(t, "NOMBRE_DPT", cfg.Data.Boundaries[0].NameProperty)

	mapping := cfg.ColumnMapping()
	assert.Equal(t, "VOLUMEN M3", mapping[model.FieldVolume])
	assert.Equal(t, "ESPECIE", mapping[model.FieldSpecies])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_ADDR", ":7070")
	t.Setenv("DASHBOARD_LOG_LEVEL", "debug")
	t.Setenv("DASHBOARD_EXPORT_DIR", "/tmp/exports")
	t.Setenv("DASHBOARD_FETCH_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/exports", cfg.Export.Dir)
	assert.Equal(t, 5*time.Second, cfg.Data.FetchTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"join mode", "report:\n  join_mode: outer\n", "Config.report.join_mode"},
		{"top n", "report:\n  top_n: 0\n", "Config.report.top_n"},
		{"log level", "logging:\n  level: loud\n", "Config.logging.level"},
		{"boundary kind", "data:\n  boundaries:\n    - kind: region\n      url: x\n      name_property: n\n", "Config.data.boundaries[0].kind"},
		{"unknown column", "data:\n  columns:\n    colour: COLOR\n", "data.columns.colour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

			var derr *domainerrors.Error
			require.True(t, domainerrors.As(err, &derr))
			assert.Contains(t, derr.Details, tt.field)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}
