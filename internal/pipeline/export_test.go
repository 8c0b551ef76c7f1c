package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"go-wood-dashboard/internal/model"
)

type memorySink struct {
	id    string
	table model.Table
}

func (m *memorySink) SaveAggregates(_ context.Context, exportID string, table model.Table) (int, error) {
	m.id = exportID
	m.table = table
	return len(table.Rows), nil
}

func exportTable() model.Table {
	return model.Table{
		Columns: []string{"species", "sum"},
		Rows: [][]any{
			{"PINUS", 15.0},
			{"EUCALYPTUS", 3.5},
		},
	}
}

func TestExportCSV(t *testing.T) {
	em := NewExportManager("exp-1", t.TempDir(), nil, zap.NewNop())
	res := em.Export(context.Background(), exportTable(), "especies_top", FormatCSV)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 2, res.RecordCount)

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"species", "sum"}, {"PINUS", "15"}, {"EUCALYPTUS", "3.5"}}, rows)
}

func TestExportJSON(t *testing.T) {
	em := NewExportManager("exp-2", t.TempDir(), nil, zap.NewNop())
	res := em.Export(context.Background(), exportTable(), "especies_top", FormatJSON)
	require.True(t, res.Success, res.Error)

	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var doc struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Data, 2)
	assert.Equal(t, "PINUS", doc.Data[0]["species"])
	assert.Equal(t, 15.0, doc.Data[0]["sum"])
}

func TestExportXLSX(t *testing.T) {
	em := NewExportManager("exp-3", t.TempDir(), nil, zap.NewNop())
	res := em.Export(context.Background(), exportTable(), "especies/top", FormatXLSX)
	require.True(t, res.Success, res.Error)

	f, err := excelize.OpenFile(res.Path)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	v, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "PINUS", v)
	v, err = f.GetCellValue(sheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "sum", v)
}

func TestExportDatabase(t *testing.T) {
	sink := &memorySink{}
	em := NewExportManager("exp-4", t.TempDir(), sink, zap.NewNop())
	res := em.Export(context.Background(), exportTable(), "especies_top", FormatDB)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "exp-4", sink.id)
	assert.Len(t, sink.table.Rows, 2)

	em = NewExportManager("exp-5", t.TempDir(), nil, zap.NewNop())
	res = em.Export(context.Background(), exportTable(), "especies_top", FormatDB)
	assert.False(t, res.Success)
}

func TestExportUnknownFormat(t *testing.T) {
	em := NewExportManager("exp-6", t.TempDir(), nil, zap.NewNop())
	res := em.Export(context.Background(), exportTable(), "x", "parquet")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "parquet")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a_b", sheetName("a/b"))
	assert.Equal(t, "data", sheetName(""))
	assert.Len(t, []rune(sheetName("departamentos_especies_heatmap_top_10")), 31)
}
