package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatDB   = "db"
)

// Formats lists the supported export formats.
var Formats = []string{FormatCSV, FormatJSON, FormatXLSX, FormatDB}

// AggregateSink persists table rows for the db export format.
type AggregateSink interface {
	SaveAggregates(ctx context.Context, exportID string, table model.Table) (int, error)
}

// ExportManager writes section tables to files or to the store.
type ExportManager struct {
	ID     string
	Dir    string
	Sink   AggregateSink
	logger *zap.Logger
}

// NewExportManager creates a manager writing files for export id under dir.
func NewExportManager(id, dir string, sink AggregateSink, logger *zap.Logger) *ExportManager {
	return &ExportManager{ID: id, Dir: dir, Sink: sink, logger: logger}
}

// FileName returns the file written for name in format; the db format writes no file.
func FileName(name, format string) string {
	if format == FormatDB {
		return ""
	}
	return strings.ReplaceAll(name, string(filepath.Separator), "_") + "." + format
}

// Export writes table in format. name is the base file name without extension.
func (em *ExportManager) Export(ctx context.Context, table model.Table, name, format string) model.ExportResult {
	result := model.ExportResult{ID: em.ID, Type: format, Timestamp: time.Now()}

	var err error
	switch format {
	case FormatCSV:
		result.Path = filepath.Join(em.Dir, FileName(name, format))
		result.RecordCount, err = em.exportToCSV(table, result.Path)
	case FormatJSON:
		result.Path = filepath.Join(em.Dir, FileName(name, format))
		result.RecordCount, err = em.exportToJSON(table, result.Path)
	case FormatXLSX:
		result.Path = filepath.Join(em.Dir, FileName(name, format))
		result.RecordCount, err = em.exportToXLSX(table, result.Path, name)
	case FormatDB:
		result.Path = "aggregates"
		result.RecordCount, err = em.exportToDatabase(ctx, table)
	default:
		err = domainerrors.Validation(fmt.Sprintf("unsupported export format %q", format))
	}

	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		em.logger.Error("export failed", zap.String("export_id", em.ID), zap.String("format", format), zap.Error(err))
		return result
	}
	em.logger.Info("export completed",
		zap.String("export_id", em.ID),
		zap.String("format", format),
		zap.String("path", result.Path),
		zap.Int("rows", result.RecordCount))
	return result
}

func (em *ExportManager) create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

func (em *ExportManager) exportToCSV(table model.Table, path string) (int, error) {
	file, err := em.create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range table.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		if err := writer.Write(cells); err != nil {
			return i, fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(table.Rows), nil
}

func (em *ExportManager) exportToJSON(table model.Table, path string) (int, error) {
	file, err := em.create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	rows := make([]map[string]any, len(table.Rows))
	for i, row := range table.Rows {
		obj := make(map[string]any, len(table.Columns))
		for j, col := range table.Columns {
			if j < len(row) {
				obj[col] = row[j]
			}
		}
		rows[i] = obj
	}

	exportData := map[string]any{
		"export_info": map[string]any{
			"export_id":    em.ID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(rows),
			"columns":      table.Columns,
		},
		"data": rows,
	}
	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(rows), nil
}

func (em *ExportManager) exportToXLSX(table model.Table, path, name string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	for j, col := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return 0, err
		}
	}
	for i, row := range table.Rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return i, err
			}
		}
	}
	if len(table.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(table.Columns))
		if err := f.SetColWidth(sheet, "A", last, 22); err != nil {
			return 0, err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save workbook: %w", err)
	}
	return len(table.Rows), nil
}

func (em *ExportManager) exportToDatabase(ctx context.Context, table model.Table) (int, error) {
	if em.Sink == nil {
		return 0, domainerrors.Unavailable("no store configured for database export")
	}
	return em.Sink.SaveAggregates(ctx, em.ID, table)
}

// sheetName trims name to the 31 characters a worksheet name allows, without []:*?/\.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		return "data"
	}
	return name
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
