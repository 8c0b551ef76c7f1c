package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/pkg/utils"
)

const maxMalformedSamples = 20

// ------------------- Fetching -------------------

// FetchSource reads a local path or an http(s) URL fully into memory, retrying transient
// failures. Any failure surfaces as UNAVAILABLE.
func FetchSource(ctx context.Context, pathOrURL string, timeout time.Duration, retry model.RetryConfig, logger *zap.Logger) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, retry, logger, pathOrURL, func(ctx context.Context) error {
		var err error
		data, err = fetchOnce(ctx, pathOrURL, timeout)
		return err
	})
	if err != nil {
		return nil, domainerrors.Unavailable(fmt.Sprintf("could not load %s", pathOrURL)).WithCause(err)
	}
	return data, nil
}

func fetchOnce(ctx context.Context, pathOrURL string, timeout time.Duration) ([]byte, error) {
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		data, err := os.ReadFile(pathOrURL)
		if err != nil {
			return nil, permanent(fmt.Errorf("failed to open file: %w", err))
		}
		return data, nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("invalid url: %w", err))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(err)
		}
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

// ------------------- CSV Ingestion -------------------

// headerKey is the form header names are compared in: canonical, with underscores read
// as spaces so "VOLUMEN_M3" and "Volumen m3" resolve to the same column.
func headerKey(s string) string {
	return Canonicalize(strings.ReplaceAll(utils.CleanCell(s), "_", " "))
}

// ResolveColumns matches every logical field of mapping against header.
func ResolveColumns(header []string, mapping model.ColumnMapping) []model.ColumnStatus {
	index := make(map[string]int, len(header))
	for i, h := range header {
		k := headerKey(h)
		if _, dup := index[k]; !dup {
			index[k] = i
		}
	}

	statuses := make([]model.ColumnStatus, 0, len(model.Fields))
	for _, f := range model.Fields {
		configured, ok := mapping[f]
		if !ok {
			configured = model.DefaultColumns()[f]
		}
		st := model.ColumnStatus{Field: f, Configured: configured, Index: -1}
		if i, ok := index[headerKey(configured)]; ok {
			st.Index = i
			st.Present = true
			st.Resolved = utils.CleanCell(header[i])
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// ReadRecords parses a CSV table into records. Columns absent from the header leave the
// field null on every row and are reported in the LoadReport; cells that cannot be coerced
// to their field type are kept as null and counted as malformed. Only an unreadable header
// fails the whole read.
func ReadRecords(data []byte, mapping model.ColumnMapping) ([]model.Record, model.LoadReport, error) {
	report := model.LoadReport{
		NullCounts: make(map[model.Field]int, len(model.Fields)),
		Malformed:  make(map[model.Field]int),
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, report, domainerrors.NoData("dataset is empty")
		}
		return nil, report, domainerrors.Internal("failed to read CSV header").WithCause(err)
	}
	for i := range header {
		header[i] = utils.CleanCell(header[i])
	}
	report.Header = header
	report.Columns = ResolveColumns(header, mapping)

	var records []model.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.SkippedRows++
			continue
		}
		if isBlankRow(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		records = append(records, parseRow(row, line, report.Columns, &report))
	}
	report.Rows = len(records)
	return records, report, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, line int, columns []model.ColumnStatus, report *model.LoadReport) model.Record {
	var rec model.Record
	for _, col := range columns {
		raw := ""
		if col.Present && col.Index < len(row) {
			raw = utils.CleanCell(row[col.Index])
		}
		if raw == "" {
			report.NullCounts[col.Field]++
			continue
		}
		if !assignField(&rec, col.Field, raw) {
			report.Malformed[col.Field]++
			if len(report.Samples) < maxMalformedSamples {
				report.Samples = append(report.Samples, model.MalformedSample{Line: line, Field: col.Field, Value: raw})
			}
		}
	}
	return rec
}

// assignField stores raw into rec, reporting false when raw does not fit the field type.
func assignField(rec *model.Record, f model.Field, raw string) bool {
	switch f {
	case model.FieldYear:
		v, ok := utils.ParseInt(raw)
		if !ok || v <= 0 {
			return false
		}
		rec.Year = v
	case model.FieldSemester:
		v, ok := parsePeriod(raw)
		if !ok || v > 2 {
			return false
		}
		rec.Semester = v
	case model.FieldQuarter:
		v, ok := parsePeriod(raw)
		if !ok || v > 4 {
			return false
		}
		rec.Quarter = v
	case model.FieldDepartment:
		rec.Department = raw
	case model.FieldMunicipality:
		rec.Municipality = raw
	case model.FieldSpecies:
		rec.Species = raw
	case model.FieldProductType:
		rec.ProductType = raw
	case model.FieldSource:
		rec.Source = raw
	case model.FieldVolume:
		v, ok := utils.ParseNumber(raw)
		if !ok {
			return false
		}
		rec.Volume = v
		rec.HasVolume = true
	}
	return true
}

var romanPeriods = map[string]int{"I": 1, "II": 2, "III": 3, "IV": 4}

// parsePeriod reads a semester or quarter written as "2", "2.0" or "II".
func parsePeriod(raw string) (int, bool) {
	if v, ok := utils.ParseInt(raw); ok {
		return v, v > 0
	}
	v, ok := romanPeriods[strings.ToUpper(strings.TrimSpace(raw))]
	return v, ok
}
