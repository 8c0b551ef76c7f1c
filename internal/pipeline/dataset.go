package pipeline

import (
	"fmt"
	"slices"
	"time"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

// Dataset is the loaded records table plus boundary sets. It is built once and never
// modified; every accessor returns copies.
type Dataset struct {
	raw        []model.Record
	records    []model.Record
	boundaries map[string][]model.GeoEntity
	report     model.LoadReport
	err        error
}

// NewDataset assembles a dataset from parsed records. Categorical fields are canonicalized
// into a separate copy; raw keeps the source spelling for previews. err is the load
// failure, if any, returned by Err and by every Require.
func NewDataset(raw []model.Record, report model.LoadReport, boundaries map[string][]model.GeoEntity, err error) *Dataset {
	b := make(map[string][]model.GeoEntity, len(boundaries))
	for k, v := range boundaries {
		b[k] = slices.Clone(v)
	}
	if report.Boundaries == nil {
		report.Boundaries = make(map[string]int, len(b))
		for k, v := range b {
			report.Boundaries[k] = len(v)
		}
	}
	if err != nil && report.Error == "" {
		report.Error = err.Error()
	}
	return &Dataset{
		raw:        slices.Clone(raw),
		records:    CanonicalizeRecords(raw),
		boundaries: b,
		report:     report,
		err:        err,
	}
}

// FromRecords builds a dataset in which every column is present, grouping entities by Kind.
func FromRecords(records []model.Record, entities ...model.GeoEntity) *Dataset {
	report := model.LoadReport{
		SourceURL:  "memory",
		LoadedAt:   time.Now(),
		Rows:       len(records),
		NullCounts: make(map[model.Field]int),
		Malformed:  make(map[model.Field]int),
	}
	for i, f := range model.Fields {
		name := model.DefaultColumns()[f]
		report.Header = append(report.Header, name)
		report.Columns = append(report.Columns, model.ColumnStatus{
			Field: f, Configured: name, Resolved: name, Index: i, Present: true,
		})
	}
	for _, r := range records {
		for _, f := range model.Fields {
			if r.Text(f) == "" {
				report.NullCounts[f]++
			}
		}
	}

	boundaries := make(map[string][]model.GeoEntity)
	for _, e := range entities {
		boundaries[e.Kind] = append(boundaries[e.Kind], e)
	}
	return NewDataset(records, report, boundaries, nil)
}

// Records returns the canonicalized records.
func (d *Dataset) Records() []model.Record { return slices.Clone(d.records) }

// Raw returns the records as read from the source.
func (d *Dataset) Raw() []model.Record { return slices.Clone(d.raw) }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Report returns the load report.
func (d *Dataset) Report() model.LoadReport { return d.report }

// Err returns the load failure, nil when the records table loaded.
func (d *Dataset) Err() error { return d.err }

// Has reports whether field resolved to a source column.
func (d *Dataset) Has(f model.Field) bool {
	for _, c := range d.report.Columns {
		if c.Field == f {
			return c.Present
		}
	}
	return false
}

// Require fails with the load error, or with MISSING_COLUMN when any of fields is absent.
func (d *Dataset) Require(fields ...model.Field) error {
	if d.err != nil {
		return d.err
	}
	return RequireColumns(d.report.Columns, fields...)
}

// Boundaries returns the entities of kind, UNAVAILABLE when that set failed to load.
func (d *Dataset) Boundaries(kind string) ([]model.GeoEntity, error) {
	if b, ok := d.boundaries[kind]; ok && len(b) > 0 {
		return slices.Clone(b), nil
	}
	if msg, ok := d.report.BoundaryErrors[kind]; ok {
		return nil, domainerrors.Unavailable(fmt.Sprintf("%s boundaries could not be loaded: %s", kind, msg))
	}
	return nil, domainerrors.Unavailable(fmt.Sprintf("no %s boundaries configured", kind))
}
