package model

import (
	"encoding/json"
	"strings"
)

// Reduction is the numeric aggregation applied within a group.
type Reduction string

const (
	ReduceSum          Reduction = "sum"
	ReduceCount        Reduction = "count"
	ReduceCountNonNull Reduction = "count_non_null"
)

// KeySeparator joins the parts of a composite key for display.
const KeySeparator = " / "

// Entry is one group of an AggregationResult.
type Entry struct {
	Key     string   `json:"key"`
	Parts   []string `json:"parts,omitempty"`
	Value   float64  `json:"value"`
	Records int      `json:"records"`
}

// AggregationResult maps group keys to reduced values. Entries keep the order in which
// keys were first seen, which is also the tie-break order for top-N selection.
type AggregationResult struct {
	Label     string
	Reduction Reduction
	entries   []Entry
	index     map[string]int
}

// NewAggregationResult builds a result from entries. Entries sharing a key are merged.
func NewAggregationResult(label string, reduction Reduction, entries []Entry) AggregationResult {
	res := AggregationResult{
		Label:     label,
		Reduction: reduction,
		entries:   make([]Entry, 0, len(entries)),
		index:     make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := res.index[e.Key]; ok {
			res.entries[i].Value += e.Value
			res.entries[i].Records += e.Records
			continue
		}
		if len(e.Parts) > 0 {
			e.Parts = append([]string(nil), e.Parts...)
		}
		res.index[e.Key] = len(res.entries)
		res.entries = append(res.entries, e)
	}
	return res
}

// Len returns the number of distinct keys.
func (r AggregationResult) Len() int { return len(r.entries) }

// Entries returns a copy of the entries in first-seen order.
func (r AggregationResult) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get returns the entry for key.
func (r AggregationResult) Get(key string) (Entry, bool) {
	i, ok := r.index[key]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Keys returns the keys in first-seen order.
func (r AggregationResult) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Total returns the sum of all values.
func (r AggregationResult) Total() float64 {
	var total float64
	for _, e := range r.entries {
		total += e.Value
	}
	return total
}

// Table renders the result as a two-column table.
func (r AggregationResult) Table() Table {
	t := Table{Columns: []string{r.Label, string(r.Reduction)}}
	for _, e := range r.entries {
		t.Rows = append(t.Rows, []any{e.Key, e.Value})
	}
	return t
}

// MarshalJSON implements json.Marshaler.
func (r AggregationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label     string    `json:"label"`
		Reduction Reduction `json:"reduction"`
		Entries   []Entry   `json:"entries"`
	}{r.Label, r.Reduction, r.Entries()})
}

// PivotCell addresses one cell of a PivotTable.
type PivotCell struct {
	Row string
	Col string
}

// PivotTable is a two-key cross tabulation of summed volume. Absent combinations read as 0.
type PivotTable struct {
	RowLabel string
	ColLabel string
	rows     []string
	cols     []string
	cells    map[PivotCell]float64
}

// NewPivotTable builds a pivot over the given row and column keys.
func NewPivotTable(rowLabel, colLabel string, rows, cols []string, cells map[PivotCell]float64) PivotTable {
	p := PivotTable{
		RowLabel: rowLabel,
		ColLabel: colLabel,
		rows:     append([]string(nil), rows...),
		cols:     append([]string(nil), cols...),
		cells:    make(map[PivotCell]float64, len(cells)),
	}
	for k, v := range cells {
		p.cells[k] = v
	}
	return p
}

// Rows returns the row keys.
func (p PivotTable) Rows() []string { return append([]string(nil), p.rows...) }

// Cols returns the column keys.
func (p PivotTable) Cols() []string { return append([]string(nil), p.cols...) }

// Value returns the cell (row, col), 0 when no record matched both keys.
func (p PivotTable) Value(row, col string) float64 {
	return p.cells[PivotCell{Row: row, Col: col}]
}

// Matrix returns a zero-filled rows x cols matrix.
func (p PivotTable) Matrix() [][]float64 {
	m := make([][]float64, len(p.rows))
	for i, r := range p.rows {
		m[i] = make([]float64, len(p.cols))
		for j, c := range p.cols {
			m[i][j] = p.Value(r, c)
		}
	}
	return m
}

// Restrict returns a pivot limited to the given rows and columns, in that order.
// Keys unknown to p become all-zero rows or columns.
func (p PivotTable) Restrict(rows, cols []string) PivotTable {
	cells := make(map[PivotCell]float64)
	for _, r := range rows {
		for _, c := range cols {
			if v, ok := p.cells[PivotCell{Row: r, Col: c}]; ok {
				cells[PivotCell{Row: r, Col: c}] = v
			}
		}
	}
	return NewPivotTable(p.RowLabel, p.ColLabel, rows, cols, cells)
}

// Table renders the pivot with one column per column key.
func (p PivotTable) Table() Table {
	t := Table{Columns: append([]string{p.RowLabel}, p.cols...)}
	for i, row := range p.Matrix() {
		cells := make([]any, 0, len(row)+1)
		cells = append(cells, p.rows[i])
		for _, v := range row {
			cells = append(cells, v)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Table is a rectangular result ready for display or export.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Head returns a copy limited to the first n rows.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// JoinParts builds the display key of a composite key.
func JoinParts(parts []string) string {
	return strings.Join(parts, KeySeparator)
}
