package pipeline

import (
	"sort"

	"go-wood-dashboard/internal/model"
)

// DefaultTopN is used when a caller asks for n <= 0 entries.
const DefaultTopN = 10

// KeyFunc extracts the group key parts of a record. ok is false when any part is null,
// in which case the record is not grouped.
type KeyFunc func(r model.Record) (parts []string, ok bool)

// ByField groups on one categorical field.
func ByField(f model.Field) KeyFunc {
	return func(r model.Record) ([]string, bool) {
		v := r.Text(f)
		if v == "" {
			return nil, false
		}
		return []string{v}, true
	}
}

// Composite groups on the concatenation of several keys.
func Composite(keys ...KeyFunc) KeyFunc {
	return func(r model.Record) ([]string, bool) {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			p, ok := k(r)
			if !ok {
				return nil, false
			}
			parts = append(parts, p...)
		}
		return parts, true
	}
}

// Aggregate groups records by key and reduces each group. Entries appear in the order
// their key was first seen. Empty input yields an empty result.
func Aggregate(records []model.Record, key KeyFunc, reduction model.Reduction) model.AggregationResult {
	var entries []model.Entry
	index := make(map[string]int)

	for _, r := range records {
		parts, ok := key(r)
		if !ok {
			continue
		}
		k := model.JoinParts(parts)
		i, seen := index[k]
		if !seen {
			i = len(entries)
			index[k] = i
			entries = append(entries, model.Entry{Key: k, Parts: parts})
		}
		entries[i].Records++
		entries[i].Value += reduce(r, reduction)
	}
	return model.NewAggregationResult("key", reduction, entries)
}

func reduce(r model.Record, reduction model.Reduction) float64 {
	switch reduction {
	case model.ReduceCount:
		return 1
	case model.ReduceCountNonNull:
		if r.HasVolume {
			return 1
		}
		return 0
	default:
		if r.HasVolume {
			return r.Volume
		}
		return 0
	}
}

// TopN returns the n entries with the largest values, descending. Ties keep first-seen order.
func TopN(result model.AggregationResult, n int) model.AggregationResult {
	return ranked(result, n, func(a, b float64) bool { return a > b })
}

// BottomN returns the n entries with the smallest values, ascending. Ties keep first-seen order.
func BottomN(result model.AggregationResult, n int) model.AggregationResult {
	return ranked(result, n, func(a, b float64) bool { return a < b })
}

func ranked(result model.AggregationResult, n int, less func(a, b float64) bool) model.AggregationResult {
	if n <= 0 {
		n = DefaultTopN
	}
	entries := result.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i].Value, entries[j].Value)
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return model.NewAggregationResult(result.Label, result.Reduction, entries)
}

// Pivot cross-tabulates the summed volume of records by rowKey and colKey. Rows and
// columns appear in first-seen order; absent combinations read as 0.
func Pivot(records []model.Record, rowKey, colKey KeyFunc) model.PivotTable {
	var rows, cols []string
	seenRow := make(map[string]bool)
	seenCol := make(map[string]bool)
	cells := make(map[model.PivotCell]float64)

	for _, r := range records {
		rp, ok := rowKey(r)
		if !ok {
			continue
		}
		cp, ok := colKey(r)
		if !ok {
			continue
		}
		row, col := model.JoinParts(rp), model.JoinParts(cp)
		if !seenRow[row] {
			seenRow[row] = true
			rows = append(rows, row)
		}
		if !seenCol[col] {
			seenCol[col] = true
			cols = append(cols, col)
		}
		cells[model.PivotCell{Row: row, Col: col}] += reduce(r, model.ReduceSum)
	}
	return model.NewPivotTable("row", "col", rows, cols, cells)
}

// Labelled returns result with its key column renamed.
func Labelled(result model.AggregationResult, label string) model.AggregationResult {
	result.Label = label
	return result
}
