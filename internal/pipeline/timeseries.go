package pipeline

import (
	"iter"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"go-wood-dashboard/internal/model"
)

// SeriesOptions controls TimeSeries.
type SeriesOptions struct {
	// ZeroFill emits 0 for (time, category) pairs with no records instead of leaving a gap.
	ZeroFill bool
	// Categories restricts and orders the categories. Empty means all, first-seen order.
	Categories []string
}

// Series is summed volume by time key and category.
type Series struct {
	Times      []string
	Categories []string
	zeroFill   bool
	cells      map[model.PivotCell]float64
}

// TimeSeries sums volume per (time, category). Times are sorted chronologically, comparing
// each key part numerically when it is a number.
func TimeSeries(records []model.Record, timeKey, categoryKey KeyFunc, opts SeriesOptions) Series {
	s := Series{zeroFill: opts.ZeroFill, cells: make(map[model.PivotCell]float64)}

	allowed := make(map[string]bool, len(opts.Categories))
	for _, c := range opts.Categories {
		if !allowed[c] {
			allowed[c] = true
			s.Categories = append(s.Categories, c)
		}
	}
	restrict := len(allowed) > 0

	seenTime := make(map[string]bool)
	seenCat := make(map[string]bool)
	for _, r := range records {
		tp, ok := timeKey(r)
		if !ok {
			continue
		}
		cp, ok := categoryKey(r)
		if !ok {
			continue
		}
		t, c := model.JoinParts(tp), model.JoinParts(cp)
		if restrict && !allowed[c] {
			continue
		}
		if !seenTime[t] {
			seenTime[t] = true
			s.Times = append(s.Times, t)
		}
		if !restrict && !seenCat[c] {
			seenCat[c] = true
			s.Categories = append(s.Categories, c)
		}
		s.cells[model.PivotCell{Row: t, Col: c}] += reduce(r, model.ReduceSum)
	}

	sort.SliceStable(s.Times, func(i, j int) bool { return compareKeys(s.Times[i], s.Times[j]) < 0 })
	return s
}

// Value returns the cell at (time, category) and whether any record contributed to it.
func (s Series) Value(time, category string) (float64, bool) {
	v, ok := s.cells[model.PivotCell{Row: time, Col: category}]
	return v, ok
}

// Points yields (time, category, value) triples ordered by time, then category. The
// returned sequence can be ranged over once; later ranges yield nothing.
func (s Series) Points() iter.Seq[model.SeriesPoint] {
	var used atomic.Bool
	return func(yield func(model.SeriesPoint) bool) {
		if used.Swap(true) {
			return
		}
		for _, t := range s.Times {
			for _, c := range s.Categories {
				v, ok := s.Value(t, c)
				if !ok && !s.zeroFill {
					continue
				}
				if !yield(model.SeriesPoint{Time: t, Category: c, Value: v}) {
					return
				}
			}
		}
	}
}

// Table renders the series with one column per category. Gaps are left nil.
func (s Series) Table(timeLabel string) model.Table {
	t := model.Table{Columns: append([]string{timeLabel}, s.Categories...)}
	for _, tm := range s.Times {
		row := make([]any, 0, len(s.Categories)+1)
		row = append(row, tm)
		for _, c := range s.Categories {
			v, ok := s.Value(tm, c)
			if !ok && !s.zeroFill {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// compareKeys orders composite keys part by part, numerically where both parts are numbers.
func compareKeys(a, b string) int {
	pa := strings.Split(a, model.KeySeparator)
	pb := strings.Split(b, model.KeySeparator)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, errA := strconv.ParseFloat(pa[i], 64)
		nb, errB := strconv.ParseFloat(pb[i], 64)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case pa[i] != pb[i]:
			return strings.Compare(pa[i], pb[i])
		}
	}
	return len(pa) - len(pb)
}
