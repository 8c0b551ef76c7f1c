package pipeline

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/pkg/utils"
)

// Summarize computes the boxplot summary of values. Anything that is not a finite number
// (nil, NaN, infinities, non-numeric strings) is excluded and counted. With no numeric
// value left it returns NO_DATA and a Distribution carrying only the exclusion count.
func Summarize(values []any) (model.Distribution, error) {
	xs := make([]float64, 0, len(values))
	excluded := 0
	for _, v := range values {
		f, ok := utils.Numeric(v)
		if !ok {
			excluded++
			continue
		}
		xs = append(xs, f)
	}
	return summarizeFloats(xs, excluded)
}

func summarizeFloats(xs []float64, excluded int) (model.Distribution, error) {
	d := model.Distribution{Count: len(xs), Excluded: excluded, Outliers: []float64{}}
	if len(xs) == 0 {
		return d, domainerrors.NoData("no numeric values to summarize").
			WithDetails(map[string]any{"excluded": excluded})
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.Q1 = quantile(sorted, 0.25)
	d.Median = quantile(sorted, 0.5)
	d.Q3 = quantile(sorted, 0.75)
	d.IQR = d.Q3 - d.Q1
	d.LowerFence = d.Q1 - 1.5*d.IQR
	d.UpperFence = d.Q3 + 1.5*d.IQR

	d.LowerWhisker, d.UpperWhisker = d.Max, d.Min
	for _, x := range sorted {
		if x < d.LowerFence || x > d.UpperFence {
			d.Outliers = append(d.Outliers, x)
			continue
		}
		d.LowerWhisker = math.Min(d.LowerWhisker, x)
		d.UpperWhisker = math.Max(d.UpperWhisker, x)
	}

	d.Mean, d.StdDev = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 || math.IsNaN(d.StdDev) {
		d.StdDev = 0
	}
	return d, nil
}

// quantile interpolates linearly between the order statistics of sorted, the default
// method of numpy and pandas.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// VolumeValues returns the volume of every record, nil where the volume is null.
func VolumeValues(records []model.Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		if r.HasVolume {
			out[i] = r.Volume
		}
	}
	return out
}

// SummarizeBy computes the volume distribution of each group of key, in first-seen order.
// Null volumes are counted in Excluded. A group whose volumes are all null is kept with
// Count 0 so callers can report it.
func SummarizeBy(records []model.Record, key KeyFunc) []model.GroupDistribution {
	var order []string
	groups := make(map[string][]float64)
	excluded := make(map[string]int)
	for _, r := range records {
		parts, ok := key(r)
		if !ok {
			continue
		}
		k := model.JoinParts(parts)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
			groups[k] = nil
		}
		if r.HasVolume {
			groups[k] = append(groups[k], r.Volume)
		} else {
			excluded[k]++
		}
	}

	out := make([]model.GroupDistribution, 0, len(order))
	for _, k := range order {
		// NO_DATA only means every volume was null; d still carries the counts.
		d, _ := summarizeFloats(groups[k], excluded[k])
		out = append(out, model.GroupDistribution{Key: k, Distribution: d, Values: groups[k]})
	}
	return out
}
