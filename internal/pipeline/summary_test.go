package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

func TestSummarizeFlagsOutlier(t *testing.T) {
	d, err := Summarize([]any{1, 2, 3, 4, 100})
	require.NoError(t, err)

	assert.Equal(t, 5, d.Count)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 2.0, d.Q1)
	assert.Equal(t, 3.0, d.Median)
	assert.Equal(t, 4.0, d.Q3)
	assert.Equal(t, 100.0, d.Max)
	assert.Equal(t, 2.0, d.IQR)
	assert.Equal(t, 7.0, d.UpperFence)
	assert.Equal(t, -1.0, d.LowerFence)
	assert.Equal(t, []float64{100}, d.Outliers)
	assert.Equal(t, 4.0, d.UpperWhisker)
	assert.Equal(t, 1.0, d.LowerWhisker)
	assert.InDelta(t, 22.0, d.Mean, 1e-9)
}

func TestSummarizeLinearInterpolation(t *testing.T) {
	d, err := Summarize([]any{1.0, 2.0, 3.0, 4.0})
	require.NoError(t, err)

	assert.InDelta(t, 1.75, d.Q1, 1e-9)
	assert.InDelta(t, 2.5, d.Median, 1e-9)
	assert.InDelta(t, 3.25, d.Q3, 1e-9)
	assert.InDelta(t, 1.2909944, d.StdDev, 1e-6)
	assert.Empty(t, d.Outliers)
}

func TestSummarizeExcludesNonNumeric(t *testing.T) {
	d, err := Summarize([]any{nil, "abc", math.NaN(), math.Inf(1), "5", 7})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Count)
	assert.Equal(t, 4, d.Excluded)
	assert.Equal(t, 5.0, d.Min)
	assert.Equal(t, 7.0, d.Max)
}

func TestSummarizeNoData(t *testing.T) {
	d, err := Summarize([]any{nil, "x"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoData))
	assert.Equal(t, 2, d.Excluded)
	assert.Equal(t, 0, d.Count)

	_, err = Summarize(nil)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoData))
}

func TestSummarizeSingleValue(t *testing.T) {
	d, err := Summarize([]any{42})
	require.NoError(t, err)
	assert.Equal(t, 42.0, d.Median)
	assert.Equal(t, 0.0, d.StdDev)
	assert.Equal(t, 42.0, d.UpperWhisker)
}

func TestSummarizeBy(t *testing.T) {
	records := sampleRecords()
	records = append(records, model.Record{Department: "VICHADA"})

	groups := SummarizeBy(records, ByField(model.FieldDepartment))
	require.Len(t, groups, 4)

	assert.Equal(t, "ANTIOQUIA", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 6.5, groups[0].Median)
	assert.Equal(t, []float64{10, 3}, groups[0].Values)

	vichada := groups[3]
	assert.Equal(t, "VICHADA", vichada.Key)
	assert.Equal(t, 0, vichada.Count)
	assert.Equal(t, 1, vichada.Excluded)
	assert.Empty(t, vichada.Values)
}

func TestSummarizeByCountsNullVolumes(t *testing.T) {
	vol := func(dept string, v float64) model.Record {
		return model.Record{Department: dept, Volume: v, HasVolume: true}
	}
	records := []model.Record{
		vol("META", 1),
		{Department: "META"},
		{Department: "META"},
		vol("META", 3),
		{Department: "CAUCA"},
	}

	groups := SummarizeBy(records, ByField(model.FieldDepartment))
	require.Len(t, groups, 2)

	assert.Equal(t, "META", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 2, groups[0].Excluded)
	assert.Equal(t, 2.0, groups[0].Median)

	assert.Equal(t, "CAUCA", groups[1].Key)
	assert.Equal(t, 0, groups[1].Count)
	assert.Equal(t, 1, groups[1].Excluded)
}

func TestVolumeValues(t *testing.T) {
	vals := VolumeValues([]model.Record{{Volume: 2, HasVolume: true}, {}})
	assert.Equal(t, []any{2.0, nil}, vals)
}
