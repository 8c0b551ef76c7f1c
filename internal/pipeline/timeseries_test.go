package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-wood-dashboard/internal/model"
)

func collect(s Series) []model.SeriesPoint {
	var out []model.SeriesPoint
	for p := range s.Points() {
		out = append(out, p)
	}
	return out
}

func TestTimeSeriesSortedAndGapped(t *testing.T) {
	records := []model.Record{
		rec("A", "X", "PINUS", 2021, 5),
		rec("A", "X", "PINUS", 2019, 1),
		rec("A", "X", "GMELINA", 2020, 2),
		rec("A", "X", "PINUS", 2019, 4),
	}

	s := TimeSeries(records, ByField(model.FieldYear), ByField(model.FieldSpecies), SeriesOptions{})
	assert.Equal(t, []string{"2019", "2020", "2021"}, s.Times)
	assert.Equal(t, []string{"PINUS", "GMELINA"}, s.Categories)

	assert.Equal(t, []model.SeriesPoint{
		{Time: "2019", Category: "PINUS", Value: 5},
		{Time: "2020", Category: "GMELINA", Value: 2},
		{Time: "2021", Category: "PINUS", Value: 5},
	}, collect(s))
}

func TestTimeSeriesZeroFillAndCategories(t *testing.T) {
	records := []model.Record{
		rec("A", "X", "PINUS", 2019, 1),
		rec("A", "X", "GMELINA", 2020, 2),
		rec("A", "X", "ACACIA", 2020, 9),
	}

	s := TimeSeries(records, ByField(model.FieldYear), ByField(model.FieldSpecies), SeriesOptions{
		ZeroFill:   true,
		Categories: []string{"GMELINA", "PINUS"},
	})
	assert.Equal(t, []model.SeriesPoint{
		{Time: "2019", Category: "GMELINA", Value: 0},
		{Time: "2019", Category: "PINUS", Value: 1},
		{Time: "2020", Category: "GMELINA", Value: 2},
		{Time: "2020", Category: "PINUS", Value: 0},
	}, collect(s))

	table := s.Table("year")
	assert.Equal(t, []string{"year", "GMELINA", "PINUS"}, table.Columns)
	assert.Equal(t, []any{"2019", 0.0, 1.0}, table.Rows[0])
}

func TestSeriesPointsSinglePass(t *testing.T) {
	s := TimeSeries([]model.Record{rec("A", "X", "PINUS", 2019, 1)},
		ByField(model.FieldYear), ByField(model.FieldSpecies), SeriesOptions{})

	seq := s.Points()
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestTimeSeriesCompositeTimeKey(t *testing.T) {
	r1 := rec("A", "X", "PINUS", 2020, 1)
	r1.Semester = 2
	r2 := rec("A", "X", "PINUS", 2020, 1)
	r3 := rec("A", "X", "PINUS", 2019, 1)
	r3.Semester = 2

	s := TimeSeries([]model.Record{r1, r2, r3},
		Composite(ByField(model.FieldYear), ByField(model.FieldSemester)),
		ByField(model.FieldSpecies), SeriesOptions{})
	assert.Equal(t, []string{"2019 / 2", "2020 / 1", "2020 / 2"}, s.Times)
}

func TestCompareKeysNumeric(t *testing.T) {
	assert.Negative(t, compareKeys("9", "10"))
	assert.Positive(t, compareKeys("B", "A"))
	assert.Zero(t, compareKeys("2020 / 1", "2020 / 1"))
}
