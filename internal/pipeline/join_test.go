package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

func dept(name string) model.GeoEntity {
	return model.GeoEntity{Kind: "department", Name: name}
}

func valuesByName(r model.JoinedGeoResult) map[string]float64 {
	out := make(map[string]float64, len(r.Entities))
	for _, e := range r.Entities {
		out[e.Name] = e.Value
	}
	return out
}

func TestJoinInnerAndLeft(t *testing.T) {
	res := model.NewAggregationResult("department", model.ReduceSum, []model.Entry{
		{Key: "BOGOTA", Value: 100},
	})
	entities := []model.GeoEntity{dept("BOGOTA"), dept("META")}

	inner, report := Join(res, entities, JoinOptions{Mode: model.JoinInner})
	assert.Equal(t, map[string]float64{"BOGOTA": 100}, valuesByName(inner))
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, []string{"META"}, report.UnmatchedEntities)
	assert.Empty(t, report.UnmatchedKeys)

	left, _ := Join(res, entities, JoinOptions{Mode: model.JoinLeft})
	assert.Equal(t, map[string]float64{"BOGOTA": 100, "META": 0}, valuesByName(left))
	require.Len(t, left.Entities, 2)
	assert.False(t, left.Entities[1].Matched)
}

func TestJoinDefaultsToLeft(t *testing.T) {
	res := model.NewAggregationResult("department", model.ReduceSum, nil)
	joined, _ := Join(res, []model.GeoEntity{dept("META")}, JoinOptions{})
	assert.Equal(t, model.JoinLeft, joined.Mode)
	assert.Len(t, joined.Entities, 1)
}

func TestJoinCanonicalizesBothSides(t *testing.T) {
	res := model.NewAggregationResult("department", model.ReduceSum, []model.Entry{
		{Key: "Bogotá", Value: 60},
		{Key: "BOGOTA ", Value: 40},
		{Key: "Atlántico", Value: 5},
	})
	entities := []model.GeoEntity{dept("BOGOTA"), dept("atlantico")}

	joined, report := Join(res, entities, JoinOptions{Mode: model.JoinInner})
	assert.Equal(t, map[string]float64{"BOGOTA": 100, "atlantico": 5}, valuesByName(joined))
	assert.Equal(t, 1, report.MergedKeys)
	assert.NoError(t, report.Err())
}

func TestJoinReportsMismatch(t *testing.T) {
	res := model.NewAggregationResult("department", model.ReduceSum, []model.Entry{
		{Key: "BOGOTA D.C.", Value: 100},
		{Key: "CALDAS", Value: 8},
	})
	entities := []model.GeoEntity{dept("SANTAFE DE BOGOTA D.C"), dept("CALDAS")}

	_, report := Join(res, entities, JoinOptions{Mode: model.JoinLeft})
	assert.Equal(t, []string{"BOGOTA D.C."}, report.UnmatchedKeys)
	assert.Equal(t, []string{"SANTAFE DE BOGOTA D.C"}, report.UnmatchedEntities)

	err := report.Err()
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrJoinMismatch))
}

func TestJoinWithParentKeepsHomonymsApart(t *testing.T) {
	records := []model.Record{
		{Department: "ANTIOQUIA", Municipality: "ARGELIA", Volume: 4, HasVolume: true},
		{Department: "CAUCA", Municipality: "ARGELIA", Volume: 9, HasVolume: true},
	}
	res := Aggregate(records, Composite(ByField(model.FieldDepartment), ByField(model.FieldMunicipality)), model.ReduceSum)
	entities := []model.GeoEntity{
		{Kind: "municipality", Name: "Argelia", Parent: "Antioquia"},
		{Kind: "municipality", Name: "Argelia", Parent: "Cauca"},
		{Kind: "municipality", Name: "Argelia", Parent: "Valle del Cauca"},
	}

	joined, report := Join(res, entities, JoinOptions{Mode: model.JoinInner, UseParent: true})
	require.Len(t, joined.Entities, 2)
	assert.Equal(t, 4.0, joined.Entities[0].Value)
	assert.Equal(t, 9.0, joined.Entities[1].Value)
	assert.Equal(t, []string{"VALLE DEL CAUCA / ARGELIA"}, report.UnmatchedEntities)
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Bogotá   d.c. ", "BOGOTA D.C."},
		{"Nariño", "NARINO"},
		{"SAN JOSÉ DEL GUAVIARE", "SAN JOSE DEL GUAVIARE"},
		{"pinus\tpatula", "PINUS PATULA"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), tt.in)
	}
}

func TestCanonicalizeRecordsIsPure(t *testing.T) {
	in := []model.Record{{Department: "Bogotá", Species: "pinus patula", Volume: 1, HasVolume: true}}
	out := CanonicalizeRecords(in)

	assert.Equal(t, "Bogotá", in[0].Department)
	assert.Equal(t, "BOGOTA", out[0].Department)
	assert.Equal(t, "PINUS PATULA", out[0].Species)
	assert.Equal(t, 1.0, out[0].Volume)
}

func TestJoinWithParentFallsBackToNameForParentlessEntities(t *testing.T) {
	records := []model.Record{
		{Department: "AMAZONAS", Municipality: "LETICIA", Volume: 6, HasVolume: true},
		{Department: "ANTIOQUIA", Municipality: "YARUMAL", Volume: 2, HasVolume: true},
	}
	res := Aggregate(records, Composite(ByField(model.FieldDepartment), ByField(model.FieldMunicipality)), model.ReduceSum)
	entities := []model.GeoEntity{
		{Kind: "municipality", Name: "Leticia"},
		{Kind: "municipality", Name: "Yarumal", Parent: "Antioquia"},
		{Kind: "municipality", Name: "Mitú"},
	}

	joined, report := Join(res, entities, JoinOptions{Mode: model.JoinLeft, UseParent: true})
	require.Len(t, joined.Entities, 3)
	assert.Equal(t, 6.0, joined.Entities[0].Value)
	assert.True(t, joined.Entities[0].Matched)
	assert.Equal(t, 2.0, joined.Entities[1].Value)
	assert.False(t, joined.Entities[2].Matched)

	assert.Equal(t, 2, report.Matched)
	assert.Empty(t, report.UnmatchedKeys)
	assert.Equal(t, []string{"MITU"}, report.UnmatchedEntities)
}
