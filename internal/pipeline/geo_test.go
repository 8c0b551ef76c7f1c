package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	domainerrors "go-wood-dashboard/internal/errors"
)

const departmentsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": 5,
      "properties": {"NOMBRE_DPT": "ANTIOQUIA", "DPTO": "05"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,2],[0,2],[0,0]]]}
    },
    {
      "type": "Feature",
      "id": "50",
      "properties": {"NOMBRE_DPT": "META"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[10,10],[12,10],[12,12],[10,12],[10,10]]]]}
    },
    {
      "type": "Feature",
      "properties": {"NOMBRE_DPT": "SIN GEOMETRIA"},
      "geometry": null
    },
    {
      "type": "Feature",
      "properties": {"OTRO": "x"},
      "geometry": {"type": "Point", "coordinates": [1, 1]}
    }
  ]
}`

const municipalitiesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"MPIO_CNMBR": "YARUMAL", "DPTO_CNMBR": "ANTIOQUIA"},
      "geometry": {"type": "Point", "coordinates": [-75.41, 7.0]}
    }
  ]
}`

func TestParseBoundaries(t *testing.T) {
	entities, err := ParseBoundaries([]byte(departmentsGeoJSON), BoundarySpec{Kind: "department", NameProperty: "NOMBRE_DPT"})
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, "ANTIOQUIA", entities[0].Name)
	assert.Equal(t, "5", entities[0].ID)
	assert.Equal(t, "department", entities[0].Kind)
	assert.IsType(t, &geom.Polygon{}, entities[0].Geometry)
	assert.InDelta(t, 2.0, entities[0].Centroid[0], 1e-9)
	assert.InDelta(t, 1.0, entities[0].Centroid[1], 1e-9)

	assert.Equal(t, "META", entities[1].Name)
	assert.IsType(t, &geom.MultiPolygon{}, entities[1].Geometry)
	assert.InDelta(t, 11.0, entities[1].Centroid[0], 1e-9)
}

func TestParseBoundariesPointsWithParent(t *testing.T) {
	entities, err := ParseBoundaries([]byte(municipalitiesGeoJSON), BoundarySpec{
		Kind:           "municipality",
		NameProperty:   "MPIO_CNMBR",
		ParentProperty: "DPTO_CNMBR",
	})
	require.NoError(t, err)
	require.Len(t, entities, 1)

	assert.Equal(t, "ANTIOQUIA", entities[0].Parent)
	assert.Equal(t, [2]float64{-75.41, 7.0}, entities[0].Centroid)
}

func TestParseBoundariesErrors(t *testing.T) {
	_, err := ParseBoundaries([]byte("not json"), BoundarySpec{Kind: "department", NameProperty: "N"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = ParseBoundaries([]byte(`{"type":"Feature"}`), BoundarySpec{Kind: "department", NameProperty: "N"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = ParseBoundaries([]byte(departmentsGeoJSON), BoundarySpec{Kind: "department", NameProperty: "MISSING"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNoData))
}
