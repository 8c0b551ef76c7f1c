package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

// BoundarySpec describes how to read one FeatureCollection.
type BoundarySpec struct {
	Kind           string
	NameProperty   string
	ParentProperty string
}

// Features are decoded loosely so numeric or string ids both work; geometries go
// through go-geom.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	ID         any             `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// ParseBoundaries decodes a GeoJSON FeatureCollection of Polygon, MultiPolygon or Point
// features into entities. Features without geometry or without a name are skipped; a
// collection yielding no entity at all is NO_DATA.
func ParseBoundaries(data []byte, spec BoundarySpec) ([]model.GeoEntity, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, domainerrors.Validation("invalid GeoJSON").WithCause(err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, domainerrors.Validation(fmt.Sprintf("expected a FeatureCollection, got %s", fc.Type))
	}

	entities := make([]model.GeoEntity, 0, len(fc.Features))
	for _, f := range fc.Features {
		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			continue
		}
		name := propertyString(f.Properties, spec.NameProperty)
		if name == "" {
			continue
		}

		var g geom.T
		if err := geojson.Unmarshal(f.Geometry, &g); err != nil {
			return nil, domainerrors.Validation(fmt.Sprintf("invalid geometry for %s", name)).WithCause(err)
		}
		switch g.(type) {
		case *geom.Polygon, *geom.MultiPolygon, *geom.Point:
		default:
			continue
		}

		entities = append(entities, model.GeoEntity{
			ID:       idString(f.ID),
			Kind:     spec.Kind,
			Name:     name,
			Parent:   propertyString(f.Properties, spec.ParentProperty),
			Centroid: centroid(g),
			Geometry: g,
		})
	}

	if len(entities) == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("no %s features with property %q", spec.Kind, spec.NameProperty))
	}
	return entities, nil
}

func propertyString(props map[string]any, key string) string {
	if key == "" || props == nil {
		return ""
	}
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func idString(id any) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

// centroid returns the area centroid of polygons, falling back to the bounding box center.
func centroid(g geom.T) [2]float64 {
	if p, ok := g.(*geom.Point); ok {
		return [2]float64{p.X(), p.Y()}
	}
	if c, err := xy.Centroid(g); err == nil && len(c) >= 2 {
		return [2]float64{c[0], c[1]}
	}
	b := g.Bounds()
	return [2]float64{(b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2}
}
