package model

import (
	"github.com/twpayne/go-geom"

	domainerrors "go-wood-dashboard/internal/errors"
)

// GeoEntity is a named boundary or point used for map rendering.
type GeoEntity struct {
	ID       string     `json:"id,omitempty"`
	Kind     string     `json:"kind"` // department, municipality
	Name     string     `json:"name"`
	Parent   string     `json:"parent,omitempty"`
	Centroid [2]float64 `json:"centroid"`
	Geometry geom.T     `json:"-"`
}

// JoinMode selects which geographic entities survive a join.
type JoinMode string

const (
	// JoinInner keeps only entities that matched an aggregated key.
	JoinInner JoinMode = "inner"
	// JoinLeft keeps every entity; unmatched ones carry 0.
	JoinLeft JoinMode = "left"
)

// JoinedGeoEntity is a GeoEntity annotated with an aggregated value.
type JoinedGeoEntity struct {
	GeoEntity
	Value   float64 `json:"value"`
	Matched bool    `json:"matched"`
}

// JoinedGeoResult is the output of a geo join.
type JoinedGeoResult struct {
	Mode     JoinMode          `json:"mode"`
	Entities []JoinedGeoEntity `json:"entities"`
}

// Values returns the value of every entity, in entity order.
func (r JoinedGeoResult) Values() []float64 {
	out := make([]float64, len(r.Entities))
	for i, e := range r.Entities {
		out[i] = e.Value
	}
	return out
}

// Table renders the joined result.
func (r JoinedGeoResult) Table() Table {
	t := Table{Columns: []string{"name", "parent", "value", "matched"}}
	for _, e := range r.Entities {
		t.Rows = append(t.Rows, []any{e.Name, e.Parent, e.Value, e.Matched})
	}
	return t
}

// JoinReport describes how well the two key sets of a join lined up.
type JoinReport struct {
	Matched           int      `json:"matched"`
	UnmatchedKeys     []string `json:"unmatched_keys"`
	UnmatchedEntities []string `json:"unmatched_entities"`
	MergedKeys        int      `json:"merged_keys"`
}

// Err returns a JOIN_MISMATCH error when either side has unmatched keys.
func (r JoinReport) Err() error {
	if len(r.UnmatchedKeys) == 0 && len(r.UnmatchedEntities) == 0 {
		return nil
	}
	return domainerrors.JoinMismatch(r.UnmatchedKeys, r.UnmatchedEntities)
}
