package pipeline

import (
	"slices"

	"go-wood-dashboard/internal/model"
)

// JoinOptions controls a geo join.
type JoinOptions struct {
	// Mode defaults to JoinLeft.
	Mode model.JoinMode
	// UseParent matches on (parent, name) instead of name alone. Aggregation entries
	// must then carry two key parts: parent first. Entities without a parent still match
	// on name alone, summing that name across parents.
	UseParent bool
}

// entityKey returns the join key of e and whether it is qualified by its parent.
func entityKey(e model.GeoEntity, useParent bool) (string, bool) {
	name := Canonicalize(e.Name)
	if !useParent {
		return name, false
	}
	parent := Canonicalize(e.Parent)
	if parent == "" {
		return name, false
	}
	return model.JoinParts([]string{parent, name}), true
}

func entryKey(e model.Entry, useParent bool) string {
	if useParent && len(e.Parts) >= 2 {
		return model.JoinParts([]string{Canonicalize(e.Parts[0]), Canonicalize(e.Parts[1])})
	}
	if len(e.Parts) > 0 {
		canon := make([]string, len(e.Parts))
		for i, p := range e.Parts {
			canon[i] = Canonicalize(p)
		}
		return model.JoinParts(canon)
	}
	return Canonicalize(e.Key)
}

// Join attaches aggregated values to geographic entities by canonical key. Entries whose
// keys collapse to the same canonical form are summed first. The report lists what did
// not match on either side; it does not stop the join.
func Join(result model.AggregationResult, entities []model.GeoEntity, opts JoinOptions) (model.JoinedGeoResult, model.JoinReport) {
	mode := opts.Mode
	if mode == "" {
		mode = model.JoinLeft
	}

	var report model.JoinReport
	values := make(map[string]float64, result.Len())
	// name-only view of parent-qualified entries, for entities without a parent
	byName := make(map[string]float64)
	nameKeys := make(map[string][]string)
	var keyOrder []string
	for _, e := range result.Entries() {
		k := entryKey(e, opts.UseParent)
		if _, seen := values[k]; seen {
			report.MergedKeys++
		} else {
			keyOrder = append(keyOrder, k)
		}
		values[k] += e.Value

		if opts.UseParent && len(e.Parts) >= 2 {
			name := Canonicalize(e.Parts[1])
			if !slices.Contains(nameKeys[name], k) {
				nameKeys[name] = append(nameKeys[name], k)
			}
			byName[name] += e.Value
		}
	}

	joined := model.JoinedGeoResult{Mode: mode, Entities: make([]model.JoinedGeoEntity, 0, len(entities))}
	used := make(map[string]bool, len(values))
	reportedEntity := make(map[string]bool)

	for _, ent := range entities {
		k, qualified := entityKey(ent, opts.UseParent)
		var v float64
		var ok bool
		switch {
		case opts.UseParent && !qualified:
			v, ok = byName[k]
			for _, key := range nameKeys[k] {
				used[key] = true
			}
		default:
			v, ok = values[k]
			if ok {
				used[k] = true
			}
		}
		if ok {
			report.Matched++
		} else if !reportedEntity[k] {
			reportedEntity[k] = true
			report.UnmatchedEntities = append(report.UnmatchedEntities, k)
		}
		if !ok && mode == model.JoinInner {
			continue
		}
		joined.Entities = append(joined.Entities, model.JoinedGeoEntity{GeoEntity: ent, Value: v, Matched: ok})
	}

	for _, k := range keyOrder {
		if !used[k] {
			report.UnmatchedKeys = append(report.UnmatchedKeys, k)
		}
	}
	return joined, report
}
