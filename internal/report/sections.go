package report

import (
	"fmt"
	"sort"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/internal/pipeline"
	"go-wood-dashboard/internal/render"
)

const (
	previewRows  = 10
	outlierRows  = 50
	mapLabels    = 10
	volumeLabel  = "volumen (m³)"
	boundaryDept = "department"
	boundaryMuni = "municipality"
)

// ------------------- Overview -------------------

func buildRecordCount(in *input) (SectionResult, error) {
	rep := in.ds.Report()
	res := SectionResult{
		Notes: []string{fmt.Sprintf("%d registros cargados desde %s", rep.Rows, rep.SourceURL)},
		Data: map[string]any{
			"rows":         rep.Rows,
			"skipped_rows": rep.SkippedRows,
			"columns":      len(rep.Header),
			"loaded_at":    rep.LoadedAt,
			"boundaries":   rep.Boundaries,
		},
	}
	if rep.SkippedRows > 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("%d filas ilegibles fueron omitidas", rep.SkippedRows))
	}
	if err := pipeline.MalformedError(rep); err != nil {
		res.Warnings = append(res.Warnings, domainerrors.From(err))
	}
	for kind, msg := range rep.BoundaryErrors {
		res.Warnings = append(res.Warnings, domainerrors.Unavailable(fmt.Sprintf("%s: %s", kind, msg)))
	}
	return res, nil
}

func buildNullCounts(in *input) (SectionResult, error) {
	rep := in.ds.Report()
	table := model.Table{Columns: []string{"columna", "nulos", "mal formados"}}
	for _, c := range rep.Columns {
		nulls, bad := rep.NullCounts[c.Field], rep.Malformed[c.Field]
		if nulls == 0 && bad == 0 {
			continue
		}
		table.Rows = append(table.Rows, []any{c.Configured, nulls, bad})
	}

	res := SectionResult{Table: &table}
	if len(table.Rows) == 0 {
		res.Notes = []string{"No hay valores nulos en ninguna columna."}
	}
	return res, nil
}

func buildInterpolationNote(in *input) (SectionResult, error) {
	rep := in.ds.Report()
	missing := 0
	for _, n := range rep.NullCounts {
		missing += n
	}
	for _, n := range rep.Malformed {
		missing += n
	}

	note := "No hay valores nulos en el dataset. No es necesario interpolar."
	if missing > 0 {
		note = "Se encontraron valores nulos en el dataset. Puede ser necesario interpolar."
	}
	return SectionResult{Notes: []string{note}, Data: map[string]int{"missing_values": missing}}, nil
}

func buildColumns(in *input) (SectionResult, error) {
	rep := in.ds.Report()
	table := model.Table{Columns: []string{"campo", "columna configurada", "columna encontrada", "presente"}}
	for _, c := range rep.Columns {
		table.Rows = append(table.Rows, []any{string(c.Field), c.Configured, c.Resolved, c.Present})
	}

	res := SectionResult{Table: &table, Data: map[string]any{"header": rep.Header}}
	if missing := rep.MissingColumns(); len(missing) > 0 {
		res.Warnings = append(res.Warnings, domainerrors.MissingColumn(missing...))
	}
	return res, nil
}

func buildPreview(in *input) (SectionResult, error) {
	rep := in.ds.Report()
	table := model.Table{}
	for _, c := range rep.Columns {
		table.Columns = append(table.Columns, c.Configured)
	}

	raw := in.ds.Raw()
	if len(raw) > previewRows {
		raw = raw[:previewRows]
	}
	for _, r := range raw {
		row := make([]any, 0, len(rep.Columns))
		for _, c := range rep.Columns {
			if c.Field == model.FieldVolume {
				if r.HasVolume {
					row = append(row, r.Volume)
				} else {
					row = append(row, nil)
				}
				continue
			}
			row = append(row, r.Text(c.Field))
		}
		table.Rows = append(table.Rows, row)
	}
	return SectionResult{Table: &table}, nil
}

// ------------------- Species -------------------

func rankedBar(title, label string, ranked model.AggregationResult) (SectionResult, error) {
	ranked = pipeline.Labelled(ranked, label)
	chart, err := render.Bar(title, label, volumeLabel, ranked)
	if err != nil {
		return SectionResult{}, err
	}
	table := ranked.Table()
	return SectionResult{Chart: chart, Table: &table}, nil
}

func buildTopSpecies(in *input) (SectionResult, error) {
	res := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldSpecies), model.ReduceSum)
	return rankedBar("Especies más comunes a nivel nacional", "especie", pipeline.TopN(res, in.opts.TopN))
}

func buildBottomSpecies(in *input) (SectionResult, error) {
	res := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldSpecies), model.ReduceSum)
	return rankedBar("Especies con menor volumen movilizado", "especie", pipeline.BottomN(res, in.opts.TopN))
}

func partsTable(columns []string, result model.AggregationResult) model.Table {
	table := model.Table{Columns: columns}
	for _, e := range result.Entries() {
		row := make([]any, 0, len(e.Parts)+1)
		for _, p := range e.Parts {
			row = append(row, p)
		}
		table.Rows = append(table.Rows, append(row, e.Value))
	}
	return table
}

func buildSpeciesByDepartment(in *input) (SectionResult, error) {
	key := pipeline.Composite(pipeline.ByField(model.FieldDepartment), pipeline.ByField(model.FieldSpecies))
	res := pipeline.Aggregate(in.records, key, model.ReduceSum)
	if res.Len() == 0 {
		return SectionResult{}, domainerrors.NoData("no records with department and species")
	}
	table := partsTable([]string{"departamento", "especie", volumeLabel}, pipeline.TopN(res, in.opts.TopN))
	return SectionResult{Table: &table}, nil
}

func buildByField(f model.Field, title string) func(in *input) (SectionResult, error) {
	return func(in *input) (SectionResult, error) {
		res := pipeline.Aggregate(in.records, pipeline.ByField(f), model.ReduceSum)
		return rankedBar(title, string(f), pipeline.TopN(res, res.Len()))
	}
}

// ------------------- Departments -------------------

func buildDepartmentVolume(in *input) (SectionResult, error) {
	res := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldDepartment), model.ReduceSum)
	return rankedBar("Volumen movilizado por departamento", "departamento", pipeline.TopN(res, res.Len()))
}

func buildDepartmentSpeciesHeatmap(in *input) (SectionResult, error) {
	byDept := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldDepartment), model.ReduceSum)
	bySpecies := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldSpecies), model.ReduceSum)

	pivot := pipeline.Pivot(in.records, pipeline.ByField(model.FieldDepartment), pipeline.ByField(model.FieldSpecies))
	pivot.RowLabel, pivot.ColLabel = "departamento", "especie"
	pivot = pivot.Restrict(pipeline.TopN(byDept, in.opts.TopN).Keys(), pipeline.TopN(bySpecies, in.opts.TopN).Keys())

	chart, err := render.Heatmap("Volumen por departamento y especie", pivot)
	if err != nil {
		return SectionResult{}, err
	}
	table := pivot.Table()
	return SectionResult{Chart: chart, Table: &table}, nil
}

// joinResult finishes a map section: a join with no match at all fails, a partial one
// renders with a JOIN_MISMATCH warning.
func joinResult(joined model.JoinedGeoResult, report model.JoinReport, chart func() ([]byte, error)) (SectionResult, error) {
	if report.Matched == 0 {
		if err := report.Err(); err != nil {
			return SectionResult{}, err
		}
		return SectionResult{}, domainerrors.NoData("no aggregated values to map")
	}

	svg, err := chart()
	if err != nil {
		return SectionResult{}, err
	}
	table := joined.Table()
	res := SectionResult{Chart: svg, Table: &table, Data: report}
	if err := report.Err(); err != nil {
		res.Warnings = append(res.Warnings, domainerrors.From(err))
	}
	return res, nil
}

func buildDepartmentMap(in *input) (SectionResult, error) {
	entities, err := in.ds.Boundaries(boundaryDept)
	if err != nil {
		return SectionResult{}, err
	}
	res := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldDepartment), model.ReduceSum)
	joined, report := pipeline.Join(res, entities, pipeline.JoinOptions{Mode: in.opts.JoinMode})
	return joinResult(joined, report, func() ([]byte, error) {
		return render.Choropleth("Volumen movilizado por departamento", joined)
	})
}

// ------------------- Municipalities -------------------

func municipalityKey() pipeline.KeyFunc {
	return pipeline.Composite(pipeline.ByField(model.FieldDepartment), pipeline.ByField(model.FieldMunicipality))
}

func buildTopMunicipalities(in *input) (SectionResult, error) {
	res := pipeline.Aggregate(in.records, municipalityKey(), model.ReduceSum)
	top := pipeline.Labelled(pipeline.TopN(res, in.opts.TopN), "municipio")
	chart, err := render.Bar("Municipios con mayor volumen movilizado", "municipio", volumeLabel, top)
	if err != nil {
		return SectionResult{}, err
	}
	table := partsTable([]string{"departamento", "municipio", volumeLabel}, top)
	return SectionResult{Chart: chart, Table: &table}, nil
}

func buildMunicipalityMap(in *input) (SectionResult, error) {
	entities, err := in.ds.Boundaries(boundaryMuni)
	if err != nil {
		return SectionResult{}, err
	}

	// Without a parent property homonymous municipalities cannot be told apart, so the
	// join falls back to the municipality name alone.
	useParent := false
	for _, e := range entities {
		if e.Parent != "" {
			useParent = true
			break
		}
	}
	key := municipalityKey()
	if !useParent {
		key = pipeline.ByField(model.FieldMunicipality)
	}

	res := pipeline.Aggregate(in.records, key, model.ReduceSum)
	joined, report := pipeline.Join(res, entities, pipeline.JoinOptions{Mode: model.JoinInner, UseParent: useParent})
	return joinResult(joined, report, func() ([]byte, error) {
		return render.Bubbles("Volumen movilizado por municipio", joined, mapLabels)
	})
}

// ------------------- Evolution -------------------

func seriesChart(title, category string, s pipeline.Series) (SectionResult, error) {
	chart, err := render.Lines(title, "año", volumeLabel, s.Points())
	if err != nil {
		return SectionResult{}, err
	}
	table := s.Table("año")
	return SectionResult{Chart: chart, Table: &table, Data: map[string]any{"categories": s.Categories, "category": category}}, nil
}

func buildSpeciesEvolution(in *input) (SectionResult, error) {
	bySpecies := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldSpecies), model.ReduceSum)
	top := pipeline.TopN(bySpecies, in.opts.TopN).Keys()
	s := pipeline.TimeSeries(in.records, pipeline.ByField(model.FieldYear), pipeline.ByField(model.FieldSpecies),
		pipeline.SeriesOptions{Categories: top})
	return seriesChart("Volumen anual de las especies principales", "especie", s)
}

func buildProductEvolution(in *input) (SectionResult, error) {
	s := pipeline.TimeSeries(in.records, pipeline.ByField(model.FieldYear), pipeline.ByField(model.FieldProductType),
		pipeline.SeriesOptions{})
	return seriesChart("Volumen anual por tipo de producto", "tipo de producto", s)
}

func buildSemesterTable(in *input) (SectionResult, error) {
	seen := make(map[int]bool)
	var semesters []int
	for _, r := range in.records {
		if r.Semester > 0 && !seen[r.Semester] {
			seen[r.Semester] = true
			semesters = append(semesters, r.Semester)
		}
	}
	if len(semesters) == 0 {
		return SectionResult{}, domainerrors.NoData("no records with a semester")
	}
	sort.Ints(semesters)

	categories := make([]string, len(semesters))
	for i, s := range semesters {
		categories[i] = fmt.Sprint(s)
	}
	s := pipeline.TimeSeries(in.records, pipeline.ByField(model.FieldYear), pipeline.ByField(model.FieldSemester),
		pipeline.SeriesOptions{ZeroFill: true, Categories: categories})

	table := s.Table("año")
	for i, c := range categories {
		table.Columns[i+1] = "semestre " + c
	}
	return SectionResult{Table: &table}, nil
}

// ------------------- Distribution -------------------

func finiteVolumes(records []model.Record) []float64 {
	var out []float64
	for _, r := range records {
		if r.HasVolume {
			out = append(out, r.Volume)
		}
	}
	return out
}

func buildVolumeBox(in *input) (SectionResult, error) {
	d, err := pipeline.Summarize(pipeline.VolumeValues(in.records))
	if err != nil {
		return SectionResult{}, err
	}

	group := model.GroupDistribution{Key: "nacional", Distribution: d, Values: finiteVolumes(in.records)}
	chart, err := render.Boxes("Distribución del volumen movilizado", volumeLabel, []model.GroupDistribution{group})
	if err != nil {
		return SectionResult{}, err
	}

	table := model.Table{
		Columns: []string{"estadístico", "valor"},
		Rows: [][]any{
			{"registros", d.Count},
			{"excluidos", d.Excluded},
			{"mínimo", d.Min},
			{"Q1", d.Q1},
			{"mediana", d.Median},
			{"Q3", d.Q3},
			{"máximo", d.Max},
			{"rango intercuartil", d.IQR},
			{"media", d.Mean},
			{"desviación estándar", d.StdDev},
			{"límite inferior", d.LowerFence},
			{"límite superior", d.UpperFence},
			{"atípicos", len(d.Outliers)},
		},
	}
	return SectionResult{Chart: chart, Table: &table, Data: d}, nil
}

func buildDepartmentBoxes(in *input) (SectionResult, error) {
	byDept := pipeline.Aggregate(in.records, pipeline.ByField(model.FieldDepartment), model.ReduceSum)
	top := pipeline.TopN(byDept, in.opts.TopN).Keys()

	groups := make(map[string]model.GroupDistribution)
	for _, g := range pipeline.SummarizeBy(in.records, pipeline.ByField(model.FieldDepartment)) {
		groups[g.Key] = g
	}
	var selected []model.GroupDistribution
	var empty []string
	excluded := 0
	table := model.Table{Columns: []string{"departamento", "registros", "excluidos", "Q1", "mediana", "Q3", "atípicos"}}
	for _, k := range top {
		g, ok := groups[k]
		if !ok {
			continue
		}
		excluded += g.Excluded
		if g.Count == 0 {
			empty = append(empty, g.Key)
			table.Rows = append(table.Rows, []any{g.Key, 0, g.Excluded, nil, nil, nil, 0})
			continue
		}
		selected = append(selected, g)
		table.Rows = append(table.Rows, []any{g.Key, g.Count, g.Excluded, g.Q1, g.Median, g.Q3, len(g.Outliers)})
	}

	chart, err := render.Boxes("Distribución por departamento", volumeLabel, selected)
	if err != nil {
		return SectionResult{}, err
	}
	res := SectionResult{Chart: chart, Table: &table}
	if excluded > 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("%d registros sin volumen excluidos de la distribución", excluded))
	}
	if len(empty) > 0 {
		res.Warnings = append(res.Warnings, domainerrors.NoData("departments without any volume").
			WithDetails(map[string]any{"departments": empty}))
	}
	return res, nil
}

func buildOutliers(in *input) (SectionResult, error) {
	d, err := pipeline.Summarize(pipeline.VolumeValues(in.records))
	if err != nil {
		return SectionResult{}, err
	}

	var outliers []model.Record
	for _, r := range in.records {
		if r.HasVolume && (r.Volume < d.LowerFence || r.Volume > d.UpperFence) {
			outliers = append(outliers, r)
		}
	}
	sort.SliceStable(outliers, func(i, j int) bool { return outliers[i].Volume > outliers[j].Volume })

	table := model.Table{Columns: []string{"año", "departamento", "municipio", "especie", volumeLabel}}
	for i, r := range outliers {
		if i == outlierRows {
			break
		}
		table.Rows = append(table.Rows, []any{r.Year, r.Department, r.Municipality, r.Species, r.Volume})
	}
	note := fmt.Sprintf("%d registros con volumen fuera de [%.2f, %.2f]", len(outliers), d.LowerFence, d.UpperFence)
	return SectionResult{Table: &table, Notes: []string{note}}, nil
}
