package report

import "go-wood-dashboard/internal/model"

// Page ids.
const (
	PageOverview       = "resumen"
	PageSpecies        = "especies"
	PageDepartments    = "departamentos"
	PageMunicipalities = "municipios"
	PageEvolution      = "evolucion"
	PageDistribution   = "distribucion"
)

var catalogue = []Page{
	{
		ID:    PageOverview,
		Title: "Resumen del dataset",
		Sections: []Section{
			{ID: "registros", Title: "Información del dataset", Kind: KindNote, build: buildRecordCount},
			{ID: "nulos", Title: "Valores nulos en el dataset", Kind: KindTable, build: buildNullCounts},
			{ID: "interpolacion", Title: "¿Es necesario interpolar?", Kind: KindNote, build: buildInterpolationNote},
			{ID: "columnas", Title: "Nombres de las columnas en el dataset", Kind: KindTable, build: buildColumns},
			{ID: "vista_previa", Title: "Vista previa del dataset", Kind: KindTable, build: buildPreview},
		},
	},
	{
		ID:    PageSpecies,
		Title: "Especies",
		Sections: []Section{
			{ID: "top_nacional", Title: "Especies más comunes a nivel nacional", Kind: KindChart,
				Requires: []model.Field{model.FieldSpecies, model.FieldVolume}, build: buildTopSpecies},
			{ID: "menos_comunes", Title: "Especies con menor volumen movilizado", Kind: KindChart,
				Requires: []model.Field{model.FieldSpecies, model.FieldVolume}, build: buildBottomSpecies},
			{ID: "por_departamento", Title: "Especies más comunes por departamento", Kind: KindTable,
				Requires: []model.Field{model.FieldDepartment, model.FieldSpecies, model.FieldVolume}, build: buildSpeciesByDepartment},
			{ID: "por_tipo_producto", Title: "Volumen por tipo de producto", Kind: KindChart,
				Requires: []model.Field{model.FieldProductType, model.FieldVolume}, build: buildByField(model.FieldProductType, "Volumen por tipo de producto")},
			{ID: "por_fuente", Title: "Volumen por fuente", Kind: KindChart,
				Requires: []model.Field{model.FieldSource, model.FieldVolume}, build: buildByField(model.FieldSource, "Volumen por fuente")},
		},
	},
	{
		ID:    PageDepartments,
		Title: "Departamentos",
		Sections: []Section{
			{ID: "volumen", Title: "Volumen movilizado por departamento", Kind: KindChart,
				Requires: []model.Field{model.FieldDepartment, model.FieldVolume}, build: buildDepartmentVolume},
			{ID: "especies_heatmap", Title: "Volumen por departamento y especie", Kind: KindChart,
				Requires: []model.Field{model.FieldDepartment, model.FieldSpecies, model.FieldVolume}, build: buildDepartmentSpeciesHeatmap},
			{ID: "mapa", Title: "Mapa de volumen por departamento", Kind: KindMap,
				Requires: []model.Field{model.FieldDepartment, model.FieldVolume}, build: buildDepartmentMap},
		},
	},
	{
		ID:    PageMunicipalities,
		Title: "Municipios",
		Sections: []Section{
			{ID: "top", Title: "Municipios con mayor volumen movilizado", Kind: KindChart,
				Requires: []model.Field{model.FieldDepartment, model.FieldMunicipality, model.FieldVolume}, build: buildTopMunicipalities},
			{ID: "mapa", Title: "Mapa de volumen por municipio", Kind: KindMap,
				Requires: []model.Field{model.FieldDepartment, model.FieldMunicipality, model.FieldVolume}, build: buildMunicipalityMap},
		},
	},
	{
		ID:    PageEvolution,
		Title: "Evolución temporal",
		Sections: []Section{
			{ID: "especies", Title: "Volumen anual de las especies principales", Kind: KindChart,
				Requires: []model.Field{model.FieldYear, model.FieldSpecies, model.FieldVolume}, build: buildSpeciesEvolution},
			{ID: "tipo_producto", Title: "Volumen anual por tipo de producto", Kind: KindChart,
				Requires: []model.Field{model.FieldYear, model.FieldProductType, model.FieldVolume}, build: buildProductEvolution},
			{ID: "semestre", Title: "Volumen por año y semestre", Kind: KindTable,
				Requires: []model.Field{model.FieldYear, model.FieldSemester, model.FieldVolume}, build: buildSemesterTable},
		},
	},
	{
		ID:    PageDistribution,
		Title: "Distribución del volumen",
		Sections: []Section{
			{ID: "volumen", Title: "Distribución del volumen movilizado", Kind: KindChart,
				Requires: []model.Field{model.FieldVolume}, build: buildVolumeBox},
			{ID: "por_departamento", Title: "Distribución por departamento", Kind: KindChart,
				Requires: []model.Field{model.FieldDepartment, model.FieldVolume}, build: buildDepartmentBoxes},
			{ID: "atipicos", Title: "Registros atípicos", Kind: KindTable,
				Requires: []model.Field{model.FieldVolume}, build: buildOutliers},
		},
	},
}

// Pages returns the page catalogue in display order.
func Pages() []Page {
	return append([]Page(nil), catalogue...)
}

// Lookup returns the page with id.
func Lookup(id string) (Page, bool) {
	for _, p := range catalogue {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}
