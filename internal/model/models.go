package model

import "strconv"

// Field is a logical column of the wood-mobilization table.
type Field string

const (
	FieldYear         Field = "year"
	FieldSemester     Field = "semester"
	FieldQuarter      Field = "quarter"
	FieldDepartment   Field = "department"
	FieldMunicipality Field = "municipality"
	FieldSpecies      Field = "species"
	FieldProductType  Field = "product_type"
	FieldSource       Field = "source"
	FieldVolume       Field = "volume"
)

// Fields lists every logical field in source-table order.
var Fields = []Field{
	FieldYear, FieldSemester, FieldQuarter, FieldDepartment, FieldMunicipality,
	FieldSpecies, FieldProductType, FieldSource, FieldVolume,
}

// ColumnMapping maps logical fields to the column names of a dataset version.
type ColumnMapping map[Field]string

// DefaultColumns is the mapping used by the published dataset.
func DefaultColumns() ColumnMapping {
	return ColumnMapping{
		FieldYear:         "AÑO",
		FieldSemester:     "SEMESTRE",
		FieldQuarter:      "TRIMESTRE",
		FieldDepartment:   "DPTO",
		FieldMunicipality: "MUNICIPIO",
		FieldSpecies:      "ESPECIE",
		FieldProductType:  "TIPO_PRODUCTO",
		FieldSource:       "FUENTE",
		FieldVolume:       "VOLUMEN_M3",
	}
}

// Record is one row of wood-mobilization data. Zero numeric fields and empty strings
// mean the cell was missing; HasVolume distinguishes a null volume from 0 m³.
type Record struct {
	Year         int     `json:"year,omitempty"`
	Semester     int     `json:"semester,omitempty"`
	Quarter      int     `json:"quarter,omitempty"`
	Department   string  `json:"department,omitempty"`
	Municipality string  `json:"municipality,omitempty"`
	Species      string  `json:"species,omitempty"`
	ProductType  string  `json:"product_type,omitempty"`
	Source       string  `json:"source,omitempty"`
	Volume       float64 `json:"volume"`
	HasVolume    bool    `json:"has_volume"`
}

// Text returns the categorical value of f, or "" when the cell is null.
func (r Record) Text(f Field) string {
	switch f {
	case FieldYear:
		return itoa(r.Year)
	case FieldSemester:
		return itoa(r.Semester)
	case FieldQuarter:
		return itoa(r.Quarter)
	case FieldDepartment:
		return r.Department
	case FieldMunicipality:
		return r.Municipality
	case FieldSpecies:
		return r.Species
	case FieldProductType:
		return r.ProductType
	case FieldSource:
		return r.Source
	case FieldVolume:
		if !r.HasVolume {
			return ""
		}
		return strconv.FormatFloat(r.Volume, 'f', -1, 64)
	default:
		return ""
	}
}

func itoa(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
