package pipeline

import (
	"fmt"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

// RequireColumns returns MISSING_COLUMN naming the configured columns of every field in
// fields that the header did not resolve.
func RequireColumns(columns []model.ColumnStatus, fields ...model.Field) error {
	byField := make(map[model.Field]model.ColumnStatus, len(columns))
	for _, c := range columns {
		byField[c.Field] = c
	}

	var missing []string
	for _, f := range fields {
		c, ok := byField[f]
		if !ok {
			missing = append(missing, model.DefaultColumns()[f])
			continue
		}
		if !c.Present {
			missing = append(missing, c.Configured)
		}
	}
	if len(missing) > 0 {
		return domainerrors.MissingColumn(missing...)
	}
	return nil
}

// MalformedError summarizes the malformed cells of a load, or nil when there were none.
func MalformedError(report model.LoadReport) error {
	total := 0
	for _, n := range report.Malformed {
		total += n
	}
	if total == 0 {
		return nil
	}
	err := domainerrors.ErrMalformedValue.WithDetails(map[string]any{
		"counts":  report.Malformed,
		"samples": report.Samples,
	})
	err.Message = fmt.Sprintf("%d cells could not be parsed and were read as null", total)
	return err
}
