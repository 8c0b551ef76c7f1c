package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-wood-dashboard/internal/model"
)

// Canonicalize is the single normalization applied to every join and grouping key:
// NFKD decomposition, combining marks removed, upper case, trimmed, internal whitespace
// collapsed to one space. "  Bogotá d.c. " becomes "BOGOTA D.C.".
func Canonicalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToUpper(out)), " ")
}

// CanonicalizeRecords returns a copy of records with every categorical field canonicalized.
// The input slice is left untouched.
func CanonicalizeRecords(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		r.Department = Canonicalize(r.Department)
		r.Municipality = Canonicalize(r.Municipality)
		r.Species = Canonicalize(r.Species)
		r.ProductType = Canonicalize(r.ProductType)
		r.Source = Canonicalize(r.Source)
		out[i] = r
	}
	return out
}
