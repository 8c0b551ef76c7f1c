package model

import "time"

// StageMetrics represents metrics for one stage of a dataset load
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	ErrorCount       int64         `json:"error_count"`
	Status           string        `json:"status"` // "running", "completed", "failed"
}

// ColumnStatus reports how one logical field was resolved against the source header.
type ColumnStatus struct {
	Field      Field  `json:"field"`
	Configured string `json:"configured"`
	Resolved   string `json:"resolved,omitempty"`
	Index      int    `json:"index"`
	Present    bool   `json:"present"`
}

// MalformedSample keeps one offending cell for diagnostics.
type MalformedSample struct {
	Line  int    `json:"line"`
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// LoadReport summarizes the load of the records table and the boundary sets.
type LoadReport struct {
	SourceURL      string                  `json:"source_url"`
	LoadedAt       time.Time               `json:"loaded_at"`
	Rows           int                     `json:"rows"`
	SkippedRows    int                     `json:"skipped_rows"`
	Columns        []ColumnStatus          `json:"columns"`
	Header         []string                `json:"header"`
	NullCounts     map[Field]int           `json:"null_counts"`
	Malformed      map[Field]int           `json:"malformed"`
	Samples        []MalformedSample       `json:"malformed_samples,omitempty"`
	Boundaries     map[string]int          `json:"boundaries"`
	BoundaryErrors map[string]string       `json:"boundary_errors,omitempty"`
	Stages         map[string]StageMetrics `json:"stages"`
	Error          string                  `json:"error,omitempty"`
}

// MissingColumns returns the configured names of fields absent from the header.
func (r LoadReport) MissingColumns() []string {
	var missing []string
	for _, c := range r.Columns {
		if !c.Present {
			missing = append(missing, c.Configured)
		}
	}
	return missing
}

// RunRecord is one rendered report page, as persisted in the store.
type RunRecord struct {
	ID        string    `json:"id"`
	Page      string    `json:"page"`
	Status    string    `json:"status"` // "completed", "partial", "failed"
	Sections  int       `json:"sections"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// SectionError is a diagnostic recorded for one failed report section.
type SectionError struct {
	RunID     string    `json:"run_id"`
	Section   string    `json:"section"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRecord is the persisted metadata of an exported section table.
type ExportRecord struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Page      string    `json:"page"`
	Section   string    `json:"section"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}
