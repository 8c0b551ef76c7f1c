package model

import "time"

// SeriesPoint is one (time, category, value) triple of a time series.
type SeriesPoint struct {
	Time     string  `json:"time"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Distribution is the boxplot summary of a numeric column.
type Distribution struct {
	Count        int       `json:"count"`
	Excluded     int       `json:"excluded"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	IQR          float64   `json:"iqr"`
	LowerFence   float64   `json:"lower_fence"`
	UpperFence   float64   `json:"upper_fence"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"std_dev"`
	Outliers     []float64 `json:"outliers"`
}

// GroupDistribution is the Distribution of one group.
type GroupDistribution struct {
	Key string `json:"key"`
	Distribution
	Values []float64 `json:"-"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // "csv", "json", "xlsx", "database"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
