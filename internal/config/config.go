// Package config loads the dashboard configuration from a YAML file with environment
// overrides and validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
	"go-wood-dashboard/pkg/utils"
)

const (
	// DefaultRecordsURL is the published wood-mobilization dataset.
	DefaultRecordsURL = "https://raw.githubusercontent.com/DarthKar/APLICACIONES-lll/refs/heads/main/Base_de_datos_relacionada_con_madera_movilizada_proveniente_de_Plantaciones_Forestales_Comerciales_20250217.csv"
)

// Config holds all dashboard configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" json:"data"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Report  ReportConfig  `yaml:"report" json:"report"`
}

// DataConfig configures where the records and the boundary sets come from.
type DataConfig struct {
	RecordsURL   string            `yaml:"records_url" json:"records_url" validate:"required"`
	Boundaries   []BoundaryConfig  `yaml:"boundaries" json:"boundaries" validate:"dive"`
	Columns      map[string]string `yaml:"columns" json:"columns"`
	FetchTimeout time.Duration     `yaml:"fetch_timeout" json:"fetch_timeout" validate:"gt=0"`
	Retry        model.RetryConfig `yaml:"retry" json:"retry"`
}

// BoundaryConfig describes one GeoJSON FeatureCollection of boundaries or points.
type BoundaryConfig struct {
	Kind           string `yaml:"kind" json:"kind" validate:"required,oneof=department municipality"`
	URL            string `yaml:"url" json:"url" validate:"required"`
	NameProperty   string `yaml:"name_property" json:"name_property" validate:"required"`
	ParentProperty string `yaml:"parent_property" json:"parent_property"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	RateLimit    float64       `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"` // requests per second, 0 disables
	RateBurst    int           `yaml:"rate_burst" json:"rate_burst" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development" json:"development"`
}

// StoreConfig holds the sqlite store configuration.
type StoreConfig struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// ExportConfig holds export output configuration.
type ExportConfig struct {
	Dir string `yaml:"dir" json:"dir" validate:"required"`
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	TopN     int    `yaml:"top_n" json:"top_n" validate:"gte=1,lte=100"`
	JoinMode string `yaml:"join_mode" json:"join_mode" validate:"oneof=inner left"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	columns := make(map[string]string)
	for f, name := range model.DefaultColumns() {
		columns[string(f)] = name
	}
	return &Config{
		Data: DataConfig{
			RecordsURL:   DefaultRecordsURL,
			Columns:      columns,
			FetchTimeout: 60 * time.Second,
			Retry: model.RetryConfig{
				MaxAttempts:       3,
				InitialDelay:      time.Second,
				MaxDelay:          15 * time.Second,
				BackoffMultiplier: 2.0,
				Jitter:            true,
			},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit:    20,
			RateBurst:    40,
		},
		Logging: LoggingConfig{Level: "info"},
		Store:   StoreConfig{Path: "dashboard.db"},
		Export:  ExportConfig{Dir: "outputs"},
		Report:  ReportConfig{TopN: 10, JoinMode: string(model.JoinLeft)},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Data.RecordsURL = getEnv("DASHBOARD_RECORDS_URL", c.Data.RecordsURL)
	c.Server.Addr = getEnv("DASHBOARD_ADDR", c.Server.Addr)
	c.Logging.Level = getEnv("DASHBOARD_LOG_LEVEL", c.Logging.Level)
	c.Store.Path = getEnv("DASHBOARD_DB_PATH", c.Store.Path)
	c.Export.Dir = getEnv("DASHBOARD_EXPORT_DIR", c.Export.Dir)
	c.Data.FetchTimeout = utils.ParseDuration(os.Getenv("DASHBOARD_FETCH_TIMEOUT"), c.Data.FetchTimeout)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// ColumnMapping resolves the configured columns, falling back to the default name for
// any logical field the file leaves out.
func (c *Config) ColumnMapping() model.ColumnMapping {
	mapping := model.DefaultColumns()
	for k, v := range c.Data.Columns {
		if v = strings.TrimSpace(v); v != "" {
			mapping[model.Field(k)] = v
		}
	}
	return mapping
}

// Validate checks the configuration and returns a VALIDATION domain error with per-field
// details.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		details := make(map[string]string, len(verrs))
		for _, e := range verrs {
			details[e.Namespace()] = friendlyMessage(e)
		}
		return domainerrors.ValidationWithDetails("invalid configuration", details)
	}

	known := make(map[model.Field]bool, len(model.Fields))
	for _, f := range model.Fields {
		known[f] = true
	}
	for k := range c.Data.Columns {
		if !known[model.Field(k)] {
			return domainerrors.ValidationWithDetails("invalid configuration",
				map[string]string{"data.columns." + k: "is not a known field"})
		}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("yaml")
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must not exceed %s", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
