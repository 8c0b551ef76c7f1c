package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-wood-dashboard/internal/config"
	"go-wood-dashboard/internal/model"
)

// ------------------- Loader -------------------

// Load fetches and parses the records table and every configured boundary set. It always
// returns a Dataset: when the records cannot be loaded the dataset is empty and carries the
// error, so callers can still serve diagnostics. A failing boundary set only disables the
// maps that need it.
func Load(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dataset, error) {
	start := time.Now()
	tracker := NewTracker(logger)
	logger.Info("loading dataset", zap.String("source", cfg.Data.RecordsURL))

	report := model.LoadReport{SourceURL: cfg.Data.RecordsURL, LoadedAt: start}
	boundaries, boundaryErrors := loadBoundaries(ctx, cfg, tracker, logger)
	report.BoundaryErrors = boundaryErrors

	done := tracker.Start("fetch")
	data, err := FetchSource(ctx, cfg.Data.RecordsURL, cfg.Data.FetchTimeout, retryConfig(cfg.Data.Retry, "records"), logger)
	done(int64(len(data)), errCount(err), err)
	if err != nil {
		report.Stages = tracker.Stages()
		return NewDataset(nil, report, boundaries, err), err
	}

	done = tracker.Start("parse")
	records, parsed, err := ReadRecords(data, cfg.ColumnMapping())
	malformed := 0
	for _, n := range parsed.Malformed {
		malformed += n
	}
	done(int64(len(records)), int64(malformed+parsed.SkippedRows), err)

	parsed.SourceURL = report.SourceURL
	parsed.LoadedAt = report.LoadedAt
	parsed.BoundaryErrors = report.BoundaryErrors
	parsed.Stages = tracker.Stages()
	if err != nil {
		return NewDataset(nil, parsed, boundaries, err), err
	}

	if missing := parsed.MissingColumns(); len(missing) > 0 {
		logger.Warn("configured columns not found in header",
			zap.Strings("missing", missing),
			zap.Strings("header", parsed.Header))
	}
	if malformed > 0 {
		logger.Warn("malformed cells read as null",
			zap.Int("count", malformed),
			zap.Any("by_field", parsed.Malformed))
	}

	ds := NewDataset(records, parsed, boundaries, nil)
	logger.Info("dataset loaded",
		zap.Int("records", ds.Len()),
		zap.Int("skipped_rows", parsed.SkippedRows),
		zap.Duration("duration", time.Since(start)))
	return ds, nil
}

func loadBoundaries(ctx context.Context, cfg *config.Config, tracker *Tracker, logger *zap.Logger) (map[string][]model.GeoEntity, map[string]string) {
	boundaries := make(map[string][]model.GeoEntity)
	var failures map[string]string

	for _, b := range cfg.Data.Boundaries {
		done := tracker.Start("boundaries:" + b.Kind)
		entities, err := fetchBoundaries(ctx, cfg, b, logger)
		done(int64(len(entities)), errCount(err), err)
		if err != nil {
			if failures == nil {
				failures = make(map[string]string)
			}
			failures[b.Kind] = err.Error()
			continue
		}
		boundaries[b.Kind] = append(boundaries[b.Kind], entities...)
	}
	return boundaries, failures
}

func fetchBoundaries(ctx context.Context, cfg *config.Config, b config.BoundaryConfig, logger *zap.Logger) ([]model.GeoEntity, error) {
	data, err := FetchSource(ctx, b.URL, cfg.Data.FetchTimeout, DefaultRetryConfigs["boundaries"], logger)
	if err != nil {
		return nil, err
	}
	entities, err := ParseBoundaries(data, BoundarySpec{
		Kind:           b.Kind,
		NameProperty:   b.NameProperty,
		ParentProperty: b.ParentProperty,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.URL, err)
	}
	return entities, nil
}

// retryConfig falls back to the default for kind when the configured one is unset.
func retryConfig(cfg model.RetryConfig, kind string) model.RetryConfig {
	if cfg.MaxAttempts > 0 {
		return cfg
	}
	return DefaultRetryConfigs[kind]
}

func errCount(err error) int64 {
	if err != nil {
		return 1
	}
	return 0
}
