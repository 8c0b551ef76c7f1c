package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"go-wood-dashboard/internal/model"
)

// Tracker records timing and counts for each stage of a dataset load.
type Tracker struct {
	mu     sync.Mutex
	logger *zap.Logger
	stages map[string]model.StageMetrics
}

// NewTracker creates a tracker logging to logger.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logger, stages: make(map[string]model.StageMetrics)}
}

// Start marks stage as running and returns the function that completes it.
func (t *Tracker) Start(stage string) func(processed, errorCount int64, err error) {
	start := time.Now()

	t.mu.Lock()
	t.stages[stage] = model.StageMetrics{StageName: stage, StartTime: start, Status: "running"}
	t.mu.Unlock()
	t.logger.Debug("stage started", zap.String("stage", stage))

	return func(processed, errorCount int64, err error) {
		end := time.Now()
		m := model.StageMetrics{
			StageName:        stage,
			StartTime:        start,
			EndTime:          end,
			Duration:         end.Sub(start),
			RecordsProcessed: processed,
			ErrorCount:       errorCount,
			Status:           "completed",
		}
		if err != nil {
			m.Status = "failed"
		}

		t.mu.Lock()
		t.stages[stage] = m
		t.mu.Unlock()

		fields := []zap.Field{
			zap.String("stage", stage),
			zap.Duration("duration", m.Duration),
			zap.Int64("records", processed),
			zap.Int64("errors", errorCount),
		}
		if err != nil {
			t.logger.Error("stage failed", append(fields, zap.Error(err))...)
			return
		}
		t.logger.Info("stage completed", fields...)
	}
}

// Stages returns a snapshot of all stage metrics.
func (t *Tracker) Stages() map[string]model.StageMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]model.StageMetrics, len(t.stages))
	for k, v := range t.stages {
		out[k] = v
	}
	return out
}
