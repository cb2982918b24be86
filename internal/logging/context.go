package logging

import (
	"context"
	"log/slog"

	"revoice/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldExperiment is the standardized structured logging key for experiment names.
	FieldExperiment = "experiment"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldJobIndex is the standardized structured logging key for 1-based inference job indices.
	FieldJobIndex = "job_index"
	// FieldRunID is the standardized structured logging key for run correlation identifiers.
	FieldRunID = "run_id"
	// FieldEventType tags lifecycle events (stage_start, stage_complete, stage_failure).
	FieldEventType = "event_type"
	// FieldStem is the standardized structured logging key for sample stems.
	FieldStem = "stem"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if name, ok := services.ExperimentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldExperiment, name))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if idx, ok := services.JobIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldJobIndex, idx))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
