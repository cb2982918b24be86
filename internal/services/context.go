package services

import "context"

type contextKey string

const (
	experimentKey contextKey = "experiment"
	stageKey      contextKey = "stage"
	jobIndexKey   contextKey = "job_index"
	runIDKey      contextKey = "run_id"
)

// WithExperiment annotates context with the experiment name.
func WithExperiment(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, experimentKey, name)
}

// ExperimentFromContext returns the experiment name if present.
func ExperimentFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(experimentKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stageKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithJobIndex annotates context with the 1-based inference job index.
func WithJobIndex(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, jobIndexKey, index)
}

// JobIndexFromContext extracts the inference job index if present.
func JobIndexFromContext(ctx context.Context) (int, bool) {
	switch val := ctx.Value(jobIndexKey).(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithRunID annotates context with a correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
