// Package logging builds the slog loggers used across the pipeline.
//
// Two output formats are supported: a compact console handler for
// interactive use and slog's JSON handler for machine consumption. Helper
// aliases keep call sites terse, and WithContext threads the experiment,
// stage, job, and run-ID fields carried on the context into every record.
package logging
