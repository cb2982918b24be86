// Package pipeline schedules the training stages in their fixed order:
// preprocess, features, pitch, optional index, manifest, runconfig, train.
// Execution is strictly sequential and fail-fast; a run lock prevents two
// concurrent runs against the same experiment tree.
package pipeline
