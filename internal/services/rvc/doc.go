// Package rvc wraps the Python collaborator scripts that perform the heavy
// signal processing: dataset preprocessing, feature and pitch extraction,
// index training, model training, and conversion.
//
// Each client shells out through the configured interpreter, streams the
// collaborator's combined output into the debug log, and blocks until exit.
// A nonzero exit is surfaced as ErrExternalStage with stage context; the
// orchestrator never parses collaborator output beyond logging it.
package rvc
