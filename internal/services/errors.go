package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrMissingTool         = errors.New("missing prerequisite tool")
	ErrMissingDirectory    = errors.New("missing directory")
	ErrMalformedManifest   = errors.New("malformed manifest")
	ErrEmptyManifest       = errors.New("empty manifest")
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrNoInputFiles        = errors.New("no input files")
	ErrExternalStage       = errors.New("external stage failure")
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err belongs to the pipeline error taxonomy. All
// taxonomy members abort the current run; nothing is retried.
func Fatal(err error) bool {
	for _, marker := range []error{
		ErrUnsupportedPlatform,
		ErrMissingTool,
		ErrMissingDirectory,
		ErrMalformedManifest,
		ErrEmptyManifest,
		ErrCheckpointNotFound,
		ErrNoInputFiles,
		ErrExternalStage,
		ErrValidation,
		ErrConfiguration,
	} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
