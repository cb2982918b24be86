package services_test

import (
	"errors"
	"strings"
	"testing"

	"revoice/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalStage, "preprocess", "run collaborator", "Preprocessor terminated abnormally", base)
	if !errors.Is(err, services.ErrExternalStage) {
		t.Fatalf("expected ErrExternalStage, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to survive")
	}
	msg := err.Error()
	for _, want := range []string{"preprocess", "run collaborator", "Preprocessor terminated abnormally", "exit status 1"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrEmptyManifest, "manifest", "validate", "no complete samples", nil)
	if !errors.Is(err, services.ErrEmptyManifest) {
		t.Fatalf("expected ErrEmptyManifest, got %v", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Fatalf("broken formatting: %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToValidation(t *testing.T) {
	err := services.Wrap(nil, "", "", "bad argument", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation fallback, got %v", err)
	}
}

func TestFatalCoversTaxonomy(t *testing.T) {
	for _, marker := range []error{
		services.ErrUnsupportedPlatform,
		services.ErrMissingTool,
		services.ErrMissingDirectory,
		services.ErrMalformedManifest,
		services.ErrEmptyManifest,
		services.ErrCheckpointNotFound,
		services.ErrNoInputFiles,
		services.ErrExternalStage,
	} {
		if !services.Fatal(services.Wrap(marker, "stage", "op", "msg", nil)) {
			t.Fatalf("expected %v to be fatal", marker)
		}
	}
	if services.Fatal(errors.New("plain")) {
		t.Fatal("plain errors are not part of the taxonomy")
	}
}
