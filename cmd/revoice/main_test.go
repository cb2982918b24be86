package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/services"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
workspace = %q
dataset_dir = %q
weights_dir = %q
pretrained_dir = %q
results_dir = %q
log_dir = %q
`,
		filepath.Join(base, "workspace"),
		filepath.Join(base, "dataset"),
		filepath.Join(base, "weights"),
		filepath.Join(base, "pretrained"),
		filepath.Join(base, "results"),
		filepath.Join(base, "run-logs"),
	)
	path := filepath.Join(base, "revoice.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestDiagnostic(t *testing.T) {
	if got := diagnostic(context.Canceled); got != "" {
		t.Fatalf("cancellation should be silent, got %q", got)
	}

	taxonomy := services.Wrap(services.ErrMissingTool, "preflight", "tools", "python3 not found", nil)
	if got := diagnostic(taxonomy); !strings.HasPrefix(got, "revoice: ") || strings.Contains(got, "unexpected") {
		t.Fatalf("taxonomy error rendered as %q", got)
	}

	if got := diagnostic(errors.New("boom")); !strings.Contains(got, "unexpected error: boom") {
		t.Fatalf("unclassified error rendered as %q", got)
	}
}

func TestRootShowsHelpWithoutArguments(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	for _, sub := range []string{"train", "infer", "status", "config", "jobs"} {
		if !strings.Contains(output, sub) {
			t.Fatalf("help should list %q:\n%s", sub, output)
		}
	}
}

func TestTrainRejectsInvalidSampleRate(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath, "train", "Test", "--rate", "44100")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTrainRejectsPathLikeExperimentName(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath, "train", "../escape")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestInferRequiresInputFlag(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", cfgPath, "infer", "Test")
	if err == nil || !strings.Contains(err.Error(), "input") {
		t.Fatalf("expected missing --input error, got %v", err)
	}
}

func TestJobsListEmptyLedger(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	if !strings.Contains(output, "No recorded jobs") {
		t.Fatalf("expected empty-ledger message, got:\n%s", output)
	}
}

func TestStatusRendersSections(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, fragment := range []string{"Environment", "Tools", "Python"} {
		if !strings.Contains(output, fragment) {
			t.Fatalf("status output missing %q:\n%s", fragment, output)
		}
	}
}
