// Package testsupport provides shared fixtures for package tests: temp-dir
// configs, experiment trees, and stubbed external binaries.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"revoice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Workspace = filepath.Join(base, "workspace")
	cfgVal.Paths.DatasetDir = filepath.Join(base, "dataset")
	cfgVal.Paths.WeightsDir = filepath.Join(base, "weights")
	cfgVal.Paths.PretrainedDir = filepath.Join(base, "pretrained")
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.LogDir = filepath.Join(base, "run-logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithIndexEnabled turns on the optional index stage.
func WithIndexEnabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Index.Enabled = true
	}
}

// WithSkipCompleted sets the inference skip-ledger behavior.
func WithSkipCompleted(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Inference.SkipCompleted = enabled
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default collaborators are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"python3", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		prependPath(b.t, binDir)
	}
}

func prependPath(t testing.TB, dir string) {
	t.Helper()
	current := os.Getenv("PATH")
	if current == "" {
		t.Setenv("PATH", dir)
		return
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+current)
}
