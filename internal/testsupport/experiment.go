package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"revoice/internal/config"
	"revoice/internal/experiment"
)

// NewExperiment constructs an experiment against the test config, failing
// the test on validation errors.
func NewExperiment(t testing.TB, cfg *config.Config, name string, params experiment.Params) *experiment.Experiment {
	t.Helper()
	exp, err := experiment.New(cfg, name, params)
	if err != nil {
		t.Fatalf("experiment.New: %v", err)
	}
	return exp
}

// MakeArtifactDirs creates the four per-sample artifact directories.
func MakeArtifactDirs(t testing.TB, exp *experiment.Experiment) {
	t.Helper()
	for _, dir := range exp.ArtifactDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

// AddSample writes the full artifact set for one stem: ground-truth wav,
// feature vector, and both pitch tracks.
func AddSample(t testing.TB, exp *experiment.Experiment, stem string) {
	t.Helper()
	for _, path := range []string{
		filepath.Join(exp.GTWavsDir(), stem+".wav"),
		filepath.Join(exp.FeatureDir(), stem+".npy"),
		filepath.Join(exp.F0Dir(), stem+".wav.npy"),
		filepath.Join(exp.F0NSFDir(), stem+".wav.npy"),
	} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteCheckpoint places a named checkpoint file in the config's weights
// directory.
func WriteCheckpoint(t testing.TB, cfg *config.Config, name string) string {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.WeightsDir, 0o755); err != nil {
		t.Fatalf("mkdir weights dir: %v", err)
	}
	path := filepath.Join(cfg.Paths.WeightsDir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write checkpoint %s: %v", name, err)
	}
	return path
}
