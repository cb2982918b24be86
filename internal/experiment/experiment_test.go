package experiment_test

import (
	"errors"
	"path/filepath"
	"testing"

	"revoice/internal/config"
	"revoice/internal/experiment"
	"revoice/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Workspace = base
	cfg.Paths.DatasetDir = filepath.Join(base, "dataset")
	cfg.Paths.WeightsDir = filepath.Join(base, "weights")
	cfg.Paths.ResultsDir = filepath.Join(base, "results")
	return &cfg
}

func TestNewDerivesLayout(t *testing.T) {
	cfg := testConfig(t)
	exp, err := experiment.New(cfg, "Formal", experiment.Params{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logDir := filepath.Join(cfg.LogsRoot(), "Formal")
	if exp.LogDir() != logDir {
		t.Fatalf("unexpected log dir: %q", exp.LogDir())
	}
	if exp.GTWavsDir() != filepath.Join(logDir, "0_gt_wavs") {
		t.Fatalf("unexpected gt dir: %q", exp.GTWavsDir())
	}
	if exp.FeatureDir() != filepath.Join(logDir, "3_feature768") {
		t.Fatalf("unexpected feature dir for v2: %q", exp.FeatureDir())
	}
	if exp.F0Dir() != filepath.Join(logDir, "2a_f0") {
		t.Fatalf("unexpected f0 dir: %q", exp.F0Dir())
	}
	if exp.F0NSFDir() != filepath.Join(logDir, "2b-f0nsf") {
		t.Fatalf("unexpected f0nsf dir: %q", exp.F0NSFDir())
	}
	if exp.FilelistPath() != filepath.Join(logDir, "filelist.txt") {
		t.Fatalf("unexpected filelist path: %q", exp.FilelistPath())
	}
	if exp.TrainConfigPath() != filepath.Join(logDir, "config.json") {
		t.Fatalf("unexpected config path: %q", exp.TrainConfigPath())
	}
	if exp.ResultsDir() != filepath.Join(cfg.Paths.ResultsDir, "Formal") {
		t.Fatalf("unexpected results dir: %q", exp.ResultsDir())
	}
	if dirs := exp.ArtifactDirs(); len(dirs) != 4 || dirs[0] != exp.GTWavsDir() {
		t.Fatalf("unexpected artifact dirs: %v", dirs)
	}
}

func TestNewV1UsesNarrowFeatures(t *testing.T) {
	cfg := testConfig(t)
	exp, err := experiment.New(cfg, "Legacy", experiment.Params{Version: "v1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if exp.FeatureDim() != 256 {
		t.Fatalf("unexpected feature dim: %d", exp.FeatureDim())
	}
	if filepath.Base(exp.FeatureDir()) != "3_feature256" {
		t.Fatalf("unexpected feature dir: %q", exp.FeatureDir())
	}
}

func TestNewAppliesOverrides(t *testing.T) {
	cfg := testConfig(t)
	enabled := true
	exp, err := experiment.New(cfg, "Weekly", experiment.Params{
		SampleRate:  48000,
		BatchSize:   4,
		TotalEpochs: 50,
		SaveEvery:   5,
		IndexFlag:   &enabled,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if exp.SampleRate != 48000 || exp.BatchSize != 4 || exp.TotalEpochs != 50 || exp.SaveEvery != 5 {
		t.Fatalf("overrides not applied: %+v", exp)
	}
	if !exp.IndexEnabled {
		t.Fatal("index flag override not applied")
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	cfg := testConfig(t)
	cases := []struct {
		name   string
		exp    string
		params experiment.Params
	}{
		{"empty name", "", experiment.Params{}},
		{"path in name", "a/b", experiment.Params{}},
		{"bad rate", "X", experiment.Params{SampleRate: 44100}},
		{"bad version", "X", experiment.Params{Version: "v9"}},
		{"save beyond epochs", "X", experiment.Params{TotalEpochs: 5, SaveEvery: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := experiment.New(cfg, tc.exp, tc.params)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
