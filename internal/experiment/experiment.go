package experiment

import (
	"fmt"
	"path/filepath"
	"strings"

	"revoice/internal/config"
	"revoice/internal/services"
)

// Artifact subdirectory names are fixed by the collaborator scripts; the
// feature directory name encodes the feature dimensionality.
const (
	gtWavsDirName = "0_gt_wavs"
	f0DirName     = "2a_f0"
	f0nsfDirName  = "2b-f0nsf"

	filelistName    = "filelist.txt"
	trainConfigName = "config.json"
	lockName        = "revoice.lock"
)

// Experiment identifies one training run. Immutable for the run's duration.
type Experiment struct {
	Name        string
	SampleRate  int
	Version     string
	BatchSize   int
	TotalEpochs int
	SaveEvery   int
	Workers     int
	F0Method    string

	PretrainedG string
	PretrainedD string

	IndexEnabled  bool
	KMeansCenters int
	IndexBatchAdd int

	// DatasetDir holds the raw training audio consumed by the preprocessor.
	DatasetDir string

	logsRoot    string
	resultsRoot string
}

// Params captures the per-run overrides applied on top of config defaults.
// Zero values fall back to the configured default.
type Params struct {
	SampleRate  int
	Version     string
	BatchSize   int
	TotalEpochs int
	SaveEvery   int
	Workers     int
	IndexFlag   *bool
}

// New builds a validated Experiment from configuration and overrides.
func New(cfg *config.Config, name string, params Params) (*Experiment, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "experiment", "construct", "configuration is required", nil)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "experiment", "construct", "experiment name is required", nil)
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return nil, services.Wrap(services.ErrValidation, "experiment", "construct", fmt.Sprintf("experiment name %q must be a bare directory name", name), nil)
	}

	exp := &Experiment{
		Name:          name,
		SampleRate:    cfg.Training.SampleRate,
		Version:       cfg.Training.Version,
		BatchSize:     cfg.Training.BatchSize,
		TotalEpochs:   cfg.Training.TotalEpochs,
		SaveEvery:     cfg.Training.SaveEvery,
		Workers:       cfg.Training.Workers,
		F0Method:      cfg.Training.F0Method,
		PretrainedG:   cfg.Training.PretrainedGenerator,
		PretrainedD:   cfg.Training.PretrainedDiscriminator,
		IndexEnabled:  cfg.Index.Enabled,
		KMeansCenters: cfg.Index.KMeansCenters,
		IndexBatchAdd: cfg.Index.BatchAdd,
		DatasetDir:    cfg.Paths.DatasetDir,
		logsRoot:      cfg.LogsRoot(),
		resultsRoot:   cfg.Paths.ResultsDir,
	}

	if params.SampleRate != 0 {
		exp.SampleRate = params.SampleRate
	}
	if params.Version != "" {
		exp.Version = strings.ToLower(strings.TrimSpace(params.Version))
	}
	if params.BatchSize != 0 {
		exp.BatchSize = params.BatchSize
	}
	if params.TotalEpochs != 0 {
		exp.TotalEpochs = params.TotalEpochs
	}
	if params.SaveEvery != 0 {
		exp.SaveEvery = params.SaveEvery
	}
	if params.Workers != 0 {
		exp.Workers = params.Workers
	}
	if params.IndexFlag != nil {
		exp.IndexEnabled = *params.IndexFlag
	}

	if err := exp.validate(); err != nil {
		return nil, err
	}
	return exp, nil
}

func (e *Experiment) validate() error {
	switch e.SampleRate {
	case 32000, 40000, 48000:
	default:
		return services.Wrap(services.ErrValidation, "experiment", "validate", fmt.Sprintf("sample rate %d is not one of 32000, 40000, 48000", e.SampleRate), nil)
	}
	switch e.Version {
	case "v1", "v2":
	default:
		return services.Wrap(services.ErrValidation, "experiment", "validate", fmt.Sprintf("model version %q must be v1 or v2", e.Version), nil)
	}
	if e.BatchSize <= 0 {
		return services.Wrap(services.ErrValidation, "experiment", "validate", "batch size must be positive", nil)
	}
	if e.TotalEpochs <= 0 {
		return services.Wrap(services.ErrValidation, "experiment", "validate", "total epochs must be positive", nil)
	}
	if e.SaveEvery <= 0 || e.SaveEvery > e.TotalEpochs {
		return services.Wrap(services.ErrValidation, "experiment", "validate", "save interval must be positive and within the epoch budget", nil)
	}
	if e.Workers <= 0 {
		return services.Wrap(services.ErrValidation, "experiment", "validate", "worker count must be positive", nil)
	}
	return nil
}

// FeatureDim returns the content-feature dimensionality for the model version.
func (e *Experiment) FeatureDim() int {
	if e.Version == "v1" {
		return 256
	}
	return 768
}

// LogDir returns the experiment's tree root under the workspace logs directory.
func (e *Experiment) LogDir() string {
	return filepath.Join(e.logsRoot, e.Name)
}

// GTWavsDir returns the ground-truth waveform directory.
func (e *Experiment) GTWavsDir() string {
	return filepath.Join(e.LogDir(), gtWavsDirName)
}

// FeatureDir returns the content-feature directory; the name encodes the
// feature dimensionality.
func (e *Experiment) FeatureDir() string {
	return filepath.Join(e.LogDir(), fmt.Sprintf("3_feature%d", e.FeatureDim()))
}

// F0Dir returns the raw pitch track directory.
func (e *Experiment) F0Dir() string {
	return filepath.Join(e.LogDir(), f0DirName)
}

// F0NSFDir returns the smoothed (NSF) pitch track directory.
func (e *Experiment) F0NSFDir() string {
	return filepath.Join(e.LogDir(), f0nsfDirName)
}

// ArtifactDirs returns the four per-sample artifact directories in manifest
// field order.
func (e *Experiment) ArtifactDirs() []string {
	return []string{e.GTWavsDir(), e.FeatureDir(), e.F0Dir(), e.F0NSFDir()}
}

// FilelistPath returns the training manifest location.
func (e *Experiment) FilelistPath() string {
	return filepath.Join(e.LogDir(), filelistName)
}

// TrainConfigPath returns the synthesized training configuration location.
func (e *Experiment) TrainConfigPath() string {
	return filepath.Join(e.LogDir(), trainConfigName)
}

// LockPath returns the per-experiment run lock location.
func (e *Experiment) LockPath() string {
	return filepath.Join(e.LogDir(), lockName)
}

// ResultsDir returns the experiment's inference output directory.
func (e *Experiment) ResultsDir() string {
	return filepath.Join(e.resultsRoot, e.Name)
}
