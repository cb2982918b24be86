package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"revoice/internal/experiment"
	"revoice/internal/logging"
	"revoice/internal/manifest"
	"revoice/internal/runconfig"
	"revoice/internal/services"
	"revoice/internal/services/rvc"
)

// Clients bundles the collaborator interfaces the pipeline drives.
type Clients struct {
	Preprocessor rvc.Preprocessor
	Features     rvc.FeatureExtractor
	Pitch        rvc.PitchExtractor
	Index        rvc.IndexTrainer
	Trainer      rvc.Trainer
}

// Pipeline runs the training stages for one experiment.
type Pipeline struct {
	logger  *slog.Logger
	clients Clients
	builder *manifest.Builder
}

// New constructs a pipeline over the provided collaborator clients.
func New(logger *slog.Logger, clients Clients, builder *manifest.Builder) *Pipeline {
	return &Pipeline{
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		clients: clients,
		builder: builder,
	}
}

// Run executes all stages for the experiment in order, failing on the first
// error. A second concurrent run against the same experiment is rejected.
func (p *Pipeline) Run(ctx context.Context, exp *experiment.Experiment) error {
	if err := os.MkdirAll(exp.LogDir(), 0o755); err != nil {
		return fmt.Errorf("create experiment directory: %w", err)
	}

	lock := flock.New(exp.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return services.Wrap(services.ErrValidation, "pipeline", "lock",
			fmt.Sprintf("experiment %s already has a run in progress", exp.Name), nil)
	}
	defer func() { _ = lock.Unlock() }()

	runCtx := services.WithRunID(services.WithExperiment(ctx, exp.Name), uuid.NewString())
	runLogger := logging.WithContext(runCtx, p.logger)
	runLogger.Info("training run started",
		logging.Int("sample_rate", exp.SampleRate),
		logging.String("version", exp.Version),
		logging.Bool("index_enabled", exp.IndexEnabled),
	)

	started := time.Now()
	for _, stage := range p.stagesFor(exp) {
		if stage.Name() == StageManifest {
			if err := verifyArtifactDirs(exp); err != nil {
				return err
			}
		}
		if err := p.runStage(runCtx, stage, exp); err != nil {
			return err
		}
	}

	runLogger.Info("training run completed",
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, exp *experiment.Experiment) error {
	stageCtx := services.WithStage(ctx, stage.Name())
	logger := logging.WithContext(stageCtx, p.logger)

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("label", Label(stage.Name())),
	)
	started := time.Now()

	if err := stage.Run(stageCtx, exp); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// stagesFor returns the run order. The index stage is absent, not skipped at
// runtime, when indexing is disabled for the experiment.
func (p *Pipeline) stagesFor(exp *experiment.Experiment) []Stage {
	stages := []Stage{
		stageFunc{StagePreprocess, p.clients.Preprocessor.Preprocess},
		stageFunc{StageFeatures, p.clients.Features.ExtractFeatures},
		stageFunc{StagePitch, p.clients.Pitch.ExtractPitch},
	}
	if exp.IndexEnabled {
		stages = append(stages, stageFunc{StageIndex, p.clients.Index.TrainIndex})
	}
	stages = append(stages,
		stageFunc{StageManifest, func(ctx context.Context, exp *experiment.Experiment) error {
			_, err := p.builder.Build(exp)
			return err
		}},
		stageFunc{StageRunConfig, func(ctx context.Context, exp *experiment.Experiment) error {
			_, err := runconfig.Write(exp)
			return err
		}},
		stageFunc{StageTrain, p.clients.Trainer.Train},
	)
	return stages
}

// verifyArtifactDirs stats the four artifact directories before manifest
// reconciliation so a collaborator that silently produced nothing fails with
// a diagnostic naming the missing directory.
func verifyArtifactDirs(exp *experiment.Experiment) error {
	for _, dir := range exp.ArtifactDirs() {
		info, err := os.Stat(dir)
		if err != nil {
			return services.Wrap(services.ErrMissingDirectory, StageManifest, "verify artifacts",
				fmt.Sprintf("artifact directory %s is missing", dir), err)
		}
		if !info.IsDir() {
			return services.Wrap(services.ErrMissingDirectory, StageManifest, "verify artifacts",
				fmt.Sprintf("artifact path %s is not a directory", dir), nil)
		}
	}
	return nil
}
