package rvc

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"revoice/internal/experiment"
	"revoice/internal/logging"
	"revoice/internal/services"
)

var commandContext = exec.CommandContext

// Collaborator script names, fixed by the bundled pipeline scripts.
const (
	preprocessScript = "trainset_preprocess_pipeline_print.py"
	featureScript    = "extract_feature_print.py"
	pitchScript      = "extract_f0_print.py"
	indexScript      = "train_index.py"
	trainScript      = "train_nsf_sim_cache_sid_load_pretrain.py"
	convertScript    = "infer_cli.py"
)

// Preprocessor slices and resamples the raw dataset into ground-truth wavs.
type Preprocessor interface {
	Preprocess(ctx context.Context, exp *experiment.Experiment) error
}

// FeatureExtractor encodes content features for every preprocessed sample.
type FeatureExtractor interface {
	ExtractFeatures(ctx context.Context, exp *experiment.Experiment) error
}

// PitchExtractor computes the raw and smoothed pitch tracks.
type PitchExtractor interface {
	ExtractPitch(ctx context.Context, exp *experiment.Experiment) error
}

// IndexTrainer builds the retrieval index over the extracted features.
type IndexTrainer interface {
	TrainIndex(ctx context.Context, exp *experiment.Experiment) error
}

// Trainer runs the model training loop.
type Trainer interface {
	Train(ctx context.Context, exp *experiment.Experiment) error
}

// ConvertRequest describes one inference job.
type ConvertRequest struct {
	CheckpointPath string
	InputPath      string
	OutputPath     string
	F0Method       string
	RMSMixRate     float64
	Protect        float64
	FilterRadius   int
}

// Converter performs voice conversion for a single input file.
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithPython overrides the interpreter binary.
func WithPython(python string) Option {
	return func(c *CLI) {
		if python != "" {
			c.python = python
		}
	}
}

// WithScriptsDir sets the directory holding the collaborator scripts.
func WithScriptsDir(dir string) Option {
	return func(c *CLI) {
		if dir != "" {
			c.scriptsDir = dir
		}
	}
}

// WithEnv appends accelerator environment variables to every invocation.
func WithEnv(env []string) Option {
	return func(c *CLI) {
		c.env = append(c.env, env...)
	}
}

// WithDevice sets the compute device hint passed to the feature extractor.
func WithDevice(device string) Option {
	return func(c *CLI) {
		if device != "" {
			c.device = device
		}
	}
}

// CLI shells out to the collaborator scripts. It implements every client
// interface in the package.
type CLI struct {
	python     string
	scriptsDir string
	device     string
	env        []string
	logger     *slog.Logger
}

// NewCLI constructs a collaborator client using defaults.
func NewCLI(logger *slog.Logger, opts ...Option) *CLI {
	cli := &CLI{
		python: "python3",
		device: "cpu",
		logger: logging.NewComponentLogger(logger, "rvc"),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Preprocess slices the dataset into ground-truth wavs under the experiment
// tree.
func (c *CLI) Preprocess(ctx context.Context, exp *experiment.Experiment) error {
	return c.run(ctx, "preprocess", preprocessScript,
		exp.DatasetDir,
		fmt.Sprintf("%d", exp.SampleRate),
		fmt.Sprintf("%d", exp.Workers),
		exp.LogDir(),
		"False",
	)
}

// ExtractFeatures encodes content features for the experiment's samples.
func (c *CLI) ExtractFeatures(ctx context.Context, exp *experiment.Experiment) error {
	return c.run(ctx, "features", featureScript,
		c.device,
		"1", "0", "0",
		exp.LogDir(),
		exp.Version,
	)
}

// ExtractPitch computes raw and smoothed pitch tracks.
func (c *CLI) ExtractPitch(ctx context.Context, exp *experiment.Experiment) error {
	return c.run(ctx, "pitch", pitchScript,
		exp.LogDir(),
		fmt.Sprintf("%d", exp.Workers),
		exp.F0Method,
	)
}

// TrainIndex builds the retrieval index from the extracted features.
func (c *CLI) TrainIndex(ctx context.Context, exp *experiment.Experiment) error {
	return c.run(ctx, "index", indexScript,
		"--exp", exp.Name,
		"--feat-dir", exp.FeatureDir(),
		"--feat-dim", fmt.Sprintf("%d", exp.FeatureDim()),
		"--kmeans", fmt.Sprintf("%d", exp.KMeansCenters),
		"--batch-add", fmt.Sprintf("%d", exp.IndexBatchAdd),
		"--out-dir", exp.LogDir(),
	)
}

// Train runs the model training loop to the experiment's epoch budget.
func (c *CLI) Train(ctx context.Context, exp *experiment.Experiment) error {
	return c.run(ctx, "train", trainScript,
		"-e", exp.Name,
		"-sr", rateTag(exp.SampleRate),
		"-f0", "1",
		"-bs", fmt.Sprintf("%d", exp.BatchSize),
		"-te", fmt.Sprintf("%d", exp.TotalEpochs),
		"-se", fmt.Sprintf("%d", exp.SaveEvery),
		"-pg", exp.PretrainedG,
		"-pd", exp.PretrainedD,
		"-l", "0",
		"-c", "0",
		"-sw", "0",
		"-v", exp.Version,
	)
}

// Convert performs voice conversion for one input file.
func (c *CLI) Convert(ctx context.Context, req ConvertRequest) error {
	return c.run(ctx, "convert", convertScript,
		"--model_name", req.CheckpointPath,
		"--input_path", req.InputPath,
		"--opt_path", req.OutputPath,
		"--f0method", req.F0Method,
		"--rms_mix_rate", fmt.Sprintf("%g", req.RMSMixRate),
		"--protect", fmt.Sprintf("%g", req.Protect),
		"--filter_radius", fmt.Sprintf("%d", req.FilterRadius),
	)
}

func (c *CLI) run(ctx context.Context, stage, script string, args ...string) error {
	scriptPath := script
	if c.scriptsDir != "" {
		scriptPath = filepath.Join(c.scriptsDir, script)
	}

	cmd := commandContext(ctx, c.python, append([]string{scriptPath}, args...)...) //nolint:gosec
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalStage, stage, "start "+script,
			fmt.Sprintf("interpreter %s", c.python), err)
	}

	logger := c.logger.With(logging.String(logging.FieldStage, stage))
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			logger.Debug("collaborator output", logging.String("line", line))
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		_ = cmd.Wait()
		return services.Wrap(services.ErrExternalStage, stage, "read output", script, scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return services.Wrap(services.ErrExternalStage, stage, "run "+script, "collaborator exited with failure", err)
	}
	return nil
}

// rateTag maps a target sample rate to the trainer's short form.
func rateTag(sampleRate int) string {
	return fmt.Sprintf("%dk", sampleRate/1000)
}

var (
	_ Preprocessor     = (*CLI)(nil)
	_ FeatureExtractor = (*CLI)(nil)
	_ PitchExtractor   = (*CLI)(nil)
	_ IndexTrainer     = (*CLI)(nil)
	_ Trainer          = (*CLI)(nil)
	_ Converter        = (*CLI)(nil)
)
