package inference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"revoice/internal/checkpoint"
	"revoice/internal/experiment"
	"revoice/internal/ledger"
	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/services/rvc"
)

// Request describes one batch conversion run.
type Request struct {
	InputDir   string
	WeightsDir string
	// OutputDir overrides the experiment results directory when set.
	OutputDir string
	// AnyCheckpoint falls back to the best checkpoint in the weights
	// directory when none matches the experiment prefix.
	AnyCheckpoint bool

	F0Method     string
	RMSMixRate   float64
	Protect      float64
	FilterRadius int
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Checkpoint string
	OutputDir  string
	Converted  []string
	Skipped    []string
}

// Option configures the driver.
type Option func(*Driver)

// WithLedger enables skip-completed behavior backed by the job store.
func WithLedger(store *ledger.Store) Option {
	return func(d *Driver) {
		d.store = store
	}
}

// WithProgressWriter redirects progress bar output, primarily for tests.
func WithProgressWriter(w io.Writer) Option {
	return func(d *Driver) {
		if w != nil {
			d.progress = w
		}
	}
}

// Driver runs conversions over a directory of input files.
type Driver struct {
	converter rvc.Converter
	store     *ledger.Store
	logger    *slog.Logger
	progress  io.Writer
}

// NewDriver constructs a batch driver.
func NewDriver(logger *slog.Logger, converter rvc.Converter, opts ...Option) *Driver {
	d := &Driver{
		converter: converter,
		logger:    logging.NewComponentLogger(logger, "inference"),
		progress:  os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run converts every input file in order. All preconditions are checked
// before the first conversion launches.
func (d *Driver) Run(ctx context.Context, exp *experiment.Experiment, req Request) (*Summary, error) {
	inputs, err := discoverInputs(req.InputDir)
	if err != nil {
		return nil, err
	}

	resolve := checkpoint.Select
	if req.AnyCheckpoint {
		resolve = checkpoint.Resolve
	}
	ckpt, err := resolve(req.WeightsDir, exp.Name)
	if err != nil {
		return nil, err
	}
	ckptBase := checkpoint.Base(ckpt)

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = exp.ResultsDir()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}

	runCtx := services.WithExperiment(ctx, exp.Name)
	logger := logging.WithContext(runCtx, d.logger)
	logger.Info("batch conversion started",
		logging.String("checkpoint", ckpt),
		logging.Int("inputs", len(inputs)),
	)

	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(d.progress),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionClearOnFinish(),
	)

	summary := &Summary{Checkpoint: ckpt, OutputDir: outputDir}
	for i, input := range inputs {
		jobCtx := services.WithJobIndex(runCtx, i+1)
		jobLogger := logging.WithContext(jobCtx, d.logger)

		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output := filepath.Join(outputDir, fmt.Sprintf("%s_%s_converted.wav", stem, ckptBase))

		if d.store != nil {
			done, err := d.store.IsCompleted(jobCtx, output)
			if err != nil {
				return summary, fmt.Errorf("consult job ledger: %w", err)
			}
			if done {
				jobLogger.Info("skipping completed conversion", logging.String("output", output))
				summary.Skipped = append(summary.Skipped, input)
				_ = bar.Add(1)
				continue
			}
		}

		convErr := d.converter.Convert(jobCtx, rvc.ConvertRequest{
			CheckpointPath: ckpt,
			InputPath:      input,
			OutputPath:     output,
			F0Method:       req.F0Method,
			RMSMixRate:     req.RMSMixRate,
			Protect:        req.Protect,
			FilterRadius:   req.FilterRadius,
		})
		d.record(jobCtx, jobLogger, exp, input, output, ckpt, convErr)
		if convErr != nil {
			jobLogger.Error("conversion failed", logging.String("input", input), logging.Error(convErr))
			return summary, convErr
		}
		summary.Converted = append(summary.Converted, output)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	logger.Info("batch conversion completed",
		logging.Int("written", len(summary.Converted)),
		logging.Int("skipped", len(summary.Skipped)),
	)
	return summary, nil
}

func (d *Driver) record(ctx context.Context, logger *slog.Logger, exp *experiment.Experiment, input, output, ckpt string, convErr error) {
	if d.store == nil {
		return
	}
	job := ledger.Job{
		Experiment: exp.Name,
		InputPath:  input,
		OutputPath: output,
		Checkpoint: ckpt,
	}
	var err error
	if convErr != nil {
		job.Detail = convErr.Error()
		err = d.store.RecordFailed(ctx, job)
	} else {
		err = d.store.RecordCompleted(ctx, job)
	}
	if err != nil {
		logger.Error("failed to record job outcome", logging.Error(err))
	}
}

// discoverInputs lists direct children of dir with a .wav extension, sorted
// bytewise. Subdirectories are never descended into.
func discoverInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrMissingDirectory, "inference", "discover",
				fmt.Sprintf("input directory %s does not exist", dir), nil)
		}
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		inputs = append(inputs, filepath.Join(dir, entry.Name()))
	}
	if len(inputs) == 0 {
		return nil, services.Wrap(services.ErrNoInputFiles, "inference", "discover",
			fmt.Sprintf("no .wav files in %s", dir), nil)
	}
	sort.Strings(inputs)
	return inputs, nil
}
