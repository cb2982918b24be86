package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"revoice/internal/experiment"
	"revoice/internal/manifest"
	"revoice/internal/pipeline"
	"revoice/internal/preflight"
	"revoice/internal/services/rvc"
)

func newTrainCommand(ctx *commandContext) *cobra.Command {
	var (
		sampleRate int
		version    string
		batchSize  int
		epochs     int
		saveEvery  int
		workers    int
		indexFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "train <experiment>",
		Short: "Run the full training pipeline for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			params := experiment.Params{
				SampleRate:  sampleRate,
				Version:     version,
				BatchSize:   batchSize,
				TotalEpochs: epochs,
				SaveEvery:   saveEvery,
				Workers:     workers,
			}
			if cmd.Flags().Changed("index") {
				params.IndexFlag = &indexFlag
			}
			exp, err := experiment.New(cfg, args[0], params)
			if err != nil {
				return err
			}

			accel, err := preflight.Gate(cfg, true)
			if err != nil {
				return err
			}

			client := rvc.NewCLI(logger,
				rvc.WithPython(cfg.Tools.Python),
				rvc.WithScriptsDir(cfg.Tools.ScriptsDir),
				rvc.WithEnv(accel.Env),
				rvc.WithDevice(accel.Device),
			)
			pipe := pipeline.New(logger, pipeline.Clients{
				Preprocessor: client,
				Features:     client,
				Pitch:        client,
				Index:        client,
				Trainer:      client,
			}, manifest.NewBuilder(logger))

			if err := pipe.Run(cmd.Context(), exp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Training completed for experiment %s\n", exp.Name)
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleRate, "rate", 0, "Target sample rate (32000, 40000, 48000)")
	cmd.Flags().StringVar(&version, "version", "", "Model version (v1 or v2)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Training batch size")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "Total epoch budget")
	cmd.Flags().IntVar(&saveEvery, "save-every", 0, "Checkpoint save interval in epochs")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers for preprocessing and pitch extraction")
	cmd.Flags().BoolVar(&indexFlag, "index", false, "Train the retrieval index stage")
	return cmd
}
