package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"revoice/internal/experiment"
	"revoice/internal/inference"
	"revoice/internal/ledger"
	"revoice/internal/preflight"
	"revoice/internal/services/rvc"
)

func newInferCommand(ctx *commandContext) *cobra.Command {
	var (
		inputDir      string
		outputDir     string
		weightsDir    string
		anyCheckpoint bool
		f0Method      string
		rmsMixRate    float64
		protect       float64
		filterRadius  int
	)

	cmd := &cobra.Command{
		Use:   "infer <experiment>",
		Short: "Convert a directory of audio files with a trained checkpoint",
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

			exp, err := experiment.New(cfg, args[0], experiment.Params{})
			if err != nil {
				return err
			}

			accel, err := preflight.Gate(cfg, false)
			if err != nil {
				return err
			}

			req := inference.Request{
				InputDir:      inputDir,
				OutputDir:     outputDir,
				WeightsDir:    weightsDir,
				AnyCheckpoint: anyCheckpoint,
				F0Method:      f0Method,
				RMSMixRate:    rmsMixRate,
				Protect:       protect,
				FilterRadius:  filterRadius,
			}
			if req.WeightsDir == "" {
				req.WeightsDir = cfg.Paths.WeightsDir
			}
			if req.F0Method == "" {
				req.F0Method = cfg.Inference.F0Method
			}
			if !cmd.Flags().Changed("rms-mix-rate") {
				req.RMSMixRate = cfg.Inference.RMSMixRate
			}
			if !cmd.Flags().Changed("protect") {
				req.Protect = cfg.Inference.Protect
			}
			if !cmd.Flags().Changed("filter-radius") {
				req.FilterRadius = cfg.Inference.FilterRadius
			}

			client := rvc.NewCLI(logger,
				rvc.WithPython(cfg.Tools.Python),
				rvc.WithScriptsDir(cfg.Tools.ScriptsDir),
				rvc.WithEnv(accel.Env),
				rvc.WithDevice(accel.Device),
			)

			opts := []inference.Option{}
			if cfg.Inference.SkipCompleted {
				store, err := ledger.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, inference.WithLedger(store))
			}

			driver := inference.NewDriver(logger, client, opts...)
			summary, err := driver.Run(cmd.Context(), exp, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checkpoint: %s\n", summary.Checkpoint)
			fmt.Fprintf(out, "Converted %d file(s), skipped %d\n", len(summary.Converted), len(summary.Skipped))
			fmt.Fprintf(out, "Outputs in %s\n", summary.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory of .wav files to convert")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the experiment results dir)")
	cmd.Flags().StringVar(&weightsDir, "weights", "", "Checkpoint directory (defaults to the configured weights dir)")
	cmd.Flags().BoolVar(&anyCheckpoint, "any-checkpoint", false, "Fall back to the best checkpoint when none matches the experiment")
	cmd.Flags().StringVar(&f0Method, "f0-method", "", "Pitch extraction method")
	cmd.Flags().Float64Var(&rmsMixRate, "rms-mix-rate", 0, "Volume envelope mix rate")
	cmd.Flags().Float64Var(&protect, "protect", 0, "Voiceless consonant protection")
	cmd.Flags().IntVar(&filterRadius, "filter-radius", 0, "Median filter radius for pitch")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
