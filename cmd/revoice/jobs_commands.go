package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"revoice/internal/ledger"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the conversion job ledger",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var experimentName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversion outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context(), experimentName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No recorded jobs")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					fmt.Sprintf("%d", job.ID),
					job.Experiment,
					filepath.Base(job.InputPath),
					filepath.Base(job.Checkpoint),
					job.Status,
					job.UpdatedAt.Format(time.RFC3339),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Experiment", "Input", "Checkpoint", "Status", "Updated"},
				rows,
				1,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&experimentName, "experiment", "e", "", "Limit to one experiment")
	return cmd
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var experimentName string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove recorded conversion outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context(), experimentName); err != nil {
				return err
			}
			if experimentName == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all recorded jobs")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared recorded jobs for %s\n", experimentName)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&experimentName, "experiment", "e", "", "Limit to one experiment")
	return cmd
}
