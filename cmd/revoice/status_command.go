package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"revoice/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show platform, tool, and directory readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Tools", colorize) {
				fmt.Fprintln(out, line)
			}
			rows := make([][]string, 0, 4)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				available := "yes"
				detail := status.Description
				if !status.Available {
					available = "no"
					if status.Detail != "" {
						detail = status.Detail
					}
				}
				rows = append(rows, []string{status.Name, status.Command, available, yesNo(status.Optional), detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "Available", "Optional", "Detail"},
				rows,
			))
			return nil
		},
	}
}
