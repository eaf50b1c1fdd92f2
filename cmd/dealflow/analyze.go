package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/cli"
)

func analyzeCmd() *cobra.Command {
	var (
		flags  queryFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.csv>",
		Short: "Generate a pipeline dashboard from a CRM export",
		Long: `Analyze a CRM export and print the resulting dashboard: a title and summary,
key performance indicators, charts and the extracted deals.

Use "-" to read the export from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Dashboard analysis")
			if err := loadSource(ctx, cmd, session, args[0]); err != nil {
				return err
			}

			snap := session.Snapshot()
			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(snap.Dashboard)
			}

			fmt.Fprintln(out, cli.RenderDashboard(snap.Dashboard))
			return printDeals(cmd, session, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dashboard as JSON")
	return cmd
}
