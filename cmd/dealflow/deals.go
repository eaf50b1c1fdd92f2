package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/cli"
)

func dealsCmd() *cobra.Command {
	var (
		flags queryFlags
		show  int
	)

	cmd := &cobra.Command{
		Use:   "deals <file.csv>",
		Short: "List, filter and inspect the deals in a CRM export",
		Long: `Analyze a CRM export and list its deals with optional filtering, sorting and
pagination. Use --show with a row id to print one deal alongside every
column of its original row.`,
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

			if cmd.Flags().Changed("show") {
				d, row, ok := session.DealDetail(show)
				if !ok {
					return fmt.Errorf("no deal with row id %d", show)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDealDetail(d, row))
				return nil
			}

			return printDeals(cmd, session, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&show, "show", 0, "show the deal with this row id and its original data")
	return cmd
}
