package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/cli"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/tui"
)

func assistCmd() *cobra.Command {
	var (
		flags          queryFlags
		transcripts    []string
		text           string
		nonInteractive bool
		acceptAll      bool
		promptReview   bool
	)

	cmd := &cobra.Command{
		Use:   "assist <file.csv>",
		Short: "Propose deal updates and new deals from meeting transcripts",
		Long: `Analyze a CRM export, then analyze one or more meeting transcripts against its
deals. Meeting summaries are printed and every proposed change is reviewed
before it is applied.

Transcripts may be plain text, PDF or DOCX files. By default suggestions are
reviewed in a full-screen interface; --prompt reviews them line by line and
--non-interactive only prints them. --accept-all applies every suggestion.`,
		Example: `  dealflow assist deals.csv --transcript call1.pdf --transcript call2.docx
  dealflow assist deals.csv --text "Spoke with Umbrella, they want to move ahead." --accept-all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(transcripts) == 0 && strings.TrimSpace(text) == "" {
				return fmt.Errorf("provide at least one --transcript or --text")
			}

			transcriptText, err := readTranscripts(transcripts, text)
			if err != nil {
				return err
			}

			session, err := newSession()
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Analysis")
			if err := loadSource(ctx, cmd, session, args[0]); err != nil {
				return err
			}

			var analysis *model.TranscriptAnalysis
			err = cli.WithSpinner(ctx, cmd.ErrOrStderr(), "Analyzing transcripts...", func(ctx context.Context) error {
				var analyzeErr error
				analysis, analyzeErr = session.AnalyzeTranscripts(ctx, transcriptText)
				return analyzeErr
			})
			if err != nil {
				return common.NewUserError(common.Describe(err), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTranscriptAnalysis(analysis))

			pending := session.Pending()
			if len(pending) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No changes to the pipeline were suggested."))
				return nil
			}

			switch {
			case acceptAll:
				stats := cli.AcceptAll(pending, session)
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Applied %d of %d suggestions", stats.Accepted, len(pending))))
				if stats.Failed > 0 {
					fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d suggestions could not be applied", stats.Failed)))
				}

			case nonInteractive:
				for _, s := range pending {
					fmt.Fprintln(out, cli.RenderSuggestion(s))
				}
				return nil

			case promptReview:
				reviewer := cli.NewReviewer(cmd.InOrStdin(), out)
				stats, err := reviewer.Review(ctx, pending, session)
				if err != nil {
					return err
				}
				reviewer.ShowSummary(stats)

			default:
				if err := tui.Run(ctx, session, tui.WithPerPage(flags.perPage)); err != nil {
					return err
				}
			}

			slog.Info("Review finished", "pending", len(session.Pending()))
			return printDeals(cmd, session, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVarP(&transcripts, "transcript", "t", nil, "transcript file (.txt, .pdf, .docx); repeatable")
	cmd.Flags().StringVar(&text, "text", "", "transcript text to analyze")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "print suggestions without reviewing them")
	cmd.Flags().BoolVar(&acceptAll, "accept-all", false, "apply every suggestion without reviewing")
	cmd.Flags().BoolVar(&promptReview, "prompt", false, "review suggestions line by line instead of full screen")
	cmd.MarkFlagsMutuallyExclusive("prompt", "non-interactive")
	cmd.MarkFlagsMutuallyExclusive("prompt", "accept-all")
	return cmd
}
