package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/dealflow/internal/app"
	"github.com/Veraticus/dealflow/internal/cli"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/config"
	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/inference"
	"github.com/Veraticus/dealflow/internal/ingest"
)

// newGateway builds the inference gateway from configuration.
func newGateway() (*inference.Gateway, error) {
	cfg, err := config.LoadLLMConfig(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("LLM configuration is incomplete", err)
	}

	provider, err := inference.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}

	prompts, err := inference.NewPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	slog.Debug("Inference gateway configured", "provider", cfg.Provider, "model", cfg.Model)
	return inference.NewGateway(inference.Deps{Provider: provider, Prompts: prompts}, cfg)
}

// newSession creates a session backed by the configured gateway.
func newSession() (*app.Session, error) {
	gateway, err := newGateway()
	if err != nil {
		return nil, err
	}
	return app.NewSession(gateway, slog.Default())
}

// readTable decodes a CSV export from path, or from stdin when path is "-".
func readTable(path string) (*ingest.Table, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(config.ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				slog.Warn("Failed to close CSV file", "path", path, "error", closeErr)
			}
		}()
		r = f
	}

	table, err := ingest.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// loadSource reads path and runs the dashboard analysis behind a spinner.
func loadSource(ctx context.Context, cmd *cobra.Command, session *app.Session, path string) error {
	table, err := readTable(path)
	if err != nil {
		return err
	}

	err = cli.WithSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Analyzing %d rows of %s...", len(table.Rows), filepath.Base(path)),
		func(ctx context.Context) error {
			return session.LoadSource(ctx, path, table)
		})
	if err != nil {
		return common.NewUserError(common.Describe(err), err)
	}
	return nil
}

// readTranscripts extracts and joins the text of every transcript file plus
// any inline text.
func readTranscripts(paths []string, text string) (string, error) {
	texts := make([]string, 0, len(paths)+1)
	for _, p := range config.ExpandPaths(paths) {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("failed to read transcript %s: %w", p, err)
		}
		extracted, err := ingest.ExtractText(filepath.Base(p), data)
		if err != nil {
			return "", common.NewUserError(common.Describe(err), err)
		}
		texts = append(texts, extracted)
	}
	if text != "" {
		texts = append(texts, text)
	}
	return ingest.JoinTranscripts(texts), nil
}

type queryFlags struct {
	stage   string
	size    string
	sort    string
	page    int
	perPage int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.stage, "stage", "", "only show deals in this stage")
	cmd.Flags().StringVar(&f.size, "size", "", "only show deals of this size (<1000, 1000-5000, 5000-10000, >10000)")
	cmd.Flags().StringVar(&f.sort, "sort", string(deals.SortAmountDesc), "sort order (amount-desc, amount-asc, name-asc, name-desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.perPage, "per-page", deals.DefaultPerPage, "deals per page")
}

func (f *queryFlags) query() (deals.Query, error) {
	q := deals.Query{
		Stage:   f.stage,
		Size:    deals.SizeBucket(f.size),
		Sort:    deals.SortOrder(f.sort),
		Page:    f.page,
		PerPage: f.perPage,
	}
	if err := q.Validate(); err != nil {
		return deals.Query{}, err
	}
	return q, nil
}

// printDeals prints one page of deals selected by flags.
func printDeals(cmd *cobra.Command, session *app.Session, flags *queryFlags) error {
	q, err := flags.query()
	if err != nil {
		return err
	}
	page, err := session.QueryDeals(q)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDealsPage(page))
	return nil
}
