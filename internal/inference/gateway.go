package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

var _ service.Analyzer = (*Gateway)(nil)

// transientMarkers identify server-side overload in provider error text.
var transientMarkers = []string{
	"500", "502", "503", "504",
	"overloaded", "unavailable", "server_error",
}

// Deps contains the dependencies of a Gateway.
type Deps struct {
	// Provider sends prompts to the language model.
	Provider Provider
	// Prompts renders the prompt templates.
	Prompts *PromptBuilder
	// Sleep waits between retries. Nil uses a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Provider == nil {
		return fmt.Errorf("provider dependency is required")
	}
	if d.Prompts == nil {
		return fmt.Errorf("prompt builder dependency is required")
	}
	return nil
}

// Gateway runs the dashboard and transcript analyses against a provider.
type Gateway struct {
	provider    Provider
	prompts     *PromptBuilder
	limiter     *rate.Limiter
	retry       service.RetryOptions
	temperature float64
	maxTokens   int
}

// NewGateway creates a gateway. Zero retry settings in cfg fall back to
// DefaultMaxRetries and DefaultRetryDelay.
func NewGateway(deps Deps, cfg Config) (*Gateway, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	return &Gateway{
		provider: deps.Provider,
		prompts:  deps.Prompts,
		limiter:  newRateLimiter(cfg.RateLimit),
		retry: service.RetryOptions{
			MaxAttempts:  maxRetries + 1,
			InitialDelay: retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			ShouldRetry:  common.IsRetryable,
			Sleep:        deps.Sleep,
		},
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// AnalyzeSource infers a dashboard from CSV text that carries the row id column.
func (g *Gateway) AnalyzeSource(ctx context.Context, tableText string) (*model.Dashboard, error) {
	logger := slog.With("run_id", uuid.NewString(), "operation", DashboardSchemaName, "provider", g.provider.Name())

	if size := utf8.RuneCountInString(tableText); size > MaxInputChars {
		return nil, fmt.Errorf("%w: CSV data is %d characters, limit is %d", common.ErrSizeLimitExceeded, size, MaxInputChars)
	}

	prompt, err := g.prompts.BuildDashboardPrompt(tableText)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := g.generate(ctx, logger, Request{
		Prompt:      prompt,
		Schema:      dashboardSchema,
		SchemaName:  "CRMDashboard",
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		logger.Error("Dashboard analysis failed", "error", err)
		return nil, err
	}

	dash, err := decodeDashboard(text)
	if err != nil {
		logger.Error("Dashboard response rejected", "error", err, "content_length", len(text))
		return nil, err
	}

	logger.Info("Dashboard analysis complete",
		"duration", time.Since(start),
		"kpis", len(dash.Kpis),
		"charts", len(dash.Charts),
		"deals", len(dash.Deals))

	return dash, nil
}

// AnalyzeTranscripts analyzes meeting transcripts and proposes changes to currentDeals.
func (g *Gateway) AnalyzeTranscripts(ctx context.Context, text string, currentDeals []model.Deal) (*model.TranscriptAnalysis, error) {
	logger := slog.With("run_id", uuid.NewString(), "operation", TranscriptSchemaName, "provider", g.provider.Name())

	dealsJSON, err := MarshalDeals(currentDeals)
	if err != nil {
		return nil, err
	}

	if size := utf8.RuneCountInString(text) + utf8.RuneCountInString(dealsJSON); size > MaxInputChars {
		return nil, fmt.Errorf("%w: transcripts and deal data are %d characters, limit is %d", common.ErrSizeLimitExceeded, size, MaxInputChars)
	}

	prompt, err := g.prompts.BuildTranscriptPrompt(text, dealsJSON)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := g.generate(ctx, logger, Request{
		Prompt:      prompt,
		Schema:      transcriptSchema,
		SchemaName:  "TranscriptAnalysis",
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		logger.Error("Transcript analysis failed", "error", err)
		return nil, err
	}

	analysis, err := decodeTranscriptAnalysis(raw)
	if err != nil {
		logger.Error("Transcript response rejected", "error", err, "content_length", len(raw))
		return nil, err
	}

	for i := range analysis.Creations {
		c := &analysis.Creations[i]
		c.PossibleDuplicateOf = possibleDuplicate(c.Deal.DealName, currentDeals)
		if c.PossibleDuplicateOf != nil {
			logger.Warn("Creation suggestion resembles an existing deal",
				"deal_name", c.Deal.DealName,
				"row_id", *c.PossibleDuplicateOf)
		}
	}

	logger.Info("Transcript analysis complete",
		"duration", time.Since(start),
		"meetings", len(analysis.Meetings),
		"updates", len(analysis.Updates),
		"creations", len(analysis.Creations))

	return analysis, nil
}

// generate calls the provider under the rate limit and retry policy.
// Exhausted retries surface as ErrTransientService wrapping the last cause.
func (g *Gateway) generate(ctx context.Context, logger *slog.Logger, req Request) (string, error) {
	var text string
	attempts := 0

	err := common.WithRetry(ctx, func() error {
		attempts++
		if err := waitForToken(ctx, g.limiter); err != nil {
			return err
		}

		out, err := g.provider.Generate(ctx, req)
		if err != nil {
			return classifyProviderError(err)
		}
		if strings.TrimSpace(out) == "" {
			return common.ErrEmptyResponse
		}

		text = out
		return nil
	}, g.retry)

	if err != nil {
		if errors.Is(err, common.ErrMaxRetries) {
			return "", fmt.Errorf("%w: %w", common.ErrTransientService, err)
		}
		return "", err
	}

	logger.Debug("Model response received", "attempts", attempts, "content_length", len(text))
	return text, nil
}

// classifyProviderError marks server overload as retryable.
func classifyProviderError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return &common.RetryableError{Err: err, Retryable: true}
		}
	}
	return err
}

// possibleDuplicate returns the row id of the existing deal whose name is
// closest to name, if it is within a small edit distance.
func possibleDuplicate(name string, deals []model.Deal) *int {
	needle := normalizeName(name)
	if needle == "" {
		return nil
	}

	best := -1
	var bestID int
	for _, d := range deals {
		candidate := normalizeName(d.DealName)
		if candidate == "" || candidate == strings.ToLower(model.NotAvailable) {
			continue
		}
		dist := levenshtein.ComputeDistance(needle, candidate)
		if dist > duplicateTolerance(needle, candidate) {
			continue
		}
		if best < 0 || dist < best {
			best = dist
			bestID = d.RowID
		}
	}

	if best < 0 {
		return nil
	}
	return &bestID
}

// duplicateTolerance allows one edit per five characters of the shorter name,
// and at least one.
func duplicateTolerance(a, b string) int {
	n := min(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return max(1, n/5)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
