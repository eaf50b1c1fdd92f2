package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/dealflow/internal/model"
)

// Decider applies review decisions.
type Decider interface {
	Accept(s model.Suggestion) error
	Reject(s model.Suggestion)
}

// ReviewStats counts the outcome of a review.
type ReviewStats struct {
	Duration time.Duration
	Accepted int
	Rejected int
	Skipped  int
	Failed   int
}

// Reviewer walks the user through pending suggestions one at a time.
type Reviewer struct {
	writer      io.Writer
	reader      *LineReader
	progressBar *progressbar.ProgressBar
}

// NewReviewer creates a reviewer reading choices from reader.
func NewReviewer(reader io.Reader, writer io.Writer) *Reviewer {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Reviewer{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// Review prompts for a decision on each suggestion. Quitting leaves the rest
// pending and is not an error.
func (r *Reviewer) Review(ctx context.Context, pending []model.Suggestion, d Decider) (ReviewStats, error) {
	start := time.Now()
	var stats ReviewStats
	if len(pending) == 0 {
		return stats, nil
	}

	r.initProgressBar(len(pending))

	for i, s := range pending {
		if _, err := fmt.Fprintf(r.writer, "\n[%d/%d]\n%s\n", i+1, len(pending), RenderSuggestion(s)); err != nil {
			return stats, fmt.Errorf("failed to write suggestion: %w", err)
		}
		if _, err := fmt.Fprintln(r.writer, "  [A] Accept  [R] Reject  [S] Skip  [Q] Quit review"); err != nil {
			return stats, fmt.Errorf("failed to write options: %w", err)
		}

		choice, err := r.promptChoice(ctx, "Choice", []string{"a", "r", "s", "q"})
		if err != nil {
			return stats, err
		}

		switch choice {
		case "a":
			if err := d.Accept(s); err != nil {
				stats.Failed++
				r.println(FormatError(fmt.Sprintf("Could not apply suggestion: %v", err)))
			} else {
				stats.Accepted++
				r.println(FormatSuccess("Applied"))
			}
		case "r":
			d.Reject(s)
			stats.Rejected++
		case "s":
			stats.Skipped++
		case "q":
			stats.Skipped += len(pending) - i
			stats.Duration = time.Since(start)
			return stats, nil
		}
		r.updateProgress()
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// AcceptAll accepts every suggestion without prompting.
func AcceptAll(pending []model.Suggestion, d Decider) ReviewStats {
	start := time.Now()
	var stats ReviewStats
	for _, s := range pending {
		if err := d.Accept(s); err != nil {
			slog.Warn("Failed to apply suggestion", "key", s.Key(), "error", err)
			stats.Failed++
			continue
		}
		stats.Accepted++
	}
	stats.Duration = time.Since(start)
	return stats
}

// ShowSummary prints the review outcome.
func (r *Reviewer) ShowSummary(stats ReviewStats) {
	summary := fmt.Sprintf("  • Accepted: %d\n", stats.Accepted) +
		fmt.Sprintf("  • Rejected: %d\n", stats.Rejected) +
		fmt.Sprintf("  • Left pending: %d\n", stats.Skipped)
	if stats.Failed > 0 {
		summary += fmt.Sprintf("  • Failed: %d\n", stats.Failed)
	}
	r.println(RenderBox("Review Complete", strings.TrimRight(summary, "\n")))
}

func (r *Reviewer) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprint(r.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := r.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(line)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}
		r.println(FormatError("Invalid choice. Please try again."))
	}
}

func (r *Reviewer) initProgressBar(total int) {
	r.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing suggestions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (r *Reviewer) updateProgress() {
	if r.progressBar == nil {
		return
	}
	if err := r.progressBar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
	r.println("")
}

func (r *Reviewer) println(s string) {
	if _, err := fmt.Fprintln(r.writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
