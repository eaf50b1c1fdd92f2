// Package service defines the interfaces shared between application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/dealflow/internal/model"
)

// Analyzer runs the two model-backed analyses the application depends on.
type Analyzer interface {
	// AnalyzeSource infers a dashboard from CSV text carrying the row id column.
	AnalyzeSource(ctx context.Context, tableText string) (*model.Dashboard, error)
	// AnalyzeTranscripts analyzes meeting transcripts against the current deals.
	AnalyzeTranscripts(ctx context.Context, text string, currentDeals []model.Deal) (*model.TranscriptAnalysis, error)
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	// ShouldRetry reports whether a failed attempt may be retried.
	ShouldRetry func(error) bool
	// Sleep waits between attempts; it must return early when ctx is done.
	Sleep        func(ctx context.Context, d time.Duration) error
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
