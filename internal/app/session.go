// Package app owns the in-memory state of one analysis session and is the only
// place that state is mutated.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/ingest"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/reconcile"
	"github.com/Veraticus/dealflow/internal/rowstore"
	"github.com/Veraticus/dealflow/internal/service"
	"github.com/Veraticus/dealflow/internal/suggestion"
)

// Session aggregates the row store, deal model, pending suggestions and the
// results of both analyses. All methods are safe for concurrent use.
//
// Every reset or new load starts a new generation. Analyses remember the
// generation they started in and their results are discarded with ErrStale
// when it has moved on.
type Session struct {
	analyzer service.Analyzer
	logger   *slog.Logger

	genCtx    context.Context
	genCancel context.CancelFunc

	rows        *rowstore.Store
	deals       *deals.Model
	suggestions *suggestion.Set
	engine      *reconcile.Engine
	dashboard   *model.Dashboard
	transcript  *model.TranscriptAnalysis
	sourceErr   error
	analysisErr error
	sourceName  string

	generation           uint64
	mu                   sync.Mutex
	loadingSource        bool
	analyzingTranscripts bool
}

// NewSession creates an empty session backed by analyzer.
func NewSession(analyzer service.Analyzer, logger *slog.Logger) (*Session, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer dependency is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		analyzer: analyzer,
		logger:   logger,
	}
	s.genCtx, s.genCancel = context.WithCancel(context.Background())
	return s, nil
}

// nextGeneration cancels work started in the current generation and clears
// all state. Callers hold s.mu.
func (s *Session) nextGeneration() uint64 {
	s.genCancel()
	s.genCtx, s.genCancel = context.WithCancel(context.Background())
	s.generation++

	s.rows = nil
	s.deals = nil
	s.suggestions = nil
	s.engine = nil
	s.dashboard = nil
	s.transcript = nil
	s.sourceErr = nil
	s.analysisErr = nil
	s.sourceName = ""
	s.loadingSource = false
	s.analyzingTranscripts = false

	return s.generation
}

// bind derives a context canceled when either ctx or the current generation ends.
// Callers hold s.mu.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.genCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// LoadSource replaces the session with a new CRM export and runs the
// dashboard analysis over it. The rows are available immediately; the
// dashboard and deals are installed only if the analysis succeeds.
func (s *Session) LoadSource(ctx context.Context, name string, table *ingest.Table) error {
	if table == nil || len(table.Rows) == 0 {
		return fmt.Errorf("%w: %s has no data rows", common.ErrEmptyInput, name)
	}

	store := rowstore.IngestWithHeader(table.Header, table.Rows)
	csvText, err := store.CSV()
	if err != nil {
		return err
	}

	s.mu.Lock()
	gen := s.nextGeneration()
	s.rows = store
	s.sourceName = name
	s.loadingSource = true
	ctx, cancel := s.bind(ctx)
	s.mu.Unlock()
	defer cancel()

	s.logger.Info("Analyzing CRM export", "source", name, "rows", store.Len(), "generation", gen)
	dash, err := s.analyzer.AnalyzeSource(ctx, csvText)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale dashboard result", "generation", gen, "current", s.generation)
		return common.ErrStale
	}
	s.loadingSource = false

	if err != nil {
		s.sourceErr = err
		return err
	}

	dealModel := deals.New()
	dealModel.Initialize(dash.Deals)
	suggestions := suggestion.New()

	installed := *dash
	installed.Deals = nil
	s.dashboard = &installed
	s.deals = dealModel
	s.suggestions = suggestions
	s.engine = reconcile.New(dealModel, store, suggestions, s.logger)

	if dropped := len(dash.Deals) - dealModel.Len(); dropped > 0 {
		s.logger.Warn("Dropped deals with duplicate row ids", "count", dropped)
	}
	for _, d := range dealModel.Deals() {
		if _, ok := store.Lookup(d.RowID); !ok {
			s.logger.Warn("Deal refers to a row that does not exist", "row_id", d.RowID, "deal_name", d.DealName)
		}
	}

	return nil
}

// AnalyzeTranscripts analyzes text against the current deals and replaces the
// pending suggestions with the result. Only one transcript analysis may run
// at a time.
func (s *Session) AnalyzeTranscripts(ctx context.Context, text string) (*model.TranscriptAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: transcript text is empty", common.ErrEmptyInput)
	}

	s.mu.Lock()
	if s.deals == nil {
		s.mu.Unlock()
		return nil, common.ErrNoDashboard
	}
	if s.analyzingTranscripts {
		s.mu.Unlock()
		return nil, common.ErrBusy
	}
	s.analyzingTranscripts = true
	s.analysisErr = nil
	gen := s.generation
	current := s.deals.Deals()
	ctx, cancel := s.bind(ctx)
	s.mu.Unlock()
	defer cancel()

	s.logger.Info("Analyzing transcripts", "chars", len(text), "deals", len(current), "generation", gen)
	analysis, err := s.analyzer.AnalyzeTranscripts(ctx, text, current)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale transcript result", "generation", gen, "current", s.generation)
		return nil, common.ErrStale
	}
	s.analyzingTranscripts = false

	if err != nil {
		s.analysisErr = err
		return nil, err
	}

	s.suggestions.Initialize(analysis.Updates, analysis.Creations)

	installed := *analysis
	installed.Updates = nil
	installed.Creations = nil
	s.transcript = &installed

	result := installed
	result.Updates = s.suggestions.Updates()
	result.Creations = s.suggestions.Creations()
	return &result, nil
}

// Accept applies a pending suggestion. Suggestions that are no longer
// pending, or that belong to a previous session, are ignored.
func (s *Session) Accept(sugg model.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil
	}
	return s.engine.Accept(sugg)
}

// Reject discards a pending suggestion.
func (s *Session) Reject(sugg model.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return
	}
	s.engine.Reject(sugg)
}

// Reset returns the session to its initial state and cancels any running analysis.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.nextGeneration()
	s.logger.Info("Session reset", "generation", gen)
}

// DealDetail returns a deal with its original row. The row degrades to a
// placeholder when the deal's row id has no source row.
func (s *Session) DealDetail(rowID int) (model.Deal, rowstore.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deals == nil {
		return model.Deal{}, rowstore.Row{}, false
	}
	d, ok := s.deals.Find(rowID)
	if !ok {
		return model.Deal{}, rowstore.Row{}, false
	}
	return d, s.rows.Detail(rowID), true
}

// QueryDeals filters, sorts and paginates the current deals.
func (s *Session) QueryDeals(q deals.Query) (deals.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deals == nil {
		return deals.Page{}, common.ErrNoDashboard
	}
	return s.deals.Query(q)
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	// Dashboard carries the current deals, including accepted changes.
	Dashboard *model.Dashboard
	// Transcript carries the suggestions that are still pending.
	Transcript           *model.TranscriptAnalysis
	SourceErr            error
	AnalysisErr          error
	SourceName           string
	Columns              []string
	Rows                 int
	LoadingSource        bool
	AnalyzingTranscripts bool
}

// HasDashboard reports whether a dashboard analysis has completed.
func (s Snapshot) HasDashboard() bool {
	return s.Dashboard != nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SourceName:           s.sourceName,
		SourceErr:            s.sourceErr,
		AnalysisErr:          s.analysisErr,
		LoadingSource:        s.loadingSource,
		AnalyzingTranscripts: s.analyzingTranscripts,
	}
	if s.rows != nil {
		snap.Columns = s.rows.Columns()
		snap.Rows = s.rows.Len()
	}
	if s.dashboard != nil {
		dash := *s.dashboard
		dash.Deals = s.deals.Deals()
		snap.Dashboard = &dash
	}
	if s.transcript != nil {
		analysis := *s.transcript
		analysis.Updates = s.suggestions.Updates()
		analysis.Creations = s.suggestions.Creations()
		snap.Transcript = &analysis
	}
	return snap
}

// Pending returns the suggestions awaiting a decision, updates first.
func (s *Session) Pending() []model.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions.Pending()
}

// Close cancels any running analysis.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genCancel()
}

// IsStale reports whether err means a result was discarded after a reset.
func IsStale(err error) bool {
	return errors.Is(err, common.ErrStale)
}
