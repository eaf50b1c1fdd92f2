// Package reconcile applies user-accepted suggestions to the deal model and
// the row store, keeping the two consistent.
package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/rowstore"
	"github.com/Veraticus/dealflow/internal/suggestion"
)

// SourceKey and CreatedSource mark rows added from accepted creation suggestions.
const (
	SourceKey     = "source"
	CreatedSource = "Created from Transcript"
)

// Engine mutates the state it was built over. It is not safe for concurrent
// use; callers serialize access.
type Engine struct {
	deals       *deals.Model
	rows        *rowstore.Store
	suggestions *suggestion.Set
	logger      *slog.Logger
}

// New creates an engine over the given state.
func New(d *deals.Model, rows *rowstore.Store, suggestions *suggestion.Set, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		deals:       d,
		rows:        rows,
		suggestions: suggestions,
		logger:      logger,
	}
}

// Accept applies s and removes it from the pending set. Accepting a
// suggestion that is no longer pending does nothing.
func (e *Engine) Accept(s model.Suggestion) error {
	if !e.suggestions.Contains(s) {
		e.logger.Debug("Ignoring accept for suggestion no longer pending", "key", s.Key())
		return nil
	}

	switch v := s.(type) {
	case model.UpdateSuggestion:
		return e.acceptUpdate(v)
	case *model.UpdateSuggestion:
		return e.acceptUpdate(*v)
	case model.CreationSuggestion:
		return e.acceptCreation(v)
	case *model.CreationSuggestion:
		return e.acceptCreation(*v)
	default:
		return fmt.Errorf("unsupported suggestion kind %q", s.Kind())
	}
}

// acceptUpdate patches the deal only. The original row keeps its source values.
func (e *Engine) acceptUpdate(u model.UpdateSuggestion) error {
	if err := e.deals.ApplyUpdate(u.RowID, u.Changes); err != nil {
		return fmt.Errorf("failed to accept update for row %d: %w", u.RowID, err)
	}
	e.suggestions.RemoveUpdate(u.RowID)

	e.logger.Info("Accepted deal update",
		"row_id", u.RowID,
		"fields", len(u.Changes))
	return nil
}

// acceptCreation adds a deal and its row under one fresh id. The row is
// inserted first so a failure leaves both collections untouched.
func (e *Engine) acceptCreation(c model.CreationSuggestion) error {
	id := e.deals.NextID(func(id int) bool {
		_, taken := e.rows.Lookup(id)
		return taken
	})
	deal := deals.NewCreated(id, c.Deal)

	if err := e.rows.InsertFront(CreatedRow(deal), id); err != nil {
		return fmt.Errorf("failed to accept creation %s: %w", c.SuggestionID, err)
	}
	e.deals.Prepend(deal)
	e.suggestions.RemoveCreation(c.SuggestionID)

	e.logger.Info("Accepted deal creation",
		"suggestion_id", c.SuggestionID,
		"row_id", id,
		"deal_name", deal.DealName)
	return nil
}

// Reject removes s without touching deals or rows.
func (e *Engine) Reject(s model.Suggestion) {
	if e.suggestions.Contains(s) {
		e.logger.Info("Rejected suggestion", "key", s.Key())
	}
	e.suggestions.Remove(s)
}

// Find returns the original row for rowID, or a placeholder when none exists.
func (e *Engine) Find(rowID int) rowstore.Row {
	return e.rows.Detail(rowID)
}

// CreatedRow is the row recorded for a deal created from a transcript.
func CreatedRow(d model.Deal) map[string]string {
	return map[string]string{
		string(model.FieldDealName):    d.DealName,
		string(model.FieldAmount):      d.Amount,
		string(model.FieldStage):       d.Stage,
		string(model.FieldInsight):     d.Insight,
		string(model.FieldDescription): d.Description,
		SourceKey:                      CreatedSource,
	}
}
