// Package suggestion holds the pending AI-proposed deal updates and creations
// awaiting a user decision.
package suggestion

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/dealflow/internal/model"
)

// Set is the collection of pending suggestions. It only shrinks between
// Initialize calls.
type Set struct {
	updates   []model.UpdateSuggestion
	creations []model.CreationSuggestion
	// batch counts Initialize calls so ids from different analyses never collide.
	batch int
}

// New returns an empty set.
func New() *Set {
	return &Set{}
}

// Initialize replaces the pending suggestions. Each creation receives a fresh
// suggestion id; any id supplied by the caller is overwritten. Only the first
// update for a given row is kept.
func (s *Set) Initialize(updates []model.UpdateSuggestion, creations []model.CreationSuggestion) {
	s.batch++

	s.updates = make([]model.UpdateSuggestion, 0, len(updates))
	seen := make(map[int]bool, len(updates))
	for _, u := range updates {
		if seen[u.RowID] {
			slog.Warn("Dropping duplicate update suggestion",
				"row_id", u.RowID,
				"deal_name", u.DealName)
			continue
		}
		seen[u.RowID] = true
		s.updates = append(s.updates, u)
	}

	s.creations = make([]model.CreationSuggestion, len(creations))
	for i, c := range creations {
		c.SuggestionID = fmt.Sprintf("sugg-%d-%d", s.batch, i)
		s.creations[i] = c
	}
}

// RemoveUpdate drops the update suggestion for rowID, if any.
func (s *Set) RemoveUpdate(rowID int) {
	for i, u := range s.updates {
		if u.RowID == rowID {
			s.updates = append(s.updates[:i:i], s.updates[i+1:]...)
			return
		}
	}
}

// RemoveCreation drops the creation suggestion with the given id, if any.
func (s *Set) RemoveCreation(suggestionID string) {
	for i, c := range s.creations {
		if c.SuggestionID == suggestionID {
			s.creations = append(s.creations[:i:i], s.creations[i+1:]...)
			return
		}
	}
}

// Remove drops s by kind and key.
func (s *Set) Remove(sugg model.Suggestion) {
	switch v := sugg.(type) {
	case model.UpdateSuggestion:
		s.RemoveUpdate(v.RowID)
	case *model.UpdateSuggestion:
		s.RemoveUpdate(v.RowID)
	case model.CreationSuggestion:
		s.RemoveCreation(v.SuggestionID)
	case *model.CreationSuggestion:
		s.RemoveCreation(v.SuggestionID)
	}
}

// Update returns the pending update for rowID.
func (s *Set) Update(rowID int) (model.UpdateSuggestion, bool) {
	if s == nil {
		return model.UpdateSuggestion{}, false
	}
	for _, u := range s.updates {
		if u.RowID == rowID {
			return u, true
		}
	}
	return model.UpdateSuggestion{}, false
}

// Creation returns the pending creation with the given id.
func (s *Set) Creation(suggestionID string) (model.CreationSuggestion, bool) {
	if s == nil {
		return model.CreationSuggestion{}, false
	}
	for _, c := range s.creations {
		if c.SuggestionID == suggestionID {
			return c, true
		}
	}
	return model.CreationSuggestion{}, false
}

// Updates returns a copy of the pending updates.
func (s *Set) Updates() []model.UpdateSuggestion {
	if s == nil {
		return nil
	}
	out := make([]model.UpdateSuggestion, len(s.updates))
	copy(out, s.updates)
	return out
}

// Creations returns a copy of the pending creations.
func (s *Set) Creations() []model.CreationSuggestion {
	if s == nil {
		return nil
	}
	out := make([]model.CreationSuggestion, len(s.creations))
	copy(out, s.creations)
	return out
}

// Pending returns every suggestion, updates first.
func (s *Set) Pending() []model.Suggestion {
	if s == nil {
		return nil
	}
	out := make([]model.Suggestion, 0, len(s.updates)+len(s.creations))
	for _, u := range s.updates {
		out = append(out, u)
	}
	for _, c := range s.creations {
		out = append(out, c)
	}
	return out
}

// Contains reports whether sugg is still pending.
func (s *Set) Contains(sugg model.Suggestion) bool {
	switch v := sugg.(type) {
	case model.UpdateSuggestion:
		_, ok := s.Update(v.RowID)
		return ok
	case *model.UpdateSuggestion:
		_, ok := s.Update(v.RowID)
		return ok
	case model.CreationSuggestion:
		_, ok := s.Creation(v.SuggestionID)
		return ok
	case *model.CreationSuggestion:
		_, ok := s.Creation(v.SuggestionID)
		return ok
	}
	return false
}

// Len returns the number of pending suggestions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.updates) + len(s.creations)
}

// Empty reports whether nothing is pending.
func (s *Set) Empty() bool {
	return s.Len() == 0
}
