package model

import "strconv"

// SuggestionKind discriminates update and creation suggestions.
type SuggestionKind string

const (
	// KindUpdate proposes changing fields of an existing deal.
	KindUpdate SuggestionKind = "update"
	// KindCreate proposes adding a new deal.
	KindCreate SuggestionKind = "create"
)

// Suggestion is a model-proposed mutation awaiting a user decision.
type Suggestion interface {
	Kind() SuggestionKind
	// Key identifies the suggestion within its set.
	Key() string
}

// UpdateSuggestion proposes field changes to the deal identified by RowID.
// DealName is a display-only snapshot taken when the suggestion was made.
type UpdateSuggestion struct {
	Changes   Changes `json:"changes"`
	DealName  string  `json:"dealName"`
	Reasoning string  `json:"reasoning"`
	RowID     int     `json:"rowId"`
}

// Kind implements Suggestion.
func (UpdateSuggestion) Kind() SuggestionKind { return KindUpdate }

// Key implements Suggestion.
func (s UpdateSuggestion) Key() string { return "update:" + strconv.Itoa(s.RowID) }

// CreationSuggestion proposes adding a new deal.
type CreationSuggestion struct {
	// PossibleDuplicateOf is the row id of an existing deal with a near-identical name.
	PossibleDuplicateOf *int       `json:"possibleDuplicateOf,omitempty"`
	SuggestionID        string     `json:"suggestionId"`
	Reasoning           string     `json:"reasoning"`
	Deal                DealFields `json:"deal"`
}

// Kind implements Suggestion.
func (CreationSuggestion) Kind() SuggestionKind { return KindCreate }

// Key implements Suggestion.
func (s CreationSuggestion) Key() string { return s.SuggestionID }
