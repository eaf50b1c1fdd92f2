// Package deals holds the normalized, mutable collection of deals derived from
// a CRM export and patched by accepted suggestions.
package deals

import (
	"fmt"

	"github.com/Veraticus/dealflow/internal/model"
)

// CreatedInsight marks deals that were added from transcript suggestions.
const CreatedInsight = "Newly created from transcript analysis."

// Model is the ordered deal collection. Deals are unique by RowID and
// insertion order is display order.
type Model struct {
	deals []model.Deal
	// lastCreated is the most recently issued synthetic id. Ingestion ids are
	// non-negative, so counting down from zero can never collide with them.
	lastCreated int
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// Initialize replaces the collection. Later deals sharing a RowID with an
// earlier one are dropped so that RowID stays unique.
func (m *Model) Initialize(deals []model.Deal) {
	seen := make(map[int]bool, len(deals))
	m.deals = make([]model.Deal, 0, len(deals))
	for _, d := range deals {
		if seen[d.RowID] {
			continue
		}
		seen[d.RowID] = true
		m.deals = append(m.deals, d)
	}
}

// ApplyUpdate overwrites every field named in changes on the deal with rowID.
// A missing deal is not an error: stale suggestions are skipped silently.
// Changes naming an unknown field are rejected before anything is applied.
func (m *Model) ApplyUpdate(rowID int, changes model.Changes) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	idx := m.indexOf(rowID)
	if idx < 0 {
		return nil
	}

	updated := m.deals[idx]
	for _, f := range changes.Fields() {
		if err := updated.Set(f, changes[f].NewValue); err != nil {
			return fmt.Errorf("failed to apply change to deal %d: %w", rowID, err)
		}
	}
	m.deals[idx] = updated

	return nil
}

// NextID reserves a fresh synthetic row id, disjoint from every ingestion id,
// from every id this model issued before, and from any id taken reports as used.
func (m *Model) NextID(taken func(int) bool) int {
	for {
		m.lastCreated--
		if m.indexOf(m.lastCreated) >= 0 {
			continue
		}
		if taken != nil && taken(m.lastCreated) {
			continue
		}
		return m.lastCreated
	}
}

// NewCreated builds the deal recorded for an accepted creation suggestion.
func NewCreated(rowID int, fields model.DealFields) model.Deal {
	return model.Deal{
		RowID:       rowID,
		DealName:    fields.DealName,
		Amount:      fields.Amount,
		Stage:       fields.Stage,
		Description: fields.Description,
		Insight:     CreatedInsight,
	}
}

// ApplyCreation prepends a deal built from fields and returns its new row id.
func (m *Model) ApplyCreation(fields model.DealFields) int {
	id := m.NextID(nil)
	m.Prepend(NewCreated(id, fields))
	return id
}

// Prepend inserts d at the front. The caller owns d.RowID uniqueness.
func (m *Model) Prepend(d model.Deal) {
	m.deals = append([]model.Deal{d}, m.deals...)
}

// Find returns the deal with rowID.
func (m *Model) Find(rowID int) (model.Deal, bool) {
	idx := m.indexOf(rowID)
	if idx < 0 {
		return model.Deal{}, false
	}
	return m.deals[idx], true
}

// Deals returns a copy of the deals in display order.
func (m *Model) Deals() []model.Deal {
	if m == nil {
		return nil
	}
	out := make([]model.Deal, len(m.deals))
	copy(out, m.deals)
	return out
}

// Len returns the number of deals.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.deals)
}

// IDs returns the row ids in display order.
func (m *Model) IDs() []int {
	ids := make([]int, len(m.deals))
	for i, d := range m.deals {
		ids[i] = d.RowID
	}
	return ids
}

// Stages returns the distinct stages in first-seen order.
func (m *Model) Stages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range m.deals {
		if seen[d.Stage] {
			continue
		}
		seen[d.Stage] = true
		out = append(out, d.Stage)
	}
	return out
}

func (m *Model) indexOf(rowID int) int {
	for i := range m.deals {
		if m.deals[i].RowID == rowID {
			return i
		}
	}
	return -1
}
