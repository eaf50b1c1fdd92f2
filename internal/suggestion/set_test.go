package suggestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/model"
)

func sampleUpdates() []model.UpdateSuggestion {
	return []model.UpdateSuggestion{
		{
			RowID:     2,
			DealName:  "Umbrella Renewal",
			Changes:   model.Changes{model.FieldStage: {OldValue: "Prospecting", NewValue: "Negotiation"}},
			Reasoning: "Pricing was discussed.",
		},
		{
			RowID:    0,
			DealName: "Globex Expansion",
			Changes:  model.Changes{model.FieldAmount: {OldValue: "$12,000", NewValue: "$15,000"}},
		},
	}
}

func sampleCreations() []model.CreationSuggestion {
	return []model.CreationSuggestion{
		{SuggestionID: "from-model", Deal: model.DealFields{DealName: "Acme Renewal"}},
		{Deal: model.DealFields{DealName: "Hooli Pilot"}},
	}
}

func TestInitialize_AssignsBatchScopedIDs(t *testing.T) {
	s := New()

	s.Initialize(nil, sampleCreations())
	first := s.Creations()
	require.Len(t, first, 2)
	assert.Equal(t, "sugg-1-0", first[0].SuggestionID)
	assert.Equal(t, "sugg-1-1", first[1].SuggestionID)

	s.Initialize(nil, sampleCreations())
	second := s.Creations()
	assert.Equal(t, "sugg-2-0", second[0].SuggestionID)
	assert.NotEqual(t, first[0].SuggestionID, second[0].SuggestionID)
}

func TestInitialize_ReplacesContent(t *testing.T) {
	s := New()
	s.Initialize(sampleUpdates(), sampleCreations())
	require.Equal(t, 4, s.Len())

	s.Initialize(nil, nil)
	assert.True(t, s.Empty())
}

func TestInitialize_DropsDuplicateUpdates(t *testing.T) {
	updates := append(sampleUpdates(), model.UpdateSuggestion{
		RowID:   2,
		Changes: model.Changes{model.FieldStage: {NewValue: "Closed Lost"}},
	})

	s := New()
	s.Initialize(updates, nil)

	require.Len(t, s.Updates(), 2)
	u, ok := s.Update(2)
	require.True(t, ok)
	assert.Equal(t, "Negotiation", u.Changes[model.FieldStage].NewValue)
}

func TestRemove_Idempotent(t *testing.T) {
	s := New()
	s.Initialize(sampleUpdates(), sampleCreations())

	s.RemoveUpdate(2)
	s.RemoveUpdate(2)
	s.RemoveUpdate(99)
	_, ok := s.Update(2)
	assert.False(t, ok)
	assert.Len(t, s.Updates(), 1)

	s.RemoveCreation("sugg-1-0")
	s.RemoveCreation("sugg-1-0")
	s.RemoveCreation("nope")
	_, ok = s.Creation("sugg-1-0")
	assert.False(t, ok)
	assert.Len(t, s.Creations(), 1)

	assert.Equal(t, 2, s.Len())
}

func TestRemove_BySuggestion(t *testing.T) {
	s := New()
	s.Initialize(sampleUpdates(), sampleCreations())

	pending := s.Pending()
	require.Len(t, pending, 4)
	assert.Equal(t, model.KindUpdate, pending[0].Kind())
	assert.Equal(t, model.KindCreate, pending[3].Kind())

	for _, p := range pending {
		assert.True(t, s.Contains(p))
		s.Remove(p)
		assert.False(t, s.Contains(p))
	}
	assert.True(t, s.Empty())
}

func TestRemove_DoesNotDisturbEarlierCopies(t *testing.T) {
	s := New()
	s.Initialize(sampleUpdates(), nil)

	before := s.Updates()
	s.RemoveUpdate(2)

	assert.Equal(t, 2, before[0].RowID)
	assert.Equal(t, 0, before[1].RowID)
}

func TestNilSet(t *testing.T) {
	var s *Set
	assert.True(t, s.Empty())
	assert.Nil(t, s.Pending())
	_, ok := s.Update(1)
	assert.False(t, ok)
}
