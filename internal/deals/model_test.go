package deals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/model"
)

func seededModel() *Model {
	m := New()
	m.Initialize([]model.Deal{
		{RowID: 0, DealName: "Globex Expansion", Amount: "$12,000", Stage: "Prospecting", Insight: "Large upside."},
		{RowID: 2, DealName: "Umbrella Renewal", Amount: "$4,500", Stage: "Prospecting", Insight: "Renewal risk."},
	})
	return m
}

func TestInitialize_PreservesOrder(t *testing.T) {
	m := seededModel()

	assert.Equal(t, []int{0, 2}, m.IDs())
	assert.Equal(t, 2, m.Len())
}

func TestInitialize_DropsDuplicateRowIDs(t *testing.T) {
	m := New()
	m.Initialize([]model.Deal{
		{RowID: 1, DealName: "first"},
		{RowID: 1, DealName: "second"},
	})

	require.Equal(t, 1, m.Len())
	d, ok := m.Find(1)
	require.True(t, ok)
	assert.Equal(t, "first", d.DealName)
}

func TestApplyUpdate(t *testing.T) {
	tests := []struct {
		name    string
		rowID   int
		changes model.Changes
		want    []model.Deal
		wantErr error
	}{
		{
			name:  "changes only the named field",
			rowID: 2,
			changes: model.Changes{
				model.FieldStage: {OldValue: "Prospecting", NewValue: "Negotiation"},
			},
			want: []model.Deal{
				{RowID: 0, DealName: "Globex Expansion", Amount: "$12,000", Stage: "Prospecting", Insight: "Large upside."},
				{RowID: 2, DealName: "Umbrella Renewal", Amount: "$4,500", Stage: "Negotiation", Insight: "Renewal risk."},
			},
		},
		{
			name:  "multiple fields",
			rowID: 0,
			changes: model.Changes{
				model.FieldAmount:      {NewValue: "$15,000"},
				model.FieldDescription: {NewValue: "Expanded to EU."},
			},
			want: []model.Deal{
				{RowID: 0, DealName: "Globex Expansion", Amount: "$15,000", Stage: "Prospecting", Insight: "Large upside.", Description: "Expanded to EU."},
				{RowID: 2, DealName: "Umbrella Renewal", Amount: "$4,500", Stage: "Prospecting", Insight: "Renewal risk."},
			},
		},
		{
			name:    "absent row is a no-op",
			rowID:   7,
			changes: model.Changes{model.FieldStage: {NewValue: "Closed Won"}},
			want:    seededModel().Deals(),
		},
		{
			name:  "unknown field applies nothing",
			rowID: 2,
			changes: model.Changes{
				model.FieldStage:          {NewValue: "Negotiation"},
				model.DealField("owner"): {NewValue: "Alice"},
			},
			want:    seededModel().Deals(),
			wantErr: model.ErrUnknownDealField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seededModel()

			err := m.ApplyUpdate(tt.rowID, tt.changes)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, m.Deals())
		})
	}
}

func TestApplyCreation_IDsNegativeAndDisjoint(t *testing.T) {
	m := seededModel()
	seen := map[int]bool{0: true, 2: true}

	for i := 0; i < 5; i++ {
		id := m.ApplyCreation(model.DealFields{DealName: "new"})
		assert.Negative(t, id)
		assert.False(t, seen[id], "id %d reused", id)
		seen[id] = true

		// Interleave an update to make sure it does not disturb the counter.
		require.NoError(t, m.ApplyUpdate(0, model.Changes{model.FieldStage: {NewValue: "Qualification"}}))
	}

	assert.Equal(t, 7, m.Len())
}

func TestApplyCreation_PrependsMarkedDeal(t *testing.T) {
	m := seededModel()

	id := m.ApplyCreation(model.DealFields{
		DealName:    "Acme Renewal",
		Amount:      "$8,000",
		Stage:       "Prospecting",
		Description: "Renewal discussed on call.",
	})

	assert.Equal(t, -1, id)
	first := m.Deals()[0]
	assert.Equal(t, model.Deal{
		RowID:       -1,
		DealName:    "Acme Renewal",
		Amount:      "$8,000",
		Stage:       "Prospecting",
		Description: "Renewal discussed on call.",
		Insight:     CreatedInsight,
	}, first)
}

func TestNextID_SkipsTakenIDs(t *testing.T) {
	m := New()
	m.Initialize([]model.Deal{{RowID: -1, DealName: "odd"}})

	taken := map[int]bool{-2: true}
	id := m.NextID(func(id int) bool { return taken[id] })

	assert.Equal(t, -3, id)
	assert.Equal(t, -4, m.NextID(nil))
}

func TestDeals_ReturnsCopy(t *testing.T) {
	m := seededModel()

	out := m.Deals()
	out[0].DealName = "mutated"

	d, _ := m.Find(0)
	assert.Equal(t, "Globex Expansion", d.DealName)
}

func TestStages(t *testing.T) {
	m := seededModel()
	require.NoError(t, m.ApplyUpdate(2, model.Changes{model.FieldStage: {NewValue: "Negotiation"}}))

	assert.Equal(t, []string{"Prospecting", "Negotiation"}, m.Stages())
}

func TestNilModel(t *testing.T) {
	var m *Model
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Deals())
}
