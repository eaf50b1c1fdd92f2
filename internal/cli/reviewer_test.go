package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/model"
)

type mockDecider struct {
	mock.Mock
}

func (m *mockDecider) Accept(s model.Suggestion) error {
	return m.Called(s).Error(0)
}

func (m *mockDecider) Reject(s model.Suggestion) {
	m.Called(s)
}

func reviewSuggestions() []model.Suggestion {
	return []model.Suggestion{
		model.UpdateSuggestion{
			RowID:    2,
			DealName: "Umbrella Renewal",
			Changes:  model.Changes{model.FieldStage: {OldValue: "Prospecting", NewValue: "Negotiation"}},
		},
		model.CreationSuggestion{
			SuggestionID: "sugg-1-0",
			Deal:         model.DealFields{DealName: "Acme Renewal", Amount: "$8,000", Stage: "Prospecting"},
		},
	}
}

func TestReviewer_Review(t *testing.T) {
	tests := []struct {
		name  string
		input string
		setup func(d *mockDecider, pending []model.Suggestion)
		want  ReviewStats
	}{
		{
			name:  "accept and reject",
			input: "a\nr\n",
			setup: func(d *mockDecider, pending []model.Suggestion) {
				d.On("Accept", pending[0]).Return(nil).Once()
				d.On("Reject", pending[1]).Once()
			},
			want: ReviewStats{Accepted: 1, Rejected: 1},
		},
		{
			name:  "invalid choice then skip",
			input: "x\ns\nA\n",
			setup: func(d *mockDecider, pending []model.Suggestion) {
				d.On("Accept", pending[1]).Return(nil).Once()
			},
			want: ReviewStats{Accepted: 1, Skipped: 1},
		},
		{
			name:  "quit leaves the rest pending",
			input: "q\n",
			setup: func(*mockDecider, []model.Suggestion) {},
			want:  ReviewStats{Skipped: 2},
		},
		{
			name:  "failed accept is counted",
			input: "a\ns\n",
			setup: func(d *mockDecider, pending []model.Suggestion) {
				d.On("Accept", pending[0]).Return(errors.New("boom")).Once()
			},
			want: ReviewStats{Failed: 1, Skipped: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := reviewSuggestions()
			decider := &mockDecider{}
			tt.setup(decider, pending)

			var out bytes.Buffer
			r := NewReviewer(strings.NewReader(tt.input), &out)

			stats, err := r.Review(context.Background(), pending, decider)
			require.NoError(t, err)

			stats.Duration = 0
			assert.Equal(t, tt.want, stats)
			decider.AssertExpectations(t)
			assert.Contains(t, out.String(), "Umbrella Renewal")
		})
	}
}

func TestReviewer_Review_Empty(t *testing.T) {
	r := NewReviewer(strings.NewReader(""), &bytes.Buffer{})
	stats, err := r.Review(context.Background(), nil, &mockDecider{})
	require.NoError(t, err)
	assert.Equal(t, ReviewStats{}, stats)
}

func TestReviewer_Review_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReviewer(strings.NewReader("a\n"), &bytes.Buffer{})
	_, err := r.Review(ctx, reviewSuggestions(), &mockDecider{})
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestAcceptAll(t *testing.T) {
	pending := reviewSuggestions()
	decider := &mockDecider{}
	decider.On("Accept", pending[0]).Return(nil).Once()
	decider.On("Accept", pending[1]).Return(errors.New("collision")).Once()

	stats := AcceptAll(pending, decider)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.Failed)
	decider.AssertExpectations(t)
}

func TestReviewer_ShowSummary(t *testing.T) {
	var out bytes.Buffer
	NewReviewer(strings.NewReader(""), &out).ShowSummary(ReviewStats{Accepted: 2, Rejected: 1, Failed: 1})

	assert.Contains(t, out.String(), "Accepted: 2")
	assert.Contains(t, out.String(), "Rejected: 1")
	assert.Contains(t, out.String(), "Failed: 1")
}
