package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/model"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.input))
		})
	}
}

func TestFoldChanges(t *testing.T) {
	changes := foldChanges(wireUpdate{
		RowID: 4,
		Changes: []wireChange{
			{Field: "stage", OldValue: "Proposal", NewValue: "Negotiation"},
			{Field: "probability", OldValue: "10%", NewValue: "60%"},
			{Field: "stage", OldValue: "Proposal", NewValue: "Closed Won"},
			{Field: "amount", OldValue: "$10,000", NewValue: "$12,500"},
		},
	})

	assert.Equal(t, model.Changes{
		model.FieldStage:  {OldValue: "Proposal", NewValue: "Negotiation"},
		model.FieldAmount: {OldValue: "$10,000", NewValue: "$12,500"},
	}, changes)
}

func TestDecodeTranscriptAnalysis_DropsEmptyUpdates(t *testing.T) {
	text := "```json\n" + `{
		"analysisTitle": "Weekly calls",
		"overallSummary": "Two calls.",
		"meetings": [{"meetingTitle": "Acme sync", "summary": "s", "sentiment": "Positive", "actionItems": null, "risks": ["budget"], "suggestedFollowUpEmail": ""}],
		"updates": [
			{"type": "update", "rowId": 1, "dealName": "Acme", "changes": [{"field": "probability", "oldValue": "", "newValue": "90%"}], "reasoning": "r"},
			{"type": "update", "rowId": 2, "dealName": "Globex", "changes": [{"field": "insight", "oldValue": "", "newValue": "Champion left"}], "reasoning": "r"}
		],
		"creations": [{"type": "create", "deal": {"dealName": "Initech", "amount": "N/A", "stage": "Qualification", "description": "d"}, "reasoning": "r"}]
	}` + "\n```"

	analysis, err := decodeTranscriptAnalysis(text)
	require.NoError(t, err)

	require.Len(t, analysis.Updates, 1)
	assert.Equal(t, 2, analysis.Updates[0].RowID)
	assert.Equal(t, []model.DealField{model.FieldInsight}, analysis.Updates[0].Changes.Fields())

	require.Len(t, analysis.Meetings, 1)
	assert.Equal(t, []string{}, analysis.Meetings[0].ActionItems)
	assert.Equal(t, model.SentimentPositive, analysis.Meetings[0].Sentiment)

	require.Len(t, analysis.Creations, 1)
	assert.Equal(t, "Initech", analysis.Creations[0].Deal.DealName)
}
