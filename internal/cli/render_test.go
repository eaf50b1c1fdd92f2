package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/rowstore"
)

func TestRenderDashboard(t *testing.T) {
	dash := &model.Dashboard{
		Title:   "Q3 Pipeline",
		Summary: "Two open deals.",
		Kpis:    []model.Kpi{{Title: "Total Pipeline", Value: "$16,500", Insight: "Up 10%"}},
		Charts: []model.Chart{
			{Kind: model.ChartBar, Title: "Deals by Stage", Data: []model.ChartPoint{{Name: "Prospecting", Value: 2}, {Name: "Won", Value: 1}}},
			{Kind: model.ChartPie, Title: "Share", Data: []model.ChartPoint{{Name: "A", Value: 1}, {Name: "B", Value: 3}}},
		},
	}

	out := RenderDashboard(dash)
	for _, want := range []string{"Q3 Pipeline", "Two open deals.", "Total Pipeline", "$16,500", "Deals by Stage", "Share"} {
		assert.Contains(t, out, want)
	}

	assert.Contains(t, RenderDashboard(nil), "No dashboard")
}

func TestRenderChart(t *testing.T) {
	pie := RenderChart(model.Chart{Kind: model.ChartPie, Title: "Share", Data: []model.ChartPoint{{Name: "A", Value: 1}, {Name: "B", Value: 3}}})
	assert.Contains(t, pie, "25.0%")
	assert.Contains(t, pie, "75.0%")

	bar := RenderChart(model.Chart{Kind: model.ChartBar, Title: "Stages", Data: []model.ChartPoint{{Name: "A", Value: 2}, {Name: "B", Value: 1}}})
	assert.Equal(t, chartBarWidth+chartBarWidth/2, strings.Count(bar, "█"))

	empty := RenderChart(model.Chart{Kind: model.ChartBar, Title: "Nothing"})
	assert.Contains(t, empty, "no data")
}

func TestRenderDealsPage(t *testing.T) {
	page := deals.Page{
		Deals: []model.Deal{
			{RowID: -1, DealName: "Acme Renewal", Amount: "$8,000", Stage: "Prospecting"},
			{RowID: 0, DealName: "Globex Expansion", Amount: "$12,000", Stage: "Negotiation"},
		},
		Total:      2,
		Page:       1,
		TotalPages: 1,
	}

	out := RenderDealsPage(page)
	assert.Contains(t, out, NewIcon+" Acme Renewal")
	assert.Contains(t, out, "Globex Expansion")
	assert.Contains(t, out, "Page 1 of 1 (2 deals)")

	assert.Contains(t, RenderDealsPage(deals.Page{Page: 1, TotalPages: 1}), "No deals match")
}

func TestRenderDealDetail(t *testing.T) {
	d := model.Deal{RowID: 2, DealName: "Umbrella Renewal", Amount: "$4,500", Stage: "Prospecting", Insight: "Renewal."}
	row := rowstore.Row{ID: 2, Fields: map[string]string{"Owner": "Alice", rowstore.IDKey: "2"}}

	out := RenderDealDetail(d, row)
	assert.Contains(t, out, "Umbrella Renewal (row 2)")
	assert.Contains(t, out, "Owner")
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, rowstore.IDKey)
}

func TestRenderTranscriptAnalysis(t *testing.T) {
	a := &model.TranscriptAnalysis{
		Title:          "Analysis of 1 Transcript",
		OverallSummary: "Moving forward.",
		Meetings: []model.MeetingAnalysis{{
			MeetingTitle:           "Umbrella sync",
			Summary:                "Pricing discussed.",
			Sentiment:              model.SentimentPositive,
			ActionItems:            []string{"Send quote"},
			SuggestedFollowUpEmail: "Hi team",
		}},
	}

	out := RenderTranscriptAnalysis(a)
	for _, want := range []string{"Analysis of 1 Transcript", "Umbrella sync", "Positive", "Send quote", "Hi team"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Risks")
	assert.Empty(t, RenderTranscriptAnalysis(nil))
}

func TestRenderSuggestion(t *testing.T) {
	dup := 4
	update := model.UpdateSuggestion{
		RowID:     2,
		DealName:  "Umbrella Renewal",
		Changes:   model.Changes{model.FieldStage: {OldValue: "Prospecting", NewValue: "Negotiation"}},
		Reasoning: "Pricing agreed.",
	}
	creation := model.CreationSuggestion{
		Deal:                model.DealFields{DealName: "Acme Renewal", Amount: "$8,000"},
		PossibleDuplicateOf: &dup,
	}

	out := RenderSuggestion(update)
	assert.Contains(t, out, "Umbrella Renewal (row 2)")
	assert.Contains(t, out, "Negotiation")
	assert.Contains(t, out, "Pricing agreed.")
	assert.Equal(t, out, RenderSuggestion(&update))

	out = RenderSuggestion(creation)
	assert.Contains(t, out, "Create Acme Renewal")
	assert.Contains(t, out, "Possible duplicate of row 4")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestWithSpinner(t *testing.T) {
	var out bytes.Buffer
	want := errors.New("failed")

	err := WithSpinner(context.Background(), &out, "Analyzing", func(context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}
