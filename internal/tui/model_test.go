package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/app"
	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/ingest"
	"github.com/Veraticus/dealflow/internal/model"
	tuitest "github.com/Veraticus/dealflow/internal/tui/testing"
)

type fixedAnalyzer struct{}

func (fixedAnalyzer) AnalyzeSource(context.Context, string) (*model.Dashboard, error) {
	return &model.Dashboard{
		Title:   "Q3 Pipeline",
		Summary: "Three open deals.",
		Kpis:    []model.Kpi{{Title: "Total Pipeline", Value: "$17,500"}},
		Deals: []model.Deal{
			{RowID: 0, DealName: "Globex Expansion", Amount: "$12,000", Stage: "Prospecting"},
			{RowID: 1, DealName: "Initech Pilot", Amount: "$1,000", Stage: "Negotiation"},
			{RowID: 2, DealName: "Umbrella Renewal", Amount: "$4,500", Stage: "Prospecting"},
		},
	}, nil
}

func (fixedAnalyzer) AnalyzeTranscripts(context.Context, string, []model.Deal) (*model.TranscriptAnalysis, error) {
	return &model.TranscriptAnalysis{
		Title: "Analysis of 1 Transcript",
		Updates: []model.UpdateSuggestion{{
			RowID:    2,
			DealName: "Umbrella Renewal",
			Changes:  model.Changes{model.FieldStage: {OldValue: "Prospecting", NewValue: "Negotiation"}},
		}},
		Creations: []model.CreationSuggestion{{
			Deal: model.DealFields{DealName: "Acme Renewal", Amount: "$8,000", Stage: "Prospecting"},
		}},
	}, nil
}

func newTestSession(t *testing.T, withSuggestions bool) *app.Session {
	t.Helper()

	s, err := app.NewSession(fixedAnalyzer{}, nil)
	require.NoError(t, err)

	table := &ingest.Table{
		Header: []string{"Name"},
		Rows:   []map[string]string{{"Name": "Globex"}, {"Name": "Initech"}, {"Name": "Umbrella"}},
	}
	require.NoError(t, s.LoadSource(context.Background(), "deals.csv", table))

	if withSuggestions {
		_, err = s.AnalyzeTranscripts(context.Background(), "notes")
		require.NoError(t, err)
	}
	return s
}

func newTestModel(t *testing.T, withSuggestions bool, opts ...Option) (Model, *app.Session) {
	t.Helper()

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := newTestSession(t, withSuggestions)
	return newModel(s, cfg), s
}

func apply(m tea.Model, msgs ...tea.Msg) Model {
	out, _ := tuitest.Apply(m, msgs...)
	return out.(Model)
}

func TestNewModel_StartsOnSuggestionsWhenPending(t *testing.T) {
	m, _ := newTestModel(t, true)
	assert.Equal(t, ViewSuggestions, m.view)
	assert.Len(t, m.pending, 2)

	m, _ = newTestModel(t, false)
	assert.Equal(t, ViewDeals, m.view)
}

func TestAcceptSuggestion(t *testing.T) {
	m, s := newTestModel(t, true)

	out, cmd := m.Update(tuitest.KeyPress("a"))
	m = out.(Model)
	require.NotNil(t, cmd)

	assert.Len(t, m.pending, 1)
	assert.Contains(t, m.status, "Umbrella Renewal")
	d, _, ok := s.DealDetail(2)
	require.True(t, ok)
	assert.Equal(t, "Negotiation", d.Stage)
}

func TestRejectSuggestion(t *testing.T) {
	m, s := newTestModel(t, true)

	m = apply(m, tuitest.KeyDown(), tuitest.KeyPress("r"))

	assert.Len(t, m.pending, 1)
	assert.Equal(t, 0, m.cursor)
	assert.Len(t, s.Snapshot().Dashboard.Deals, 3)
}

func TestAcceptAll(t *testing.T) {
	m, s := newTestModel(t, true)

	m = apply(m, tuitest.KeyPress("A"))

	assert.Empty(t, m.pending)
	assert.Len(t, s.Snapshot().Dashboard.Deals, 4)
	assert.Equal(t, 4, m.page.Total)
}

func TestStatusClears(t *testing.T) {
	m, _ := newTestModel(t, true)
	m = apply(m, tuitest.KeyPress("r"))
	require.NotEmpty(t, m.status)

	m = apply(m, clearStatusMsg{seq: m.statusSeq - 1})
	assert.NotEmpty(t, m.status)

	m = apply(m, clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.status)
}

func TestToggleView(t *testing.T) {
	m, _ := newTestModel(t, true)

	m = apply(m, tuitest.KeyTab())
	assert.Equal(t, ViewDeals, m.view)
	m = apply(m, tuitest.KeyTab())
	assert.Equal(t, ViewDashboard, m.view)
	m = apply(m, tuitest.KeyTab())
	assert.Equal(t, ViewSuggestions, m.view)
}

func TestDealTable_SortAndFilter(t *testing.T) {
	m, _ := newTestModel(t, false)
	require.Equal(t, "Globex Expansion", m.page.Deals[0].DealName)

	m = apply(m, tuitest.KeyPress("o"))
	assert.Equal(t, deals.SortAmountAsc, m.query.Sort)
	assert.Equal(t, "Initech Pilot", m.page.Deals[0].DealName)

	m = apply(m, tuitest.KeyPress("t"))
	assert.Equal(t, "Negotiation", m.query.Stage)
	assert.Equal(t, 1, m.page.Total)

	m = apply(m, tuitest.KeyPress("t"))
	assert.Equal(t, "Prospecting", m.query.Stage)
	assert.Equal(t, 2, m.page.Total)

	m = apply(m, tuitest.KeyPress("z"), tuitest.KeyPress("z"))
	assert.Equal(t, deals.SizeMedium, m.query.Size)
	assert.Equal(t, 1, m.page.Total)

	m = apply(m, tuitest.KeyPress("c"))
	assert.Empty(t, m.query.Stage)
	assert.Equal(t, deals.SizeAll, m.query.Size)
	assert.Equal(t, 3, m.page.Total)
}

func TestDealTable_Pagination(t *testing.T) {
	m, _ := newTestModel(t, false, WithPerPage(2))
	require.Equal(t, 2, m.page.TotalPages)

	m = apply(m, tuitest.KeyRight())
	assert.Equal(t, 2, m.page.Page)
	assert.Len(t, m.page.Deals, 1)

	m = apply(m, tuitest.KeyRight())
	assert.Equal(t, 2, m.page.Page)

	m = apply(m, tuitest.KeyLeft())
	assert.Equal(t, 1, m.page.Page)
}

func TestDealDetail(t *testing.T) {
	m, _ := newTestModel(t, false)

	m = apply(m, tuitest.KeyDown(), tuitest.KeyEnter())
	require.NotNil(t, m.detail)
	assert.Equal(t, "Umbrella Renewal", m.detail.deal.DealName)
	assert.Equal(t, "Umbrella", m.detail.row.Get("Name"))
	assert.Contains(t, m.View(), "Original data")

	m = apply(m, tuitest.KeyEsc())
	assert.Nil(t, m.detail)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, false)

	out, cmd := m.Update(tuitest.KeyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, out.View())
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, false)
	assert.False(t, m.help.ShowAll)

	m = apply(m, tuitest.KeyPress("?"))
	assert.True(t, m.help.ShowAll)
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, true)
	m = apply(m, tuitest.WindowSize(120, 40))

	view := m.View()
	assert.Contains(t, view, "Q3 Pipeline")
	assert.Contains(t, view, "Suggestions (2)")
	assert.Contains(t, view, "Umbrella Renewal")

	m = apply(m, tuitest.KeyTab())
	assert.Contains(t, m.View(), "Page 1 of 1 (3 deals)")

	m = apply(m, tuitest.KeyTab())
	assert.Contains(t, m.View(), "Three open deals.")
}

func TestNextStage(t *testing.T) {
	stages := []string{"A", "B"}
	assert.Equal(t, "A", nextStage("", stages))
	assert.Equal(t, "B", nextStage("A", stages))
	assert.Equal(t, "", nextStage("B", stages))
	assert.Equal(t, "", nextStage("", nil))
}

func TestRun_RequiresSession(t *testing.T) {
	require.Error(t, Run(context.Background(), nil))
}
