package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.detail != nil:
		body = m.renderDetail()
	case m.view == ViewSuggestions:
		body = m.renderSuggestions()
	case m.view == ViewDeals:
		body = m.renderDeals()
	default:
		body = m.renderDashboard()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		body,
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, 3)
	for v := ViewSuggestions; v <= ViewDashboard; v++ {
		label := v.String()
		if v == ViewSuggestions {
			label = fmt.Sprintf("%s (%d)", label, len(m.pending))
		}
		if v == m.view {
			tabs = append(tabs, m.theme.Selected.Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, m.theme.Subtitle.Padding(0, 1).Render(label))
		}
	}

	title := "dealflow"
	if m.snapshot.Dashboard != nil {
		title = m.snapshot.Dashboard.Title
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
	)
}

func (m Model) renderSuggestions() string {
	if len(m.pending) == 0 {
		return m.theme.Subtitle.Render("No pending suggestions.")
	}

	lines := make([]string, 0, len(m.pending))
	for i, s := range m.pending {
		line := suggestionLine(s)
		if i == m.cursor {
			line = m.theme.Selected.Render("▸ " + line)
		} else {
			line = m.theme.Normal.Render("  " + line)
		}
		lines = append(lines, line)
	}

	list := strings.Join(lines, "\n")
	if s, ok := m.selectedSuggestion(); ok {
		return lipgloss.JoinVertical(lipgloss.Left, list, "", m.renderSuggestionDetail(s))
	}
	return list
}

func suggestionLine(s model.Suggestion) string {
	switch v := s.(type) {
	case model.UpdateSuggestion:
		fields := v.Changes.Fields()
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = string(f)
		}
		return fmt.Sprintf("Update  %s: %s", v.DealName, strings.Join(names, ", "))
	case model.CreationSuggestion:
		return fmt.Sprintf("Create  %s (%s)", v.Deal.DealName, v.Deal.Amount)
	}
	return s.Key()
}

func (m Model) renderSuggestionDetail(s model.Suggestion) string {
	var b strings.Builder
	switch v := s.(type) {
	case model.UpdateSuggestion:
		for _, f := range v.Changes.Fields() {
			c := v.Changes[f]
			fmt.Fprintf(&b, "%s: %s → %s\n", m.theme.Bold.Render(string(f)), m.theme.OldValue.Render(c.OldValue), m.theme.NewValue.Render(c.NewValue))
		}
		if v.Reasoning != "" {
			fmt.Fprintf(&b, "\n%s\n", m.theme.Subtitle.Render(v.Reasoning))
		}
	case model.CreationSuggestion:
		fmt.Fprintf(&b, "Amount: %s\nStage: %s\n", v.Deal.Amount, v.Deal.Stage)
		if v.Deal.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", v.Deal.Description)
		}
		if v.PossibleDuplicateOf != nil {
			fmt.Fprintf(&b, "\n%s\n", m.theme.StatusWarning.Render(fmt.Sprintf("Possible duplicate of row %d", *v.PossibleDuplicateOf)))
		}
		if v.Reasoning != "" {
			fmt.Fprintf(&b, "\n%s\n", m.theme.Subtitle.Render(v.Reasoning))
		}
	}
	return m.theme.RoundedBox.Width(min(m.width-2, 80)).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderDeals() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render(common.Describe(m.lastError))
	}

	filters := fmt.Sprintf("Sort: %s  Size: %s  Stage: %s",
		orDefault(string(m.query.Sort), string(deals.SortAmountDesc)),
		orDefault(string(m.query.Size), "all"),
		orDefault(m.query.Stage, "all"))

	if m.page.Total == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Subtitle.Render(filters),
			m.theme.Subtitle.Render("No deals match the current filters."))
	}

	nameWidth := 28
	lines := []string{m.theme.Bold.Render(fmt.Sprintf("  %-6s %-*s %-14s %s", "ID", nameWidth, "Deal", "Amount", "Stage"))}
	for i, d := range m.page.Deals {
		name := truncate(d.DealName, nameWidth)
		line := fmt.Sprintf("%-6d %-*s %-14s %s", d.RowID, nameWidth, name, d.Amount, d.Stage)
		switch {
		case i == m.cursor:
			line = m.theme.Selected.Render("▸ " + line)
		case d.RowID < 0:
			line = m.theme.Created.Render("  " + line)
		default:
			line = m.theme.Normal.Render("  " + line)
		}
		lines = append(lines, line)
	}

	footer := m.theme.Subtitle.Render(fmt.Sprintf("Page %d of %d (%d deals)", m.page.Page, m.page.TotalPages, m.page.Total))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Subtitle.Render(filters),
		"",
		strings.Join(lines, "\n"),
		"",
		footer)
}

func (m Model) renderDetail() string {
	d := m.detail.deal
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", m.theme.Bold.Render(fmt.Sprintf("%s (row %d)", d.DealName, d.RowID)))
	fmt.Fprintf(&b, "Amount: %s\nStage: %s\n", d.Amount, d.Stage)
	if d.Insight != "" {
		fmt.Fprintf(&b, "\n%s\n", m.theme.StatusInfo.Render(d.Insight))
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Description)
	}
	fmt.Fprintf(&b, "\n%s\n", m.theme.Bold.Render("Original data"))
	for _, kv := range m.detail.row.Display() {
		fmt.Fprintf(&b, "  %s: %s\n", m.theme.Subtitle.Render(kv[0]), kv[1])
	}
	return m.theme.RoundedBox.Width(min(m.width-2, 80)).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderDashboard() string {
	dash := m.snapshot.Dashboard
	if dash == nil {
		return m.theme.Subtitle.Render("No dashboard has been generated yet.")
	}

	var b strings.Builder
	if dash.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", dash.Summary)
	}
	for _, k := range dash.Kpis {
		fmt.Fprintf(&b, "%s  %s\n", m.theme.Bold.Render(k.Value), m.theme.Subtitle.Render(k.Title))
	}
	for _, c := range dash.Charts {
		fmt.Fprintf(&b, "\n%s\n", m.theme.Bold.Render(c.Title))
		for _, p := range c.Data {
			fmt.Fprintf(&b, "  %-20s %g\n", truncate(p.Name, 20), p.Value)
		}
	}
	if t := m.snapshot.Transcript; t != nil {
		fmt.Fprintf(&b, "\n%s\n%s\n", m.theme.Bold.Render(t.Title), t.OverallSummary)
		for _, mt := range t.Meetings {
			fmt.Fprintf(&b, "  • %s (%s)\n", mt.MeetingTitle, mt.Sentiment)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatusBar() string {
	text := m.status
	if text == "" {
		text = fmt.Sprintf("%d rows · %d pending", m.snapshot.Rows, len(m.pending))
		return m.theme.StatusBar.Render(text)
	}

	style := m.theme.StatusInfo
	switch m.level {
	case statusSuccess:
		style = m.theme.StatusSuccess
	case statusError:
		style = m.theme.StatusError
	}
	return m.theme.StatusBar.Render(style.Render(text))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
