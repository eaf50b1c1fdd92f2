package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/rowstore"
)

const chartBarWidth = 30

// RenderDashboard renders the dashboard header, KPI cards and charts.
func RenderDashboard(dash *model.Dashboard) string {
	if dash == nil {
		return FormatWarning("No dashboard has been generated yet.")
	}

	var b strings.Builder
	b.WriteString(FormatTitle(dash.Title))
	b.WriteString("\n")
	if dash.Summary != "" {
		b.WriteString(dash.Summary)
		b.WriteString("\n\n")
	}

	if len(dash.Kpis) > 0 {
		cards := make([]string, len(dash.Kpis))
		for i, k := range dash.Kpis {
			content := SubtleStyle.Render(k.Title) + "\n" + BoldStyle.Render(k.Value)
			if k.Insight != "" {
				content += "\n" + InfoStyle.Render(k.Insight)
			}
			cards[i] = KpiStyle.Render(content)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		b.WriteString("\n\n")
	}

	for _, c := range dash.Charts {
		b.WriteString(RenderChart(c))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderChart renders a bar chart as scaled horizontal bars and a pie chart as
// shares of the total.
func RenderChart(c model.Chart) string {
	var b strings.Builder
	b.WriteString(BoldStyle.Render(ChartIcon + " " + c.Title))
	b.WriteString("\n")

	if len(c.Data) == 0 {
		b.WriteString(SubtleStyle.Render("  (no data)"))
		b.WriteString("\n")
		return b.String()
	}

	labelWidth := 0
	var peak, total float64
	for _, p := range c.Data {
		labelWidth = max(labelWidth, lipgloss.Width(p.Name))
		peak = math.Max(peak, p.Value)
		total += p.Value
	}

	for _, p := range c.Data {
		label := p.Name + strings.Repeat(" ", labelWidth-lipgloss.Width(p.Name))
		switch c.Kind {
		case model.ChartPie:
			share := 0.0
			if total > 0 {
				share = p.Value / total * 100
			}
			fmt.Fprintf(&b, "  %s  %5.1f%%  %s\n", label, share, formatValue(p.Value))
		default:
			width := 0
			if peak > 0 {
				width = int(math.Round(p.Value / peak * chartBarWidth))
			}
			bar := InfoStyle.Render(strings.Repeat("█", max(width, 0)))
			fmt.Fprintf(&b, "  %s  %s %s\n", label, bar, formatValue(p.Value))
		}
	}

	return b.String()
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// RenderDealsPage renders one page of deals as a table.
func RenderDealsPage(page deals.Page) string {
	if page.Total == 0 {
		return FormatInfo("No deals match the current filters.")
	}

	headers := []string{"ID", "Deal", "Amount", "Stage", "Insight"}
	rows := make([][]string, len(page.Deals))
	for i, d := range page.Deals {
		name := d.DealName
		if d.RowID < 0 {
			name = NewIcon + " " + name
		}
		rows[i] = []string{fmt.Sprintf("%d", d.RowID), name, d.Amount, d.Stage, truncate(d.Insight, 50)}
	}

	var b strings.Builder
	b.WriteString(renderTable(headers, rows))
	fmt.Fprintf(&b, "\n%s\n", SubtleStyle.Render(fmt.Sprintf("Page %d of %d (%d deals)", page.Page, page.TotalPages, page.Total)))
	return b.String()
}

// renderTable lays out rows in padded columns under a bordered header.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = TableCellStyle.Width(widths[i] + 2).Render(h)
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, headerCells...)))
	b.WriteString("\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDealDetail renders a deal alongside its original source row.
func RenderDealDetail(d model.Deal, row rowstore.Row) string {
	var content strings.Builder
	fmt.Fprintf(&content, "Amount: %s\n", d.Amount)
	fmt.Fprintf(&content, "Stage: %s\n", d.Stage)
	if d.Insight != "" {
		fmt.Fprintf(&content, "%s %s\n", RobotIcon, InfoStyle.Render(d.Insight))
	}
	if d.Description != "" {
		fmt.Fprintf(&content, "\n%s\n", d.Description)
	}

	content.WriteString("\n")
	content.WriteString(BoldStyle.Render("Original data"))
	content.WriteString("\n")
	for _, kv := range row.Display() {
		fmt.Fprintf(&content, "  %s: %s\n", SubtleStyle.Render(kv[0]), kv[1])
	}

	title := fmt.Sprintf("%s (row %d)", d.DealName, d.RowID)
	if d.RowID < 0 {
		title = CreatedStyle.Render(NewIcon+" ") + title
	}
	return RenderBox(title, strings.TrimRight(content.String(), "\n"))
}

// RenderTranscriptAnalysis renders the meeting summaries of an analysis.
func RenderTranscriptAnalysis(a *model.TranscriptAnalysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(FormatTitle(a.Title))
	b.WriteString("\n")
	if a.OverallSummary != "" {
		b.WriteString(a.OverallSummary)
		b.WriteString("\n\n")
	}

	for _, m := range a.Meetings {
		var content strings.Builder
		fmt.Fprintf(&content, "Sentiment: %s\n\n%s\n", sentimentStyle(m.Sentiment).Render(string(m.Sentiment)), m.Summary)
		writeList(&content, "Action items", m.ActionItems)
		writeList(&content, "Risks", m.Risks)
		if m.SuggestedFollowUpEmail != "" {
			fmt.Fprintf(&content, "\n%s\n%s\n", BoldStyle.Render("Suggested follow-up"), m.SuggestedFollowUpEmail)
		}
		b.WriteString(RenderBox(MeetingIcon+" "+m.MeetingTitle, strings.TrimRight(content.String(), "\n")))
		b.WriteString("\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", BoldStyle.Render(title))
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
}

func sentimentStyle(s model.Sentiment) lipgloss.Style {
	switch s {
	case model.SentimentPositive:
		return SuccessStyle
	case model.SentimentNegative:
		return ErrorStyle
	case model.SentimentMixed:
		return WarningStyle
	default:
		return SubtleStyle
	}
}

// RenderSuggestion renders one pending suggestion for review.
func RenderSuggestion(s model.Suggestion) string {
	switch v := s.(type) {
	case model.UpdateSuggestion:
		return renderUpdate(v)
	case *model.UpdateSuggestion:
		return renderUpdate(*v)
	case model.CreationSuggestion:
		return renderCreation(v)
	case *model.CreationSuggestion:
		return renderCreation(*v)
	}
	return ""
}

func renderUpdate(u model.UpdateSuggestion) string {
	var content strings.Builder
	for _, f := range u.Changes.Fields() {
		c := u.Changes[f]
		fmt.Fprintf(&content, "%s: %s → %s\n", BoldStyle.Render(string(f)), OldValueStyle.Render(c.OldValue), NewValueStyle.Render(c.NewValue))
	}
	if u.Reasoning != "" {
		fmt.Fprintf(&content, "\n%s %s\n", RobotIcon, SubtleStyle.Render(u.Reasoning))
	}
	return RenderBox(fmt.Sprintf("Update %s (row %d)", u.DealName, u.RowID), strings.TrimRight(content.String(), "\n"))
}

func renderCreation(c model.CreationSuggestion) string {
	var content strings.Builder
	fmt.Fprintf(&content, "Amount: %s\nStage: %s\n", c.Deal.Amount, c.Deal.Stage)
	if c.Deal.Description != "" {
		fmt.Fprintf(&content, "\n%s\n", c.Deal.Description)
	}
	if c.PossibleDuplicateOf != nil {
		fmt.Fprintf(&content, "\n%s\n", FormatWarning(fmt.Sprintf("Possible duplicate of row %d", *c.PossibleDuplicateOf)))
	}
	if c.Reasoning != "" {
		fmt.Fprintf(&content, "\n%s %s\n", RobotIcon, SubtleStyle.Render(c.Reasoning))
	}
	return RenderBox(NewIcon+" Create "+c.Deal.DealName, strings.TrimRight(content.String(), "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
