package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
)

// decodeDashboard parses and structurally validates a dashboard response.
func decodeDashboard(text string) (*model.Dashboard, error) {
	var wire wireDashboard
	if err := decodeStrict(text, dashboardRequired, &wire); err != nil {
		return nil, err
	}
	if strings.TrimSpace(wire.AnalysisTitle) == "" {
		return nil, fmt.Errorf("%w: analysisTitle is empty", common.ErrIncompleteResponse)
	}

	dash := &model.Dashboard{
		Title:   wire.AnalysisTitle,
		Summary: wire.Summary,
		Kpis:    make([]model.Kpi, len(wire.Kpis)),
		Charts:  make([]model.Chart, len(wire.Charts)),
		Deals:   make([]model.Deal, len(wire.Deals)),
	}

	for i, k := range wire.Kpis {
		dash.Kpis[i] = model.Kpi(k)
	}

	for i, c := range wire.Charts {
		kind := model.ChartKind(c.ChartType)
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: chart %d has unsupported type %q", common.ErrMalformedResponse, i, c.ChartType)
		}
		points := make([]model.ChartPoint, len(c.Data))
		for j, p := range c.Data {
			points[j] = model.ChartPoint(p)
		}
		dash.Charts[i] = model.Chart{Kind: kind, Title: c.Title, Data: points}
	}

	for i, d := range wire.Deals {
		dash.Deals[i] = model.Deal{
			RowID:       d.RowID,
			DealName:    d.DealName,
			Amount:      d.Amount,
			Stage:       d.Stage,
			Insight:     d.Insight,
			Description: d.Description,
		}
	}

	return dash, nil
}

// decodeTranscriptAnalysis parses and structurally validates a transcript
// response. Change entries naming an unknown field are dropped, and so are
// updates left with no changes.
func decodeTranscriptAnalysis(text string) (*model.TranscriptAnalysis, error) {
	var wire wireTranscriptAnalysis
	if err := decodeStrict(text, transcriptRequired, &wire); err != nil {
		return nil, err
	}

	analysis := &model.TranscriptAnalysis{
		Title:          wire.AnalysisTitle,
		OverallSummary: wire.OverallSummary,
		Meetings:       make([]model.MeetingAnalysis, len(wire.Meetings)),
		Updates:        make([]model.UpdateSuggestion, 0, len(wire.Updates)),
		Creations:      make([]model.CreationSuggestion, len(wire.Creations)),
	}

	for i, m := range wire.Meetings {
		sentiment := model.Sentiment(m.Sentiment)
		if !sentiment.Valid() {
			return nil, fmt.Errorf("%w: meeting %d has unsupported sentiment %q", common.ErrMalformedResponse, i, m.Sentiment)
		}
		analysis.Meetings[i] = model.MeetingAnalysis{
			MeetingTitle:           m.MeetingTitle,
			Summary:                m.Summary,
			Sentiment:              sentiment,
			ActionItems:            nonNil(m.ActionItems),
			Risks:                  nonNil(m.Risks),
			SuggestedFollowUpEmail: m.SuggestedFollowUpEmail,
		}
	}

	for _, u := range wire.Updates {
		changes := foldChanges(u)
		if len(changes) == 0 {
			slog.Warn("Dropping update suggestion without valid changes",
				"row_id", u.RowID,
				"deal_name", u.DealName)
			continue
		}
		analysis.Updates = append(analysis.Updates, model.UpdateSuggestion{
			RowID:     u.RowID,
			DealName:  u.DealName,
			Changes:   changes,
			Reasoning: u.Reasoning,
		})
	}

	for i, c := range wire.Creations {
		analysis.Creations[i] = model.CreationSuggestion{
			Deal: model.DealFields{
				DealName:    c.Deal.DealName,
				Amount:      c.Deal.Amount,
				Stage:       c.Deal.Stage,
				Description: c.Deal.Description,
			},
			Reasoning: c.Reasoning,
		}
	}

	return analysis, nil
}

// foldChanges turns the wire change list into a field map. The first entry
// for a field wins.
func foldChanges(u wireUpdate) model.Changes {
	changes := make(model.Changes, len(u.Changes))
	for _, c := range u.Changes {
		field, err := model.ParseDealField(c.Field)
		if err != nil {
			slog.Warn("Ignoring change to unknown deal field",
				"row_id", u.RowID,
				"field", c.Field)
			continue
		}
		if _, dup := changes[field]; dup {
			continue
		}
		changes[field] = model.FieldChange{OldValue: c.OldValue, NewValue: c.NewValue}
	}
	return changes
}

// decodeStrict checks that every required top-level field is present and
// non-null, then decodes text into out rejecting unknown fields.
func decodeStrict(text string, required []string, out any) error {
	data := []byte(stripCodeFence(text))

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("%w: %w", common.ErrMalformedResponse, err)
	}

	var missing []string
	for _, name := range required {
		raw, ok := top[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrIncompleteResponse, strings.Join(missing, ", "))
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", common.ErrMalformedResponse, err)
	}

	return nil
}

// stripCodeFence removes a markdown code fence around a JSON document.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
