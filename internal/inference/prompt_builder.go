package inference

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/rowstore"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders the embedded prompt templates.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// NewPromptBuilder creates a PromptBuilder with all templates loaded.
func NewPromptBuilder() (*PromptBuilder, error) {
	pb := &PromptBuilder{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	templates := []string{
		"dashboard_prompt",
		"transcript_prompt",
	}

	for _, name := range templates {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(fmt.Sprintf("%s.tmpl", name)).Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// DashboardPromptData is the input of the dashboard prompt.
type DashboardPromptData struct {
	TableText    string
	IDKey        string
	NotAvailable string
	RowCount     int
}

// TranscriptPromptData is the input of the transcript prompt.
type TranscriptPromptData struct {
	Transcript      string
	DealsJSON       string
	Delimiter       string
	Sentiments      []string
	Fields          []string
	TranscriptCount int
}

// BuildDashboardPrompt renders the dashboard prompt for CSV text.
func (pb *PromptBuilder) BuildDashboardPrompt(tableText string) (string, error) {
	data := DashboardPromptData{
		TableText:    tableText,
		IDKey:        rowstore.IDKey,
		NotAvailable: model.NotAvailable,
		RowCount:     countRecords(tableText),
	}
	return pb.execute("dashboard_prompt", data)
}

// BuildTranscriptPrompt renders the transcript prompt. dealsJSON is the
// indented JSON of the current deals.
func (pb *PromptBuilder) BuildTranscriptPrompt(transcript, dealsJSON string) (string, error) {
	sentiments := make([]string, len(model.Sentiments))
	for i, s := range model.Sentiments {
		sentiments[i] = string(s)
	}
	fields := make([]string, len(model.DealFieldNames))
	for i, f := range model.DealFieldNames {
		fields[i] = string(f)
	}

	data := TranscriptPromptData{
		Transcript:      transcript,
		DealsJSON:       dealsJSON,
		Delimiter:       model.TranscriptDelimiter,
		Sentiments:      sentiments,
		Fields:          fields,
		TranscriptCount: strings.Count(transcript, model.TranscriptDelimiter) + 1,
	}
	return pb.execute("transcript_prompt", data)
}

func (pb *PromptBuilder) execute(name string, data any) (string, error) {
	tmpl, ok := pb.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not loaded", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

// MarshalDeals renders deals the way they are embedded in the transcript prompt.
func MarshalDeals(deals []model.Deal) (string, error) {
	if deals == nil {
		deals = []model.Deal{}
	}
	b, err := json.MarshalIndent(deals, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal deals: %w", err)
	}
	return string(b), nil
}

// countRecords approximates the data row count of CSV text for the prompt.
func countRecords(tableText string) int {
	return strings.Count(strings.TrimRight(tableText, "\n"), "\n")
}
