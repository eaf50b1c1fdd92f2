package inference

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
)

// Wire types mirror the model-facing schemas. They are decoded strictly and
// then converted into domain types.

type wireKpi struct {
	Title   string `json:"title" jsonschema:"required" jsonschema_description:"The name of the metric, e.g. Total Revenue or Average Deal Size."`
	Value   string `json:"value" jsonschema:"required" jsonschema_description:"The calculated value of the metric. Format currency, percentages and numbers appropriately."`
	Insight string `json:"insight" jsonschema:"required" jsonschema_description:"A brief insight, comparison or context for the metric. May be an empty string."`
}

type wireChartPoint struct {
	Name  string  `json:"name" jsonschema:"required" jsonschema_description:"The label for a data point, e.g. a category name."`
	Value float64 `json:"value" jsonschema:"required" jsonschema_description:"The numerical value for that data point."`
}

type wireChart struct {
	ChartType string           `json:"chartType" jsonschema:"required,enum=bar,enum=pie" jsonschema_description:"The type of chart."`
	Title     string           `json:"title" jsonschema:"required" jsonschema_description:"The title of the chart, e.g. Opportunities by Stage."`
	Data      []wireChartPoint `json:"data" jsonschema:"required" jsonschema_description:"The data points for the chart."`
}

type wireDeal struct {
	RowID       int    `json:"rowId" jsonschema:"required" jsonschema_description:"The __AI_ROW_ID__ of the CSV row this deal came from. It MUST be included."`
	DealName    string `json:"dealName" jsonschema:"required" jsonschema_description:"The name or title of the opportunity."`
	Amount      string `json:"amount" jsonschema:"required" jsonschema_description:"The monetary value formatted as a currency string such as $15,000. Use N/A if not available."`
	Stage       string `json:"stage" jsonschema:"required" jsonschema_description:"The current sales stage, e.g. Prospecting or Closed Won."`
	Insight     string `json:"insight" jsonschema:"required" jsonschema_description:"A one-sentence insight about this specific deal."`
	Description string `json:"description" jsonschema:"required" jsonschema_description:"The description from the CSV if a description or notes column is present and not empty. Otherwise a detailed multi-sentence description built from the other data."`
}

type wireDashboard struct {
	AnalysisTitle string      `json:"analysisTitle" jsonschema:"required" jsonschema_description:"A concise title for the dashboard, e.g. Q3 Sales Pipeline Analysis."`
	Summary       string      `json:"summary" jsonschema:"required" jsonschema_description:"A 2-3 sentence summary of the key findings and trends."`
	Kpis          []wireKpi   `json:"kpis" jsonschema:"required" jsonschema_description:"3-5 key performance indicators derived from the data, or an empty array."`
	Charts        []wireChart `json:"charts" jsonschema:"required" jsonschema_description:"2-4 bar or pie charts visualizing the data, or an empty array."`
	Deals         []wireDeal  `json:"deals" jsonschema:"required" jsonschema_description:"Every individual sales opportunity found in the data."`
}

type wireMeeting struct {
	MeetingTitle           string   `json:"meetingTitle" jsonschema:"required" jsonschema_description:"A descriptive title for the meeting, e.g. Follow-up with Acme Corp."`
	Summary                string   `json:"summary" jsonschema:"required" jsonschema_description:"A short paragraph summarizing the discussion and outcomes of this meeting."`
	Sentiment              string   `json:"sentiment" jsonschema:"required,enum=Positive,enum=Neutral,enum=Negative,enum=Mixed,enum=Unknown" jsonschema_description:"The overall sentiment of the client or prospect."`
	ActionItems            []string `json:"actionItems" jsonschema:"required" jsonschema_description:"Clear, concise action items for the sales team."`
	Risks                  []string `json:"risks" jsonschema:"required" jsonschema_description:"Risks, objections or concerns raised by the client."`
	SuggestedFollowUpEmail string   `json:"suggestedFollowUpEmail" jsonschema:"required" jsonschema_description:"A complete follow-up email from the salesperson, ready to send."`
}

type wireChange struct {
	Field    string `json:"field" jsonschema:"required,enum=dealName,enum=amount,enum=stage,enum=insight,enum=description" jsonschema_description:"The deal field to change."`
	OldValue string `json:"oldValue" jsonschema:"required"`
	NewValue string `json:"newValue" jsonschema:"required"`
}

type wireUpdate struct {
	Type      string       `json:"type" jsonschema:"required,enum=update"`
	RowID     int          `json:"rowId" jsonschema:"required" jsonschema_description:"The rowId of the existing deal to update."`
	DealName  string       `json:"dealName" jsonschema:"required" jsonschema_description:"The name of the deal being updated, for reference."`
	Changes   []wireChange `json:"changes" jsonschema:"required" jsonschema_description:"The fields to change with their old and new values."`
	Reasoning string       `json:"reasoning" jsonschema:"required" jsonschema_description:"Why this change is suggested, referencing the transcript."`
}

type wireNewDeal struct {
	DealName    string `json:"dealName" jsonschema:"required" jsonschema_description:"The name of the new opportunity."`
	Amount      string `json:"amount" jsonschema:"required" jsonschema_description:"The estimated value formatted as a currency string. Use N/A if not mentioned."`
	Stage       string `json:"stage" jsonschema:"required" jsonschema_description:"The suggested initial sales stage, e.g. Qualification."`
	Description string `json:"description" jsonschema:"required" jsonschema_description:"A detailed description of the opportunity synthesized from the transcript."`
}

type wireCreation struct {
	Type      string      `json:"type" jsonschema:"required,enum=create"`
	Deal      wireNewDeal `json:"deal" jsonschema:"required"`
	Reasoning string      `json:"reasoning" jsonschema:"required" jsonschema_description:"Why this is a new deal, referencing the transcript."`
}

type wireTranscriptAnalysis struct {
	AnalysisTitle  string         `json:"analysisTitle" jsonschema:"required" jsonschema_description:"A concise title for the whole analysis, e.g. Analysis of 3 Customer Meetings."`
	OverallSummary string         `json:"overallSummary" jsonschema:"required" jsonschema_description:"A 2-3 sentence summary combining the takeaways from all transcripts."`
	Meetings       []wireMeeting  `json:"meetings" jsonschema:"required" jsonschema_description:"One analysis per transcript found in the input."`
	Updates        []wireUpdate   `json:"updates" jsonschema:"required" jsonschema_description:"Suggested updates to existing deals. Only deals that need changes."`
	Creations      []wireCreation `json:"creations" jsonschema:"required" jsonschema_description:"New deals found in the transcripts that are not in the CRM data."`
}

// Top-level fields that must be present and non-null in each response.
var (
	dashboardRequired  = []string{"analysisTitle", "kpis", "charts", "deals"}
	transcriptRequired = []string{"meetings", "updates", "creations"}
)

var (
	dashboardSchema  = generateSchema[wireDashboard]()
	transcriptSchema = generateSchema[wireTranscriptAnalysis]()
)

// Schema names accepted by SchemaFor.
const (
	DashboardSchemaName  = "dashboard"
	TranscriptSchemaName = "transcript"
)

// SchemaFor returns the JSON schema sent to the model for the named operation.
func SchemaFor(name string) (map[string]any, bool) {
	switch name {
	case DashboardSchemaName:
		return dashboardSchema, true
	case TranscriptSchemaName:
		return transcriptSchema, true
	default:
		return nil, false
	}
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schemaObj, err := schemaToMap(reflector.Reflect(v))
	if err != nil {
		panic(err)
	}
	ensureStrictObjects(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// ensureStrictObjects closes every object and marks all of its properties
// required, as strict structured output demands.
func ensureStrictObjects(schema map[string]any) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				sort.Strings(requiredFields)
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureStrictObjects(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureStrictObjects(items)
	}
}
