package model

// TranscriptDelimiter separates individual transcripts in a combined input.
const TranscriptDelimiter = "--- NEW TRANSCRIPT ---"

// Sentiment is the client's overall sentiment during a meeting.
type Sentiment string

// Sentiment values accepted from the model.
const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentMixed    Sentiment = "Mixed"
	SentimentUnknown  Sentiment = "Unknown"
)

// Sentiments lists every accepted sentiment value.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative, SentimentMixed, SentimentUnknown}

// Valid reports whether s is an accepted sentiment.
func (s Sentiment) Valid() bool {
	for _, v := range Sentiments {
		if s == v {
			return true
		}
	}
	return false
}

// MeetingAnalysis is the analysis of one transcript segment.
type MeetingAnalysis struct {
	MeetingTitle           string    `json:"meetingTitle"`
	Summary                string    `json:"summary"`
	Sentiment              Sentiment `json:"sentiment"`
	SuggestedFollowUpEmail string    `json:"suggestedFollowUpEmail"`
	ActionItems            []string  `json:"actionItems"`
	Risks                  []string  `json:"risks"`
}

// TranscriptAnalysis is the full result of analyzing one or more transcripts.
type TranscriptAnalysis struct {
	Title          string               `json:"analysisTitle"`
	OverallSummary string               `json:"overallSummary"`
	Meetings       []MeetingAnalysis    `json:"meetings"`
	Updates        []UpdateSuggestion   `json:"updates"`
	Creations      []CreationSuggestion `json:"creations"`
}
