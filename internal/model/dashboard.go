package model

// ChartKind discriminates the supported chart renderings.
type ChartKind string

const (
	// ChartBar renders as a bar chart.
	ChartBar ChartKind = "bar"
	// ChartPie renders as a pie chart.
	ChartPie ChartKind = "pie"
)

// Valid reports whether k is a supported chart kind.
func (k ChartKind) Valid() bool {
	return k == ChartBar || k == ChartPie
}

// ChartPoint is one labelled value of a chart.
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Chart is an immutable chart description produced by the dashboard analysis.
type Chart struct {
	Kind  ChartKind    `json:"chartType"`
	Title string       `json:"title"`
	Data  []ChartPoint `json:"data"`
}

// Kpi is a single key performance indicator.
type Kpi struct {
	Title   string `json:"title"`
	Value   string `json:"value"`
	Insight string `json:"insight"`
}

// Dashboard is the full result of analyzing a CRM export.
type Dashboard struct {
	Title   string  `json:"analysisTitle"`
	Summary string  `json:"summary"`
	Kpis    []Kpi   `json:"kpis"`
	Charts  []Chart `json:"charts"`
	Deals   []Deal  `json:"deals"`
}
