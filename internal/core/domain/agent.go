package domain

// Agent is a call-centre agent profile.
type Agent struct {
	ID                int               `json:"id"`
	User              *User             `json:"user,omitempty"`
	EmployeeID        string            `json:"employee_id"`
	Department        string            `json:"department"`
	HireDate          string            `json:"hire_date"`
	AvgCoverageScore  float64           `json:"avg_coverage_score"` // 0–10
	TotalCallsHandled int               `json:"total_calls_handled"`
	Performance       *AgentPerformance `json:"performance,omitempty"`
}

// Name returns the agent's display name; "Agent <employee id>" when no user is attached.
func (a Agent) Name() string {
	if name := a.User.DisplayName(); name != "" {
		return name
	}
	return "Agent " + a.EmployeeID
}

// SentimentScores is a percentage distribution of call sentiment.
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// AgentPerformance is the optional qualitative/quantitative summary attached to an agent.
type AgentPerformance struct {
	SentimentScores  SentimentScores `json:"sentiment_scores"`
	ComplianceRate   float64         `json:"compliance_rate"`
	AvgCallDuration  int             `json:"avg_call_duration"` // seconds
	KeyStrengths     []string        `json:"key_strengths"`
	ImprovementAreas []string        `json:"improvement_areas"`
}

// KeyIssue is an aggregated count of an issue across analysed calls.
type KeyIssue struct {
	Issue  string `json:"issue"`
	Count  int    `json:"count"`
	Change int    `json:"change"`
}

// Trend direction reported by the metrics endpoint.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// PerformanceSummary is one timeframe's entry of the performance metrics endpoint.
type PerformanceSummary struct {
	CallsAnalyzed  int     `json:"callsAnalyzed"`
	AvgSentiment   float64 `json:"avgSentiment"`
	ComplianceRate float64 `json:"complianceRate"`
	KeyIssues      int     `json:"keyIssues"`
	Trend          Trend   `json:"trend"`
}

// Timeframes accepted by the dashboard, in display order.
var Timeframes = []string{"daily", "weekly", "monthly"}

// EmptyPerformance is the zero-valued fallback used when metrics cannot be loaded.
func EmptyPerformance() map[string]PerformanceSummary {
	out := make(map[string]PerformanceSummary, len(Timeframes))
	for _, tf := range Timeframes {
		out[tf] = PerformanceSummary{Trend: TrendNeutral}
	}
	return out
}
