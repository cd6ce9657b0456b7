package domain

import "strings"

// FilterAll disables a status or sentiment filter.
const FilterAll = "all"

// RecordingFilter narrows a recording list. Status and Sentiment match the stored enum
// values exactly; Search is a case-insensitive substring of title or agent name.
type RecordingFilter struct {
	Search    string
	Status    string
	Sentiment string
}

func (f RecordingFilter) Matches(r CallRecording) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Agent.Name), q) {
			return false
		}
	}
	if f.Status != "" && f.Status != FilterAll && string(r.Status) != f.Status {
		return false
	}
	if f.Sentiment != "" && f.Sentiment != FilterAll && string(r.Sentiment) != f.Sentiment {
		return false
	}
	return true
}

// FilterRecordings returns the recordings matching every predicate of f, in order.
func FilterRecordings(recs []CallRecording, f RecordingFilter) []CallRecording {
	out := make([]CallRecording, 0, len(recs))
	for _, r := range recs {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterAgents keeps agents whose name, employee id or department contains q.
func FilterAgents(agents []Agent, q string) []Agent {
	if q == "" {
		return agents
	}
	q = strings.ToLower(q)
	out := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if strings.Contains(strings.ToLower(a.Name()), q) ||
			strings.Contains(strings.ToLower(a.EmployeeID), q) ||
			strings.Contains(strings.ToLower(a.Department), q) {
			out = append(out, a)
		}
	}
	return out
}
