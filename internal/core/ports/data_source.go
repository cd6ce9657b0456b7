package ports

import (
	"context"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

// DataSource is the single data-access interface pages depend on. The real
// implementation talks to the REST backend, the fixture one serves canned data.
type DataSource interface {
	// IssueToken exchanges credentials for an opaque token.
	IssueToken(ctx context.Context, username, password string) (string, error)
	// CurrentUser fetches the profile the given token belongs to.
	CurrentUser(ctx context.Context, token string) (*domain.Profile, error)

	ListAgents(ctx context.Context) ([]domain.Agent, error)
	GetAgent(ctx context.Context, id int) (*domain.Agent, error)
	AgentPerformance(ctx context.Context, id int) (*domain.AgentPerformance, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.Agent, error)

	// ListRecordings returns the most recent recordings; limit <= 0 means all.
	ListRecordings(ctx context.Context, limit int) ([]domain.CallRecording, error)
	GetRecording(ctx context.Context, id int) (*domain.CallRecording, error)
	UploadRecording(ctx context.Context, in domain.UploadInput) (*domain.CallRecording, error)

	GetAnalysis(ctx context.Context, recordingID int) (*domain.CallAnalysis, error)
	KeyIssues(ctx context.Context) ([]domain.KeyIssue, error)
	PerformanceMetrics(ctx context.Context) (map[string]domain.PerformanceSummary, error)
}
