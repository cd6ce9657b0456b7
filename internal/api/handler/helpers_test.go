package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

// stubSource implements ports.DataSource; nil funcs return zero values.
type stubSource struct {
	listAgentsFn     func(ctx context.Context) ([]domain.Agent, error)
	getAgentFn       func(ctx context.Context, id int) (*domain.Agent, error)
	performanceFn    func(ctx context.Context, id int) (*domain.AgentPerformance, error)
	leaderboardFn    func(ctx context.Context, limit int) ([]domain.Agent, error)
	listRecordingsFn func(ctx context.Context, limit int) ([]domain.CallRecording, error)
	getRecordingFn   func(ctx context.Context, id int) (*domain.CallRecording, error)
	uploadFn         func(ctx context.Context, in domain.UploadInput) (*domain.CallRecording, error)
	getAnalysisFn    func(ctx context.Context, id int) (*domain.CallAnalysis, error)
	keyIssuesFn      func(ctx context.Context) ([]domain.KeyIssue, error)
	metricsFn        func(ctx context.Context) (map[string]domain.PerformanceSummary, error)
}

func (s *stubSource) IssueToken(context.Context, string, string) (string, error) {
	return "", nil
}

func (s *stubSource) CurrentUser(context.Context, string) (*domain.Profile, error) {
	return nil, nil
}

func (s *stubSource) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	if s.listAgentsFn == nil {
		return nil, nil
	}
	return s.listAgentsFn(ctx)
}

func (s *stubSource) GetAgent(ctx context.Context, id int) (*domain.Agent, error) {
	if s.getAgentFn == nil {
		return nil, domain.ErrNotFound
	}
	return s.getAgentFn(ctx, id)
}

func (s *stubSource) AgentPerformance(ctx context.Context, id int) (*domain.AgentPerformance, error) {
	if s.performanceFn == nil {
		return nil, domain.ErrNotFound
	}
	return s.performanceFn(ctx, id)
}

func (s *stubSource) Leaderboard(ctx context.Context, limit int) ([]domain.Agent, error) {
	if s.leaderboardFn == nil {
		return nil, nil
	}
	return s.leaderboardFn(ctx, limit)
}

func (s *stubSource) ListRecordings(ctx context.Context, limit int) ([]domain.CallRecording, error) {
	if s.listRecordingsFn == nil {
		return nil, nil
	}
	return s.listRecordingsFn(ctx, limit)
}

func (s *stubSource) GetRecording(ctx context.Context, id int) (*domain.CallRecording, error) {
	if s.getRecordingFn == nil {
		return nil, domain.ErrNotFound
	}
	return s.getRecordingFn(ctx, id)
}

func (s *stubSource) UploadRecording(ctx context.Context, in domain.UploadInput) (*domain.CallRecording, error) {
	if s.uploadFn == nil {
		return &domain.CallRecording{ID: 1, Title: in.Title}, nil
	}
	return s.uploadFn(ctx, in)
}

func (s *stubSource) GetAnalysis(ctx context.Context, id int) (*domain.CallAnalysis, error) {
	if s.getAnalysisFn == nil {
		return nil, domain.ErrNotFound
	}
	return s.getAnalysisFn(ctx, id)
}

func (s *stubSource) KeyIssues(ctx context.Context) ([]domain.KeyIssue, error) {
	if s.keyIssuesFn == nil {
		return nil, nil
	}
	return s.keyIssuesFn(ctx)
}

func (s *stubSource) PerformanceMetrics(ctx context.Context) (map[string]domain.PerformanceSummary, error) {
	if s.metricsFn == nil {
		return domain.EmptyPerformance(), nil
	}
	return s.metricsFn(ctx)
}

// captureRenderer records the last rendered page instead of executing templates.
type captureRenderer struct {
	name string
	page page
}

func (r *captureRenderer) Render(_ io.Writer, name string, data any, _ echo.Context) error {
	r.name = name
	r.page, _ = data.(page)
	return nil
}

func newTestEcho() (*echo.Echo, *captureRenderer) {
	e := echo.New()
	r := &captureRenderer{}
	e.Renderer = r
	e.Validator = NewValidator()
	return e, r
}

func newGetContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
