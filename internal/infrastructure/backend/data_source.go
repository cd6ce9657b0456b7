package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

// DataSource implements ports.DataSource against the REST backend.
type DataSource struct {
	client *Client
}

func NewDataSource(client *Client) *DataSource {
	return &DataSource{client: client}
}

// list decodes either a bare JSON array or a paginated {"results": [...]} page.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]T)(l))
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*l = page.Results
	return nil
}

func (d *DataSource) IssueToken(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := d.client.Post(ctx, "/api/token-auth/", body, &resp, WithoutAuth()); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("token-auth: %w", domain.ErrInvalidCredentials)
	}
	return resp.Token, nil
}

func (d *DataSource) CurrentUser(ctx context.Context, token string) (*domain.Profile, error) {
	var p domain.Profile
	if err := d.client.Get(ctx, "/api/agents/me/", &p, WithToken(token)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DataSource) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	var out list[domain.Agent]
	if err := d.client.Get(ctx, "/api/agents/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DataSource) GetAgent(ctx context.Context, id int) (*domain.Agent, error) {
	var a domain.Agent
	if err := d.client.Get(ctx, fmt.Sprintf("/api/agents/%d/", id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// performanceResponse covers both the summary shape (sentiment_scores etc.) and the
// raw counts returned by the agent performance action.
type performanceResponse struct {
	domain.AgentPerformance
	SentimentDistribution *struct {
		Positive int `json:"positive"`
		Neutral  int `json:"neutral"`
		Negative int `json:"negative"`
	} `json:"sentiment_distribution"`
}

func (d *DataSource) AgentPerformance(ctx context.Context, id int) (*domain.AgentPerformance, error) {
	var resp performanceResponse
	if err := d.client.Get(ctx, fmt.Sprintf("/api/agents/%d/performance/", id), &resp); err != nil {
		return nil, err
	}
	perf := resp.AgentPerformance
	if dist := resp.SentimentDistribution; dist != nil {
		if total := dist.Positive + dist.Neutral + dist.Negative; total > 0 {
			perf.SentimentScores = domain.SentimentScores{
				Positive: percent(dist.Positive, total),
				Neutral:  percent(dist.Neutral, total),
				Negative: percent(dist.Negative, total),
			}
		}
	}
	return &perf, nil
}

func percent(n, total int) float64 {
	return float64(n*100) / float64(total)
}

func (d *DataSource) Leaderboard(ctx context.Context, limit int) ([]domain.Agent, error) {
	var out list[domain.Agent]
	if err := d.client.Get(ctx, withLimit("/api/agents/leaderboard/", limit), &out); err != nil {
		return nil, err
	}
	return truncate([]domain.Agent(out), limit), nil
}

func (d *DataSource) ListRecordings(ctx context.Context, limit int) ([]domain.CallRecording, error) {
	var out list[domain.CallRecording]
	if err := d.client.Get(ctx, withLimit("/api/call-recordings/", limit), &out); err != nil {
		return nil, err
	}
	return truncate([]domain.CallRecording(out), limit), nil
}

func (d *DataSource) GetRecording(ctx context.Context, id int) (*domain.CallRecording, error) {
	var r domain.CallRecording
	if err := d.client.Get(ctx, fmt.Sprintf("/api/call-recordings/%d/", id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DataSource) UploadRecording(ctx context.Context, in domain.UploadInput) (*domain.CallRecording, error) {
	form, err := encodeUpload(in)
	if err != nil {
		return nil, err
	}
	var r domain.CallRecording
	if err := d.client.Upload(ctx, "/api/call-recordings/", form, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func encodeUpload(in domain.UploadInput) (*Multipart, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"title", in.Title},
		{"agent", in.AgentID},
		{"customer_phone", in.CustomerPhone},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if in.File != nil {
		part, err := w.CreateFormFile("file", in.FileName)
		if err != nil {
			return nil, fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, in.File); err != nil {
			return nil, fmt.Errorf("copy file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return &Multipart{Body: &buf, ContentType: w.FormDataContentType()}, nil
}

func (d *DataSource) GetAnalysis(ctx context.Context, recordingID int) (*domain.CallAnalysis, error) {
	var a domain.CallAnalysis
	if err := d.client.Get(ctx, fmt.Sprintf("/api/call-analyses/recording/%d/", recordingID), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *DataSource) KeyIssues(ctx context.Context) ([]domain.KeyIssue, error) {
	var out list[domain.KeyIssue]
	if err := d.client.Get(ctx, "/api/call-analyses/key-issues/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DataSource) PerformanceMetrics(ctx context.Context) (map[string]domain.PerformanceSummary, error) {
	out := make(map[string]domain.PerformanceSummary)
	if err := d.client.Get(ctx, "/api/metrics/performance/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the backend answers at all; any HTTP status counts as reachable.
func (d *DataSource) Ping(ctx context.Context) error {
	err := d.client.Get(ctx, "/api/", nil, WithoutAuth())
	var herr *HTTPError
	if errors.As(err, &herr) {
		return nil
	}
	return err
}

func withLimit(endpoint string, limit int) string {
	if limit <= 0 {
		return endpoint
	}
	return endpoint + "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
