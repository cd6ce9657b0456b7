// Package fixture serves canned dashboard data for local development when no
// backend is configured. It implements ports.DataSource.
package fixture

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

const (
	DemoUsername = "demo"
	DemoPassword = "password"
	// MockToken is the token issued for the demo account.
	MockToken = "mock-jwt-token-for-development"

	// DefaultDelay is the simulated latency of read calls.
	DefaultDelay = 500 * time.Millisecond

	firstUploadID = 999
)

// Options configures the fixture data source. Delay applies to reads; login waits
// twice as long and uploads four times as long. A zero Delay disables waiting.
type Options struct {
	Delay  time.Duration
	Logger zerolog.Logger
}

type DataSource struct {
	delay    time.Duration
	log      zerolog.Logger
	demoHash []byte

	mu         sync.RWMutex
	agents     []domain.Agent
	recordings []domain.CallRecording
	analyses   map[int]domain.CallAnalysis
	nextID     int
}

func NewDataSource(opts Options) (*DataSource, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &DataSource{
		delay:      opts.Delay,
		log:        opts.Logger,
		demoHash:   hash,
		agents:     seedAgents(),
		recordings: seedRecordings(),
		analyses:   seedAnalyses(),
		nextID:     firstUploadID,
	}, nil
}

// wait simulates network latency and honours cancellation.
func (d *DataSource) wait(ctx context.Context, factor int) error {
	if d.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.delay * time.Duration(factor))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (d *DataSource) IssueToken(ctx context.Context, username, password string) (string, error) {
	if err := d.wait(ctx, 2); err != nil {
		return "", err
	}
	if username != DemoUsername || bcrypt.CompareHashAndPassword(d.demoHash, []byte(password)) != nil {
		d.log.Debug().Str("username", username).Msg("fixture login rejected")
		return "", domain.ErrInvalidCredentials
	}
	return MockToken, nil
}

func (d *DataSource) CurrentUser(ctx context.Context, token string) (*domain.Profile, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	if token != MockToken {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Profile{User: demoUser()}, nil
}

func (d *DataSource) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Agent(nil), d.agents...), nil
}

func (d *DataSource) GetAgent(ctx context.Context, id int) (*domain.Agent, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.agents {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (d *DataSource) AgentPerformance(ctx context.Context, id int) (*domain.AgentPerformance, error) {
	a, err := d.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Performance == nil {
		return &domain.AgentPerformance{}, nil
	}
	perf := *a.Performance
	return &perf, nil
}

func (d *DataSource) Leaderboard(ctx context.Context, limit int) ([]domain.Agent, error) {
	agents, err := d.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].AvgCoverageScore > agents[j].AvgCoverageScore
	})
	if limit > 0 && len(agents) > limit {
		agents = agents[:limit]
	}
	return agents, nil
}

func (d *DataSource) ListRecordings(ctx context.Context, limit int) ([]domain.CallRecording, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	d.mu.RLock()
	out := append([]domain.CallRecording(nil), d.recordings...)
	d.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *DataSource) GetRecording(ctx context.Context, id int) (*domain.CallRecording, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.recordings {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UploadRecording accepts any upload and registers it as processing.
func (d *DataSource) UploadRecording(ctx context.Context, in domain.UploadInput) (*domain.CallRecording, error) {
	if err := d.wait(ctx, 4); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := domain.CallRecording{
		ID:            d.nextID,
		Title:         in.Title,
		Agent:         d.recordingAgent(in.AgentID),
		CustomerPhone: in.CustomerPhone,
		UploadedAt:    time.Now().UTC(),
		Status:        domain.RecordingProcessing,
		Sentiment:     domain.SentimentPending,
	}
	d.nextID++
	d.recordings = append(d.recordings, rec)
	d.log.Info().Int("recording_id", rec.ID).Str("title", rec.Title).Msg("fixture recording uploaded")
	return &rec, nil
}

// recordingAgent resolves an agent id from the upload form; caller holds d.mu.
func (d *DataSource) recordingAgent(agentID string) domain.RecordingAgent {
	for _, a := range d.agents {
		if strconv.Itoa(a.ID) == agentID {
			return domain.RecordingAgent{ID: a.ID, Name: a.Name(), Department: a.Department}
		}
	}
	return domain.RecordingAgent{Name: agentID}
}

func (d *DataSource) GetAnalysis(ctx context.Context, recordingID int) (*domain.CallAnalysis, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.analyses[recordingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (d *DataSource) KeyIssues(ctx context.Context) ([]domain.KeyIssue, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	return seedKeyIssues(), nil
}

func (d *DataSource) PerformanceMetrics(ctx context.Context) (map[string]domain.PerformanceSummary, error) {
	if err := d.wait(ctx, 1); err != nil {
		return nil, err
	}
	return seedPerformance(), nil
}

// Ping always succeeds.
func (d *DataSource) Ping(context.Context) error { return nil }
