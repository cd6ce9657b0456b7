package handler

import (
	"context"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

const (
	recentCallsLimit = 5
	topAgentsLimit   = 3
	defaultTimeframe = "daily"
)

// DashboardHandler renders the overview page.
type DashboardHandler struct {
	source ports.DataSource
	log    zerolog.Logger
}

func NewDashboardHandler(source ports.DataSource, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{source: source, log: log}
}

type dashboardView struct {
	Timeframe  string
	Timeframes []string
	Summary    domain.PerformanceSummary
	Recent     []domain.CallRecording
	TopAgents  []domain.Agent
	KeyIssues  []domain.KeyIssue
	Notice     string
}

// Show loads the four dashboard panels concurrently. A panel that fails to load
// is shown empty; only auth failures abort the page.
func (h *DashboardHandler) Show(c echo.Context) error {
	tf := c.QueryParam("timeframe")
	if !slices.Contains(domain.Timeframes, tf) {
		tf = defaultTimeframe
	}

	var (
		perf     map[string]domain.PerformanceSummary
		recent   []domain.CallRecording
		top      []domain.Agent
		issues   []domain.KeyIssue
		failures = make([]bool, 4)
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	fetch := func(i int, name string, fn func(context.Context) error) {
		g.Go(func() error {
			err := fn(ctx)
			if err == nil {
				return nil
			}
			if isAuthError(err) {
				return err
			}
			h.log.Warn().Err(err).Str("panel", name).Msg("dashboard panel unavailable")
			failures[i] = true
			return nil
		})
	}

	fetch(0, "performance", func(ctx context.Context) (err error) {
		perf, err = h.source.PerformanceMetrics(ctx)
		return err
	})
	fetch(1, "recent_calls", func(ctx context.Context) (err error) {
		recent, err = h.source.ListRecordings(ctx, recentCallsLimit)
		return err
	})
	fetch(2, "top_agents", func(ctx context.Context) (err error) {
		top, err = h.source.Leaderboard(ctx, topAgentsLimit)
		return err
	})
	fetch(3, "key_issues", func(ctx context.Context) (err error) {
		issues, err = h.source.KeyIssues(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if perf == nil {
		perf = domain.EmptyPerformance()
	}
	summary, ok := perf[tf]
	if !ok {
		summary = domain.EmptyPerformance()[tf]
	}

	view := dashboardView{
		Timeframe:  tf,
		Timeframes: domain.Timeframes,
		Summary:    summary,
		Recent:     recent,
		TopAgents:  top,
		KeyIssues:  issues,
	}
	if slices.Contains(failures, true) {
		view.Notice = "Some dashboard data could not be loaded. Showing what is available."
	}
	return render(c, "dashboard", newPage(c, "Dashboard", "dashboard", view))
}
