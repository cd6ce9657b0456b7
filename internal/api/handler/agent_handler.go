package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/domain"
	"github.com/callanalyzer/dashboard/internal/core/ports"
)

// AgentHandler renders the agent roster and agent detail pages.
type AgentHandler struct {
	source ports.DataSource
	log    zerolog.Logger
}

func NewAgentHandler(source ports.DataSource, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{source: source, log: log}
}

type agentsView struct {
	Query  string
	Agents []domain.Agent
}

type agentView struct {
	Agent       *domain.Agent
	Performance *domain.AgentPerformance
}

func (h *AgentHandler) List(c echo.Context) error {
	q := c.QueryParam("q")
	p := newPage(c, "Agents", "agents", nil)

	agents, err := h.source.ListAgents(c.Request().Context())
	if err != nil {
		if p.Error, err = inlineError(err); err != nil {
			return err
		}
	}
	p.Data = agentsView{Query: q, Agents: domain.FilterAgents(agents, q)}
	return render(c, "agents", p)
}

// Show renders one agent. Performance comes from the agent record when embedded,
// otherwise from the performance endpoint; its absence is not an error.
func (h *AgentHandler) Show(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "agent not found")
	}
	ctx := c.Request().Context()

	agent, err := h.source.GetAgent(ctx, id)
	if err != nil {
		return err
	}

	perf := agent.Performance
	if perf == nil {
		perf, err = h.source.AgentPerformance(ctx, id)
		if err != nil {
			if isAuthError(err) {
				return err
			}
			if !errors.Is(err, domain.ErrNotFound) {
				h.log.Warn().Err(err).Int("agent_id", id).Msg("agent performance unavailable")
			}
			perf = nil
		}
	}

	return render(c, "agent_detail", newPage(c, agent.Name(), "agents", agentView{Agent: agent, Performance: perf}))
}
