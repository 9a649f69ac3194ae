package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/judgesession"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/strategy"
)

// executeJudgeHandler handles POST /agents/execute/judge. Response is an
// array of ExecutionResponse, one per model run — currently always one
// (spec §6).
func (s *Server) executeJudgeHandler(c *echo.Context) error {
	caller := extractPrincipal(c)
	if caller.IsAnonymous() {
		return mapCoreError(errs.New(errs.KindUnauthorized, "authentication required"))
	}

	var req ExecuteJudgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AgentID == "" || req.Model == "" || req.ContestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "agent_id, model, and contest_id are required")
	}

	ctx := c.Request().Context()
	contestJudge, err := s.store.ContestJudges.GetByContestAndAgent(ctx, req.ContestID, req.AgentID)
	if err != nil {
		return mapCoreError(err)
	}

	texts, err := s.store.Texts.ListByContest(ctx, req.ContestID)
	if err != nil {
		return mapCoreError(err)
	}
	aiTexts := make([]strategy.JudgeText, 0, len(texts))
	for _, t := range texts {
		aiTexts = append(aiTexts, strategy.JudgeText{TextID: t.ID, Title: t.Title, Content: t.Content})
	}

	agent, err := s.store.Agents.Get(ctx, req.AgentID)
	if err != nil {
		return mapCoreError(err)
	}

	outcome, err := s.judge.ExecuteJudge(ctx, req.ContestID, contestJudge.ID,
		judgesession.JudgeContext{Caller: caller, IsAI: true, AgentID: req.AgentID, Model: req.Model},
		nil, aiTexts, agent.Prompt)
	if err != nil {
		return mapCoreError(err)
	}

	return c.JSON(http.StatusOK, []ExecutionResponse{{
		ID:          outcome.ExecutionID,
		Status:      string(models.ExecutionStatusCompleted),
		CreditsUsed: outcome.CreditsUsed,
	}})
}
