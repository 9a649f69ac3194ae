package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/judgesession"
)

// submitVotesHandler handles POST /contests/:id/votes: a full replace-all
// of the calling human judge's votes in this contest (spec §6).
func (s *Server) submitVotesHandler(c *echo.Context) error {
	caller := extractPrincipal(c)
	if caller.IsAnonymous() {
		return mapCoreError(errs.New(errs.KindUnauthorized, "authentication required"))
	}

	contestID := c.Param("id")
	var body []VoteCreate
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	contestJudge, err := s.store.ContestJudges.GetByContestAndUser(ctx, contestID, caller.UserID)
	if err != nil {
		return mapCoreError(err)
	}

	votes := make([]judgesession.VoteInput, 0, len(body))
	for _, v := range body {
		votes = append(votes, judgesession.VoteInput{TextID: v.TextID, Place: v.TextPlace, Comment: v.Comment})
	}

	outcome, err := s.judge.ExecuteJudge(ctx, contestID, contestJudge.ID,
		judgesession.JudgeContext{Caller: caller, IsAI: false}, votes, nil, "")
	if err != nil {
		return mapCoreError(err)
	}

	return c.JSON(http.StatusOK, &VotesResponse{
		VotesWritten:  outcome.VotesWritten,
		HasVoted:      outcome.HasVoted,
		ContestClosed: outcome.ContestClosed,
	})
}
