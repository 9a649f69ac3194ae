package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/settlement"
)

// executeWriterHandler handles POST /agents/execute/writer.
func (s *Server) executeWriterHandler(c *echo.Context) error {
	caller := extractPrincipal(c)
	if caller.IsAnonymous() {
		return mapCoreError(errs.New(errs.KindUnauthorized, "authentication required"))
	}

	var req ExecuteWriterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AgentID == "" || req.Model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "agent_id and model are required")
	}

	fallbackTitle := req.Title
	if fallbackTitle == "" {
		fallbackTitle = "Untitled"
	}

	outcome, err := s.writer.ExecuteWriter(c.Request().Context(), settlement.WriterRequest{
		Caller:               caller,
		AgentID:              req.AgentID,
		Model:                req.Model,
		ContestDescription:   req.ContestDescription,
		GuidanceTitle:        req.Title,
		GuidanceRequirements: req.Description,
		Force:                req.Force,
		FallbackTitle:        fallbackTitle,
	})
	if err != nil {
		return mapCoreError(err)
	}

	return c.JSON(http.StatusOK, &ExecutionResponse{
		ID:          outcome.ExecutionID,
		Status:      string(models.ExecutionStatusCompleted),
		ResultID:    outcome.TextID,
		CreditsUsed: outcome.CreditsUsed,
	})
}
