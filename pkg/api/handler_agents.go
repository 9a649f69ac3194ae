package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/authz"
	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// createAgentHandler handles POST /agents.
func (s *Server) createAgentHandler(c *echo.Context) error {
	caller := extractPrincipal(c)
	if caller.IsAnonymous() {
		return mapCoreError(errs.New(errs.KindUnauthorized, "authentication required"))
	}

	var req CreateAgentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and prompt are required")
	}

	agentType := models.AgentType(req.Type)
	if !agentType.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be \"writer\" or \"judge\"")
	}

	// is_public is silently demoted rather than rejected (spec §6).
	isPublic := authz.AuthorizeCreateAgentPublic(caller, req.IsPublic)

	agent := &models.Agent{
		ID:          uuid.New().String(),
		OwnerID:     caller.UserID,
		Type:        agentType,
		Name:        req.Name,
		Description: req.Description,
		Prompt:      req.Prompt,
		IsPublic:    isPublic,
		Version:     1,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Agents.Create(c.Request().Context(), agent); err != nil {
		return mapCoreError(err)
	}

	return c.JSON(http.StatusCreated, &AgentResponse{
		ID:          agent.ID,
		Name:        agent.Name,
		Description: agent.Description,
		Type:        string(agent.Type),
		IsPublic:    agent.IsPublic,
		Version:     agent.Version,
	})
}
