package api

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

func requireAdmin(c *echo.Context) error {
	caller := extractPrincipal(c)
	if caller.IsAnonymous() {
		return errs.New(errs.KindUnauthorized, "authentication required")
	}
	if !caller.IsAdmin {
		return errs.New(errs.KindForbidden, "admin only")
	}
	return nil
}

// listTransactionsHandler handles GET /admin/credits/transactions.
func (s *Server) listTransactionsHandler(c *echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return mapCoreError(err)
	}

	f := ledger.Filter{
		UserID: c.QueryParam("user_id"),
		Kind:   models.LedgerKind(c.QueryParam("kind")),
		Model:  c.QueryParam("model"),
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
		}
		f.DateFrom = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
		}
		f.DateTo = &t
	}

	rows, err := s.ledger.Filter(c.Request().Context(), f)
	if err != nil {
		return mapCoreError(err)
	}

	resp := make([]TransactionResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, TransactionResponse{
			ID:          r.ID,
			UserID:      r.UserID,
			Amount:      r.Amount,
			Kind:        string(r.Kind),
			Description: r.Description,
			Model:       r.Model,
			Tokens:      r.Tokens,
			RealCostUSD: r.RealCostUSD,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// usageSummaryHandler handles GET /admin/credits/usage.
func (s *Server) usageSummaryHandler(c *echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return mapCoreError(err)
	}

	summary, err := s.ledger.Summary(c.Request().Context())
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, &UsageSummaryResponse{
		TotalCreditsUsed: summary.TotalCreditsUsed,
		ByModel:          summary.ByModel,
		ByUser:           summary.ByUser,
		TotalTokens:      summary.TotalTokens,
		TotalRealCostUSD: summary.TotalRealCostUSD,
	})
}

// adjustCreditsHandler handles PATCH /admin/users/:id/credits. A positive
// amount credits the user; a negative amount deducts (spec §6: "creates a
// ledger row with kind=adjustment").
func (s *Server) adjustCreditsHandler(c *echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return mapCoreError(err)
	}

	userID := c.Param("id")
	var req AdjustCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	row, err := s.ledger.Adjust(c.Request().Context(), userID, req.Amount, "Admin adjustment")
	if err != nil {
		return mapCoreError(err)
	}

	return c.JSON(http.StatusOK, &TransactionResponse{
		ID:          row.ID,
		UserID:      row.UserID,
		Amount:      row.Amount,
		Kind:        string(row.Kind),
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	})
}
