package api

import (
	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/contestcore/pkg/authz"
)

// extractPrincipal builds an authz.Principal from the headers a fronting
// reverse proxy is expected to set after authenticating the caller —
// the same oauth2-proxy-style convention as the teacher's extractAuthor,
// adapted to this Core's identity shape (a user ID plus an admin flag)
// rather than a single display name.
func extractPrincipal(c *echo.Context) authz.Principal {
	return authz.Principal{
		UserID:  c.Request().Header.Get("X-User-Id"),
		IsAdmin: c.Request().Header.Get("X-Is-Admin") == "true",
	}
}
