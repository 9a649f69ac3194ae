// Package api is the Core's HTTP-ish transport (spec §6): echo v5 handlers
// that bind requests, authorize and invoke the domain packages, and map
// errors to the kind-carrying envelope of spec §7. Transport itself —
// routing, request parsing — is explicitly out of the Core's scope per
// spec.md §1; this package is the thin edge that wires it to the Core.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/codeready-toolchain/contestcore/pkg/catalog"
	"github.com/codeready-toolchain/contestcore/pkg/judgesession"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/settlement"
	"github.com/codeready-toolchain/contestcore/pkg/store"
	"github.com/codeready-toolchain/contestcore/pkg/watchdog"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	store   *store.Store
	catalog *catalog.Registry
	ledger  *ledger.Ledger
	writer  *settlement.Coordinator
	judge   *judgesession.Manager
	watch   *watchdog.Watchdog // nil until SetWatchdog
}

// NewServer wires an echo.Echo instance against the Core's domain packages
// and registers every route up front, matching the teacher's NewServer shape.
func NewServer(st *store.Store, cat *catalog.Registry, ldgr *ledger.Ledger, writer *settlement.Coordinator, judge *judgesession.Manager) *Server {
	e := echo.New()

	s := &Server{
		echo:    e,
		store:   st,
		catalog: cat,
		ledger:  ldgr,
		writer:  writer,
		judge:   judge,
	}

	s.setupRoutes()
	return s
}

// SetWatchdog wires the watchdog so its sweep stats surface on /health.
func (s *Server) SetWatchdog(w *watchdog.Watchdog) { s.watch = w }

func (s *Server) setupRoutes() {
	// Body size limit, matching the teacher's server-wide guard against
	// oversized payloads arriving before application-level validation.
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))

	s.echo.GET("/health", s.healthHandler)

	s.echo.POST("/agents", s.createAgentHandler)
	s.echo.POST("/agents/execute/writer", s.executeWriterHandler)
	s.echo.POST("/agents/execute/judge", s.executeJudgeHandler)

	s.echo.POST("/contests/:id/votes", s.submitVotesHandler)

	s.echo.GET("/admin/credits/transactions", s.listTransactionsHandler)
	s.echo.GET("/admin/credits/usage", s.usageSummaryHandler)
	s.echo.PATCH("/admin/users/:id/credits", s.adjustCreditsHandler)
}

// Start starts the HTTP server on the given address and blocks the calling
// goroutine until the server stops (ListenAndServe).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, used
// by tests that need a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	_, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := &HealthResponse{Status: "healthy", Catalog: s.catalog.Len()}
	if s.watch != nil {
		stats := s.watch.Stats()
		resp.Watch = &WatchdogStat{TotalRecovered: stats.TotalRecovered}
		if !stats.LastScan.IsZero() {
			resp.Watch.LastScan = stats.LastScan.Format(time.RFC3339)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
