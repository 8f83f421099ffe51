package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pressmate/media-crm/api/internal/auth"
	"github.com/pressmate/media-crm/api/internal/config"
	"github.com/pressmate/media-crm/api/internal/handler"
	middlewarepkg "github.com/pressmate/media-crm/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserAdminHandler
	Candidates *handler.CandidatesHandler
	Scan       *handler.ScanHandler
	Import     *handler.ImportHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/candidates", handlers.Candidates.List)
	secured.GET("/scan-jobs", handlers.Scan.ListJobs)
	secured.GET("/scan-jobs/:id", handlers.Scan.GetJob)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)

	admin.POST("/matching/scan", handlers.Scan.Trigger, middlewarepkg.ScanRateLimiter(cfg.RateLimitScan))
	admin.POST("/matching/import", handlers.Import.Trigger, middlewarepkg.ScanRateLimiter(cfg.RateLimitScan))
}
