// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vicare/internal/config"
	"github.com/iliyamo/vicare/internal/handler"
	"github.com/iliyamo/vicare/internal/middleware"
)

// Handlers collects everything the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Records  *handler.RecordHandler
	Settings *handler.SettingsHandler
}

// Register wires the full HTTP surface onto the Echo instance. The layout
// mirrors the trust boundaries: /healthz and the auth entry points are
// open (behind the stricter auth rate limit), everything else under /api
// runs the identity verifier first. The verifier middleware is the single
// trust path for the configured auth mode.
func Register(e *echo.Echo, cfg config.Config, h Handlers, sessions middleware.SessionResolver, users middleware.UserChecker, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Avatars are public objects addressed by an unguessable-enough name;
	// the dashboard loads them with plain <img> tags, which never carry
	// an Authorization header.
	e.GET("/uploads/:name", h.Settings.ServeAvatar)

	api := e.Group("/api")
	api.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	// Authentication entry points: no identity required, brute-force
	// attempts land here, so the stricter window applies on top.
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(config.LoadAuthRateLimitConfig(), rdb))
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)

	requireAuth := middleware.RequireAuth(cfg, sessions, users)
	auth.POST("/logout", h.Auth.Logout, requireAuth)
	auth.GET("/me", h.Auth.Me, requireAuth)

	// Protected record collections and settings.
	protected := api.Group("", requireAuth)
	protected.GET("/medicines", h.Records.ListMedicines)
	protected.POST("/medicines", h.Records.CreateMedicine)
	protected.DELETE("/medicines/:id", h.Records.DeleteMedicine)
	protected.GET("/vaccines", h.Records.ListVaccines)
	protected.POST("/vaccines", h.Records.CreateVaccine)
	protected.DELETE("/vaccines/:id", h.Records.DeleteVaccine)
	protected.GET("/appointments", h.Records.ListAppointments)
	protected.POST("/appointments", h.Records.CreateAppointment)
	protected.DELETE("/appointments/:id", h.Records.DeleteAppointment)
	protected.POST("/avatar", h.Settings.UpdateProfile)
	protected.POST("/support", h.Settings.CreateSupportMessage)
	protected.DELETE("/account", h.Settings.DeleteAccount)
}
