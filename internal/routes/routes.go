package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/linkbadge/linkbadge-backend/internal/config"
	"github.com/linkbadge/linkbadge-backend/internal/handlers"
	"github.com/linkbadge/linkbadge-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	profileHandler *handlers.ProfileHandler,
	qrSettingsHandler *handlers.QrSettingsHandler,
	contactHandler *handlers.ContactHandler,
	fileHandler *handlers.FileHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/recovery", authHandler.RequestRecovery)
	auth.Post("/recovery/confirm", authHandler.ConfirmRecovery)

	// Protected auth routes
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Everything below requires a session.
	protected := api.Group("", middleware.JWTProtected(cfg))

	protected.Get("/profile", profileHandler.Get)
	protected.Post("/profile", profileHandler.Create)
	protected.Put("/profile", profileHandler.Update)
	protected.Get("/profile/vcard", profileHandler.VCard)

	protected.Get("/qr-settings", qrSettingsHandler.Get)
	protected.Post("/qr-settings", qrSettingsHandler.Create)
	protected.Put("/qr-settings", qrSettingsHandler.Update)

	protected.Get("/contacts", contactHandler.List)
	protected.Post("/contacts", contactHandler.Create)
	protected.Post("/contacts/scan", contactHandler.Scan)
	protected.Get("/contacts/:id", contactHandler.Get)
	protected.Put("/contacts/:id", contactHandler.Update)
	protected.Delete("/contacts/:id", contactHandler.Delete)

	protected.Post("/files", fileHandler.Upload)
	protected.Get("/files/:id/view", fileHandler.View)
	protected.Get("/files/:id/preview-url", fileHandler.PreviewURL)
	protected.Delete("/files/:id", fileHandler.Delete)
}
