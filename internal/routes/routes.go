package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/growmate/growmate-backend/internal/config"
	"github.com/growmate/growmate-backend/internal/handlers"
	"github.com/growmate/growmate-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	plantHandler *handlers.PlantHandler,
	strainHandler *handlers.StrainHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth endpoints are public but carry a stricter rate limit: 10 req/min per IP
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

	// Protected auth/profile routes
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Put("/auth/phone", middleware.JWTProtected(cfg), authHandler.SetPhoneNumber)
	api.Post("/auth/phone/resend", middleware.JWTProtected(cfg), authHandler.ResendVerificationCode)

	// Plants (protected)
	plants := api.Group("/plants", middleware.JWTProtected(cfg))
	plants.Post("/", plantHandler.Create)
	plants.Get("/", plantHandler.List)
	plants.Get("/:id", plantHandler.Get)
	plants.Put("/:id", plantHandler.Update)
	plants.Delete("/:id", plantHandler.Delete)
	plants.Post("/:id/archive", plantHandler.Archive)
	plants.Post("/:id/stage", plantHandler.ChangeStage)
	plants.Get("/:id/statistics", plantHandler.Statistics)
	plants.Put("/:id/permissions", plantHandler.SetPermission)
	plants.Delete("/:id/permissions/:user_id", plantHandler.RemovePermission)

	// Strain catalog reads are public, community writes need auth
	api.Get("/strains", strainHandler.List)
	api.Get("/strains/:name", strainHandler.Get)
	api.Get("/strains/:name/tips", strainHandler.Tips)
	api.Post("/strains/:name/rate", middleware.JWTProtected(cfg), strainHandler.Rate)

	// Admin catalog management
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/strains", strainHandler.Create)

	// Signal relay webhook, authenticated by HMAC signature instead of JWT
	api.Post("/webhooks/signal", webhookHandler.HandleSignal)
}
