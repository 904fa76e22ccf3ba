package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/okozyrev/ratemark/internal/config"
	"github.com/okozyrev/ratemark/internal/handlers"
	"github.com/okozyrev/ratemark/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	dictHandler *handlers.DictionaryHandler,
	titleHandler *handlers.TitleHandler,
	reviewHandler *handlers.ReviewHandler,
	commentHandler *handlers.CommentHandler,
	healthHandler *handlers.HealthHandler,
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

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/token", authHandler.RequestToken)
	auth.Post("/refresh", authHandler.Refresh)

	// Identified routes carry JWT verification plus the actor loader;
	// authorization itself happens in the handlers through the
	// permissions package. Reads stay open and anonymous.
	jwt := middleware.JWTProtected(cfg)
	actor := middleware.LoadActor(db)

	api.Post("/auth/logout", jwt, actor, authHandler.Logout)

	// Users
	api.Get("/users/me", jwt, actor, userHandler.Me)
	api.Patch("/users/me", jwt, actor, userHandler.UpdateMe)
	api.Get("/users", jwt, actor, userHandler.List)
	api.Post("/users", jwt, actor, userHandler.Create)
	api.Get("/users/:username", jwt, actor, userHandler.Get)
	api.Patch("/users/:username", jwt, actor, userHandler.Update)
	api.Delete("/users/:username", jwt, actor, userHandler.Delete)

	// Dictionary entities
	api.Get("/categories", dictHandler.ListCategories)
	api.Post("/categories", jwt, actor, dictHandler.CreateCategory)
	api.Delete("/categories/:slug", jwt, actor, dictHandler.DeleteCategory)
	api.Get("/genres", dictHandler.ListGenres)
	api.Post("/genres", jwt, actor, dictHandler.CreateGenre)
	api.Delete("/genres/:slug", jwt, actor, dictHandler.DeleteGenre)

	// Titles
	api.Get("/titles", titleHandler.List)
	api.Post("/titles", jwt, actor, titleHandler.Create)
	api.Get("/titles/:id", titleHandler.Get)
	api.Patch("/titles/:id", jwt, actor, titleHandler.Update)
	api.Delete("/titles/:id", jwt, actor, titleHandler.Delete)

	// Reviews nested under titles
	api.Get("/titles/:titleID/reviews", reviewHandler.List)
	api.Post("/titles/:titleID/reviews", jwt, actor, reviewHandler.Create)
	api.Get("/titles/:titleID/reviews/:id", reviewHandler.Get)
	api.Patch("/titles/:titleID/reviews/:id", jwt, actor, reviewHandler.Update)
	api.Delete("/titles/:titleID/reviews/:id", jwt, actor, reviewHandler.Delete)

	// Comments nested under reviews
	api.Get("/titles/:titleID/reviews/:reviewID/comments", commentHandler.List)
	api.Post("/titles/:titleID/reviews/:reviewID/comments", jwt, actor, commentHandler.Create)
	api.Get("/titles/:titleID/reviews/:reviewID/comments/:id", commentHandler.Get)
	api.Patch("/titles/:titleID/reviews/:reviewID/comments/:id", jwt, actor, commentHandler.Update)
	api.Delete("/titles/:titleID/reviews/:reviewID/comments/:id", jwt, actor, commentHandler.Delete)
}
