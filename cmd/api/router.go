package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/shared/middleware"
	"powerwrite-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupOutlineRoutes(v1, c)
		setupGenerateRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.RequireAuth(c.JWTManager, c.UserService))
	{
		users.GET("/me", c.UserHandler.GetProfile)
		users.PUT("/me/tier", c.UserHandler.UpgradeTier)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
// The actor middleware resolves every request to a real user or the
// shared demo account, so the writing surface works without signup.
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	books.Use(middleware.Actor(c.JWTManager, c.UserService))
	{
		books.GET("/showcase", c.BookHandler.ListShowcase)
		books.POST("/export", c.BookHandler.ExportBook)

		books.POST("", c.BookHandler.CreateBook)
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBookDetail)
		books.PATCH("/:id", c.BookHandler.UpdateBook)
		books.DELETE("/:id", c.BookHandler.DeleteBook)
		books.PUT("/:id/chapters", c.BookHandler.PutChapters)
		books.POST("/:id/duplicate", c.BookHandler.DuplicateBook)
		books.POST("/:id/showcase", c.BookHandler.AddShowcase)
		books.DELETE("/:id/showcase", c.BookHandler.RemoveShowcase)
	}
}

// ========================================
// OUTLINE ROUTES
// ========================================
func setupOutlineRoutes(v1 *gin.RouterGroup, c *container.Container) {
	outlines := v1.Group("/outlines")
	outlines.Use(middleware.Actor(c.JWTManager, c.UserService))
	{
		outlines.POST("", c.OutlineHandler.SaveSnapshot)
		outlines.GET("", c.OutlineHandler.ListSnapshots)
		// Delete-by-query kept for wire compatibility with the web client.
		outlines.DELETE("", c.OutlineHandler.DeleteSnapshotByQuery)
		outlines.GET("/:id", c.OutlineHandler.GetSnapshot)
		outlines.DELETE("/:id", c.OutlineHandler.DeleteSnapshot)
		outlines.POST("/:id/mutate", c.OutlineHandler.Mutate)
	}
}

// ========================================
// GENERATE ROUTES
// ========================================
func setupGenerateRoutes(v1 *gin.RouterGroup, c *container.Container) {
	generate := v1.Group("/generate")

	// Outline generation falls back to the demo actor; job endpoints
	// require real credentials and answer 401 without them.
	generate.POST("/outline",
		middleware.Actor(c.JWTManager, c.UserService), c.GenHandler.GenerateOutline)

	authed := generate.Group("")
	authed.Use(middleware.RequireAuth(c.JWTManager, c.UserService))
	{
		authed.POST("/book", c.GenHandler.GenerateBook)
		authed.POST("/video", c.GenHandler.ExportVideo)
		authed.POST("/audio", c.GenHandler.ExportAudio)
		authed.GET("/video/:jobId", c.GenHandler.GetJob)
		authed.DELETE("/video/:jobId", c.GenHandler.DeleteJob)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(c.JWTManager, c.UserService))
	{
		admin.GET("/books/report", c.BookHandler.BooksReport)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis. Cache loss degrades performance, not correctness,
		// so it never turns the endpoint 503.
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
