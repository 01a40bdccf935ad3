package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/handlers"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	contextHandler     *handlers.ContextHandler
	apiKeyHandler      *handlers.ApiKeyHandler
	adminHandler       *handlers.AdminHandler
	dualAuthMiddleware gin.HandlerFunc
	rateLimiter        *middleware.RateLimiter
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (login is public, the rest need a resolved principal)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/logout", d.dualAuthMiddleware, d.authHandler.Logout)
			auth.GET("/me", d.dualAuthMiddleware, d.authHandler.GetMe)
		}

		// Context entry routes (protected)
		contexts := v1.Group("/context")
		contexts.Use(d.dualAuthMiddleware, d.rateLimiter.Middleware())
		{
			contexts.GET("", d.contextHandler.ListEntries)
			contexts.GET("/all", d.contextHandler.ListAllEntries)
			contexts.GET("/:key", d.contextHandler.GetEntry)
			contexts.PUT("/:key", d.contextHandler.PutEntry)
			contexts.DELETE("/:key", d.contextHandler.DeleteEntry)
		}

		// API Key routes (protected, self-service)
		apiKeys := v1.Group("/keys")
		apiKeys.Use(d.dualAuthMiddleware, d.rateLimiter.Middleware())
		{
			apiKeys.POST("", d.apiKeyHandler.CreateApiKey)
			apiKeys.GET("", d.apiKeyHandler.ListApiKeys)
			apiKeys.DELETE("/:name", d.apiKeyHandler.RevokeApiKey)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.dualAuthMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.POST("/users", d.adminHandler.CreateUser)
			admin.DELETE("/users/:id", d.adminHandler.DeleteUser)
			admin.POST("/users/:id/keys", d.adminHandler.CreateUserApiKey)
			admin.DELETE("/users/:id/keys/:name", d.adminHandler.RevokeUserApiKey)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Api-Key, X-Request-ID, x-session-id")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "shared-context-server",
			"version": "1.0.0",
		})
	})
}
