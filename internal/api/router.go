package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/service"
)

const (
	identityKey = "identity"
	eventsPath  = "/v1/session/events"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigin))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{eventsPath})))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	userHandler := NewUserHandler(services, cfg, log)
	contentHandler := NewContentHandler(services, log)
	prefHandler := NewPreferenceHandler(services, log)
	exportHandler := NewExportHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(services))
	router.GET("/metrics", metricsHandler(services, log))

	// API v1
	v1 := router.Group("/v1")
	{
		// Sign-in endpoints are public
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/providers/:provider", authHandler.ProviderLogin)

		secured := v1.Group("")
		secured.Use(authMiddleware(services.Auth))
		{
			secured.POST("/auth/logout", authHandler.Logout)
			secured.GET("/session", authHandler.Session)
			secured.GET("/session/events", authHandler.Events)

			users := secured.Group("/users")
			{
				users.GET("", userHandler.List)
				users.POST("/invite", userHandler.Invite)
				users.PATCH("/:id/status", userHandler.SetStatus)
				users.PATCH("/:id/role", userHandler.SetRole)
				users.GET("/export", exportHandler.StreamUsers)
			}

			secured.GET("/dashboard", contentHandler.Dashboard)
			secured.GET("/posts", contentHandler.Posts)
			secured.GET("/logs", contentHandler.Logs)

			secured.GET("/preferences", prefHandler.Get)
			secured.PUT("/preferences/theme", prefHandler.SetTheme)
			secured.POST("/shell/transitions", prefHandler.Transition)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if services.Health != nil {
			if err := services.Health(c.Request.Context()); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "admin-console-api",
		})
	}
}

// metricsHandler returns record counts per collection. A failed count is
// logged and reported as 0.
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("handler", "metrics").Logger()
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		counts := gin.H{}
		for _, resource := range []string{"users", "posts", "logs", "accounts"} {
			n, err := services.Export.GetCount(ctx, resource)
			if err != nil {
				log.Error().Err(err).Str("resource", resource).Msg("Failed to count records")
			}
			counts[resource] = n
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if id := currentIdentity(c); id != nil {
			event = event.Str("admin", id.Email)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// authMiddleware resolves the bearer token and stores the identity on the context.
// Token problems are 401; a failed session lookup goes through respondError.
func authMiddleware(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authSvc.Identify(c.Request.Context(), bearerToken(c))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// an EventSource, so the event stream alone also accepts access_token.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c.FullPath() == eventsPath {
		return c.Query("access_token")
	}
	return ""
}

func currentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}
