package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openmun/delegation-api/internal/auth"
	"github.com/openmun/delegation-api/internal/config"
	"github.com/openmun/delegation-api/internal/domain/registration"
	"github.com/openmun/delegation-api/internal/handlers"
	"github.com/openmun/delegation-api/internal/logger"
	"github.com/openmun/delegation-api/internal/middleware/requestlog"
	"github.com/openmun/delegation-api/internal/middleware/session"
	"github.com/openmun/delegation-api/internal/response"
	"github.com/openmun/delegation-api/internal/storage/objectstore"
	"github.com/openmun/delegation-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	config       *config.Config
	store        postgres.RepositoryContainer
	registration *registration.Service
	identity     *auth.Service
	tokens       *auth.TokenManager
	logos        *objectstore.Store
}

// New creates a new server instance
func New(cfg *config.Config, store postgres.RepositoryContainer, reg *registration.Service, identity *auth.Service, tokens *auth.TokenManager, logos *objectstore.Store) *Server {
	return &Server{
		config:       cfg,
		store:        store,
		registration: reg,
		identity:     identity,
		tokens:       tokens,
		logos:        logos,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestlog.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	origins := strings.Split(s.config.CORS.AllowOrigins, ",")
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	authHandler := handlers.NewAuthHandler(s.registration, s.identity)
	communityHandler := handlers.NewCommunityHandler(s.store.Communities(), s.store.People(), s.logos)
	eventHandler := handlers.NewEventHandler(s.store.Events())
	profileHandler := handlers.NewProfileHandler(s.store)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		if err := s.store.Health(); err != nil {
			response.InternalServerError(c, "database unreachable")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Delegation API is running",
			"status":  "healthy",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.setupAPIRoutes(router, authHandler, communityHandler, eventHandler, profileHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	communityHandler *handlers.CommunityHandler,
	eventHandler *handlers.EventHandler,
	profileHandler *handlers.ProfileHandler,
) {
	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/verify", authHandler.Verify)
		authRoutes.POST("/resend-verification", authHandler.ResendVerification)
		authRoutes.POST("/reset-password/request", authHandler.RequestPasswordReset)
		authRoutes.POST("/reset-password/confirm", authHandler.ResetPassword)
	}

	// Public catalogue for the signup form and the profile page
	api.GET("/communities", communityHandler.List)
	api.GET("/communities/:id", communityHandler.Get)
	api.GET("/events", eventHandler.List)

	authed := api.Group("")
	authed.Use(session.RequireAuth(s.tokens))
	{
		authed.GET("/profile", profileHandler.Get)
	}

	admin := api.Group("")
	admin.Use(session.RequireAuth(s.tokens), session.RequireAdmin())
	{
		admin.POST("/communities", communityHandler.Create)
		admin.GET("/communities/:id/roster", communityHandler.Roster)
		admin.POST("/communities/:id/logo", communityHandler.UploadLogo)
		admin.POST("/events", eventHandler.Create)
		admin.DELETE("/events/:id", eventHandler.Delete)
	}
}
