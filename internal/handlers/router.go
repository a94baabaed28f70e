package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/config"
	"github.com/mohit-sharma-1733/testing-platform/internal/session"
	"github.com/mohit-sharma-1733/testing-platform/internal/store"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

type HandlerManager struct {
	cfg              *config.Config
	client           *backend.Client
	sessions         *store.Sessions
	logger           utils.Logger
	authHandler      *AuthHandler
	testHandler      *TestHandler
	dashboardHandler *DashboardHandler
	sessionHandler   *SessionHandler
}

func NewHandlerManager(
	cfg *config.Config,
	client *backend.Client,
	sessions *store.Sessions,
	registry *session.Registry,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		cfg:              cfg,
		client:           client,
		sessions:         sessions,
		logger:           logger,
		authHandler:      NewAuthHandler(client, sessions, validator, cfg, logger),
		testHandler:      NewTestHandler(client, logger),
		dashboardHandler: NewDashboardHandler(client, logger),
		sessionHandler:   NewSessionHandler(client, registry, cfg.SaveQuietWait, logger),
	}
}

// SetupRoutes sets up all routes of the web front end
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "testing-platform-web",
		})
	})

	requireAuth := RequireAuth(hm.sessions, hm.client, hm.logger)

	api := router.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/register", hm.authHandler.Register)
			auth.GET("/me", requireAuth, hm.authHandler.Me)
			auth.POST("/logout", requireAuth, hm.authHandler.Logout)
		}

		// Test routes
		tests := api.Group("/tests", requireAuth)
		{
			tests.GET("", hm.testHandler.ListTests)
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", hm.testHandler.UpdateTest)
			tests.DELETE("/:id", hm.testHandler.DeleteTest)
			tests.GET("/:id/results/:session_id", hm.testHandler.GetResults)

			// Taking-session routes
			tests.POST("/:id/session", hm.sessionHandler.Start)
			tests.GET("/:id/session", hm.sessionHandler.Snapshot)
			tests.GET("/:id/session/stream", hm.sessionHandler.Stream)
			tests.POST("/:id/session/answer", hm.sessionHandler.Answer)
			tests.POST("/:id/session/next", hm.sessionHandler.Next)
			tests.POST("/:id/session/previous", hm.sessionHandler.Previous)
			tests.POST("/:id/session/goto", hm.sessionHandler.GoTo)
			tests.POST("/:id/session/submit", hm.sessionHandler.RequestSubmit)
			tests.POST("/:id/session/submit/confirm", hm.sessionHandler.ConfirmSubmit)
			tests.POST("/:id/session/submit/cancel", hm.sessionHandler.CancelSubmit)
			tests.DELETE("/:id/session", hm.sessionHandler.Close)
		}

		// Dashboard routes
		dashboard := api.Group("/dashboard", requireAuth)
		{
			dashboard.GET("/stats", hm.dashboardHandler.Stats)
		}

		// Leaderboard routes
		leaderboard := api.Group("/leaderboard", requireAuth)
		{
			leaderboard.GET("", hm.dashboardHandler.Leaderboard)
			leaderboard.GET("/export", hm.dashboardHandler.ExportLeaderboard)
		}

		// User directory (admin only)
		users := api.Group("/users", requireAuth, RequireAdmin())
		{
			users.GET("", hm.dashboardHandler.ListUsers)
			users.GET("/:id", hm.dashboardHandler.GetUser)
		}
	}
}
