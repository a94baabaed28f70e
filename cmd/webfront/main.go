package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mohit-sharma-1733/testing-platform/internal/backend"
	"github.com/mohit-sharma-1733/testing-platform/internal/config"
	"github.com/mohit-sharma-1733/testing-platform/internal/handlers"
	"github.com/mohit-sharma-1733/testing-platform/internal/session"
	"github.com/mohit-sharma-1733/testing-platform/internal/store"
	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
	"github.com/mohit-sharma-1733/testing-platform/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	client := backend.NewClient(cfg.BackendURL, logger)
	sessions := store.NewSessions(redisClient, cfg.SessionTTL)
	registry := session.NewRegistry(logger)
	validator := utils.NewValidator()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	manager := handlers.NewHandlerManager(cfg, client, sessions, registry, validator, logger)
	manager.SetupRoutes(router)

	logger.Info("Starting web front end",
		"port", cfg.Port,
		"backend_url", cfg.BackendURL,
		"environment", cfg.Environment)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
