package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "github.com/varzia/worldcup-backend/internal/handlers"
  "github.com/varzia/worldcup-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  PredictionHandler *handlers.PredictionHandler
  TeamHandler       *handlers.TeamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  router.Use(cors.New(cors.Config{
    AllowOrigins:     []string{"*"},
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: false,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api/v1")
  {
    api.POST("/auth/send-otp", cfg.AuthHandler.SendOTP)
    api.POST("/auth/verify-otp", cfg.AuthHandler.VerifyOTP)
    api.POST("/admin/trigger-prediction-process", cfg.PredictionHandler.TriggerProcessing)
    api.GET("/teams", cfg.TeamHandler.ListTeams)
  }

  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  {
    protected.GET("/auth/sessions", cfg.AuthHandler.GetSessions)
    protected.DELETE("/auth/sessions/:sessionId", cfg.AuthHandler.DeleteSession)
    protected.GET("/prediction/result/:userId", cfg.PredictionHandler.GetUserResult)
  }

  return router
}
