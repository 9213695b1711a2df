package main

import (
  "fmt"
  "os"
  redisclient "github.com/varzia/worldcup-backend/internal/clients/redis"
  "github.com/varzia/worldcup-backend/internal/clients/smsir"
  "github.com/varzia/worldcup-backend/internal/db"
  "github.com/varzia/worldcup-backend/internal/handlers"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/middleware"
  "github.com/varzia/worldcup-backend/internal/repos"
  "github.com/varzia/worldcup-backend/internal/server"
  "github.com/varzia/worldcup-backend/internal/services"
  "github.com/varzia/worldcup-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
  }
  if err := postgresService.AutoMigrateAll(); err != nil {
    log.Fatal("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Redis
  kv, err := redisclient.NewKV(log)
  if err != nil {
    log.Fatal("Redis init failed", "error", err)
  }
  queue, err := redisclient.NewBatchQueue(log)
  if err != nil {
    log.Fatal("Batch queue init failed", "error", err)
  }

  // SMS
  smsClient, err := smsir.NewClient(log)
  if err != nil {
    log.Fatal("SMS client init failed", "error", err)
  }

  // Repos
  log.Info("Setting up repos...")
  userRepo := repos.NewUserRepo(thePG, log)
  sessionRepo := repos.NewUserSessionRepo(thePG, log)
  teamRepo := repos.NewTeamRepo(thePG, log)
  predictionRepo := repos.NewPredictionRepo(thePG, log)
  resultRepo := repos.NewPredictionResultRepo(thePG, log)

  // Services
  log.Info("Setting up services...")
  answerKeyService := services.NewAnswerKeyService(log, kv, teamRepo)
  predictionService := services.NewPredictionService(thePG, log, predictionRepo, resultRepo, answerKeyService, queue)
  authService := services.NewAuthService(thePG, log, userRepo, sessionRepo, kv, smsClient)
  teamService := services.NewTeamService(thePG, log, teamRepo)

  // Handlers
  authHandler := handlers.NewAuthHandler(log, authService)
  predictionHandler := handlers.NewPredictionHandler(log, predictionService)
  teamHandler := handlers.NewTeamHandler(log, teamService)
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  router := server.NewRouter(server.RouterConfig{
    AuthHandler:       authHandler,
    AuthMiddleware:    authMiddleware,
    PredictionHandler: predictionHandler,
    TeamHandler:       teamHandler,
  })

  port := utils.GetEnv("PORT", "3000", log)
  log.Info("Starting API server", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("API server exited", "error", err)
  }
}
