package main

import (
  "context"
  "errors"
  "fmt"
  "os"
  "os/signal"
  "syscall"
  redisclient "github.com/varzia/worldcup-backend/internal/clients/redis"
  "github.com/varzia/worldcup-backend/internal/db"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/repos"
  "github.com/varzia/worldcup-backend/internal/services"
  "github.com/varzia/worldcup-backend/internal/worker"
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

  // Postgres (migrations are the API server's job)
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
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

  // Repos
  teamRepo := repos.NewTeamRepo(thePG, log)
  predictionRepo := repos.NewPredictionRepo(thePG, log)
  resultRepo := repos.NewPredictionResultRepo(thePG, log)

  // Services
  answerKeyService := services.NewAnswerKeyService(log, kv, teamRepo)
  predictionService := services.NewPredictionService(thePG, log, predictionRepo, resultRepo, answerKeyService, queue)

  batchWorker := worker.New(log, queue, predictionService)

  ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
  defer stop()

  if err := batchWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
    log.Fatal("Batch worker exited", "error", err)
  }
  log.Info("Batch worker stopped")
}
