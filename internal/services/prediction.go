package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"
  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  redisclient "github.com/varzia/worldcup-backend/internal/clients/redis"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/repos"
  "github.com/varzia/worldcup-backend/internal/scoring"
  "github.com/varzia/worldcup-backend/internal/types"
  "github.com/varzia/worldcup-backend/internal/utils"
)

type PredictionService interface {
  // TriggerProcessing scans for predictions without a result, fans them out
  // to the queue in fixed-size batches and returns how many were queued.
  // Publishing is fire-and-forget: nothing waits for the workers.
  TriggerProcessing(ctx context.Context) (*types.TriggerSummary, error)
  // ProcessBatch scores one queued batch and bulk-saves the successes. A
  // single bad prediction is logged and skipped; a failed bulk save fails
  // the whole batch so the queue redelivers it.
  ProcessBatch(ctx context.Context, msg types.BatchMessage) (*types.BatchSummary, error)
  ProcessSingle(prediction types.PredictionToProcess, correctGroups scoring.Groups) (*scoring.ProcessedPrediction, error)
  GetUserResult(ctx context.Context, userID uuid.UUID) (*types.PredictionResult, error)
}

type predictionService struct {
  db             *gorm.DB
  log            *logger.Logger
  predictionRepo repos.PredictionRepo
  resultRepo     repos.PredictionResultRepo
  answerKey      AnswerKeyService
  queue          redisclient.BatchQueue
  engine         *scoring.Engine
  batchSize      int
  workers        int
}

func NewPredictionService(
  db *gorm.DB,
  log *logger.Logger,
  predictionRepo repos.PredictionRepo,
  resultRepo repos.PredictionResultRepo,
  answerKey AnswerKeyService,
  queue redisclient.BatchQueue,
) PredictionService {
  serviceLog := log.With("service", "PredictionService")
  homeTeamID := utils.GetEnv("HOME_TEAM_ID", "bf5556ec-a78d-4047-a0f5-7b34b07c21aa", log)
  batchSize := utils.GetEnvAsInt("PREDICTION_BATCH_SIZE", 1000, log)
  workers := utils.GetEnvAsInt("PREDICTION_WORKERS", 8, log)
  return &predictionService{
    db:             db,
    log:            serviceLog,
    predictionRepo: predictionRepo,
    resultRepo:     resultRepo,
    answerKey:      answerKey,
    queue:          queue,
    engine:         scoring.NewEngine(homeTeamID),
    batchSize:      batchSize,
    workers:        workers,
  }
}

func (ps *predictionService) TriggerProcessing(ctx context.Context) (*types.TriggerSummary, error) {
  ps.log.Info("Starting prediction processing trigger")

  predictions, err := ps.predictionRepo.GetUnprocessed(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("scan unprocessed predictions: %w", err)
  }
  ps.log.Info("Found predictions to process", "count", len(predictions))

  queuedCount := 0
  batchNumber := 0
  for start := 0; start < len(predictions); start += ps.batchSize {
    end := min(start+ps.batchSize, len(predictions))
    batch := predictions[start:end]
    batchNumber++

    msg := types.BatchMessage{BatchNumber: batchNumber}
    for _, prediction := range batch {
      msg.Predictions = append(msg.Predictions, types.PredictionToProcess{
        ID:      prediction.ID,
        UserID:  prediction.UserID,
        Predict: json.RawMessage(prediction.Predict),
      })
    }

    if err := ps.queue.Publish(ctx, msg); err != nil {
      return nil, fmt.Errorf("queue batch %d: %w", batchNumber, err)
    }
    queuedCount += len(batch)
  }

  ps.log.Info("Queued predictions for processing", "queued_count", queuedCount, "batches", batchNumber)
  return &types.TriggerSummary{
    Message:     "Prediction processing started",
    QueuedCount: queuedCount,
  }, nil
}

func (ps *predictionService) ProcessBatch(ctx context.Context, msg types.BatchMessage) (*types.BatchSummary, error) {
  batchLog := ps.log.With("batch_number", msg.BatchNumber)
  batchLog.Info("Processing batch", "size", len(msg.Predictions))

  // One answer key snapshot per batch, not per prediction.
  correctGroups, err := ps.answerKey.Get(ctx)
  if err != nil {
    return nil, fmt.Errorf("load correct groups for batch %d: %w", msg.BatchNumber, err)
  }

  // Scoring is pure and independent per prediction; fan out over a bounded
  // pool and fold back into a dense slice of successes.
  processed := make([]*scoring.ProcessedPrediction, len(msg.Predictions))
  pool := new(errgroup.Group)
  pool.SetLimit(ps.workers)
  for i, prediction := range msg.Predictions {
    pool.Go(func() error {
      result, err := ps.ProcessSingle(prediction, correctGroups)
      if err != nil {
        batchLog.Error("Failed to process prediction", "prediction_id", prediction.ID, "error", err)
        return nil
      }
      processed[i] = result
      return nil
    })
  }
  _ = pool.Wait()

  rows := make([]*types.PredictionResult, 0, len(processed))
  for _, item := range processed {
    if item == nil {
      continue
    }
    details, err := json.Marshal(map[string]any{
      "scoringResults": item.ScoringResults,
      "processedAt":    item.ProcessedAt.UTC().Format(time.RFC3339Nano),
    })
    if err != nil {
      batchLog.Error("Failed to encode result details", "prediction_id", item.PredictionID, "error", err)
      continue
    }
    rows = append(rows, &types.PredictionResult{
      PredictionID: item.PredictionID,
      UserID:       item.UserID,
      TotalScore:   item.TotalScore,
      Details:      datatypes.JSON(details),
      ProcessedAt:  item.ProcessedAt,
    })
  }

  if len(rows) > 0 {
    if err := ps.resultRepo.Upsert(ctx, nil, rows); err != nil {
      return nil, fmt.Errorf("bulk save batch %d: %w", msg.BatchNumber, err)
    }
    batchLog.Info("Saved prediction results", "count", len(rows))
  }

  return &types.BatchSummary{
    Success:        true,
    ProcessedCount: len(rows),
    BatchNumber:    msg.BatchNumber,
  }, nil
}

func (ps *predictionService) ProcessSingle(prediction types.PredictionToProcess, correctGroups scoring.Groups) (*scoring.ProcessedPrediction, error) {
  userGroups, err := scoring.ParseGroups(prediction.Predict)
  if err != nil {
    return nil, fmt.Errorf("prediction %s: %w", prediction.ID, err)
  }

  totalScore, results := ps.engine.Evaluate(userGroups, correctGroups)
  return &scoring.ProcessedPrediction{
    PredictionID:   prediction.ID,
    UserID:         prediction.UserID,
    TotalScore:     totalScore,
    ScoringResults: results,
    ProcessedAt:    time.Now(),
  }, nil
}

func (ps *predictionService) GetUserResult(ctx context.Context, userID uuid.UUID) (*types.PredictionResult, error) {
  return ps.resultRepo.GetLatestByUserID(ctx, nil, userID)
}
