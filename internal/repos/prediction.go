package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/types"
)

type PredictionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, predictions []*types.Prediction) ([]*types.Prediction, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, predictionIDs []uuid.UUID) ([]*types.Prediction, error)
  // GetUnprocessed returns every prediction that has no stored result row,
  // oldest first. This anti-join is what makes the trigger re-runnable: an
  // already processed prediction is never queued again.
  GetUnprocessed(ctx context.Context, tx *gorm.DB) ([]*types.Prediction, error)
}

type predictionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPredictionRepo(db *gorm.DB, baseLog *logger.Logger) PredictionRepo {
  repoLog := baseLog.With("repo", "PredictionRepo")
  return &predictionRepo{db: db, log: repoLog}
}

func (pr *predictionRepo) Create(ctx context.Context, tx *gorm.DB, predictions []*types.Prediction) ([]*types.Prediction, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(predictions) == 0 {
    return []*types.Prediction{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&predictions).Error; err != nil {
    return nil, err
  }

  return predictions, nil
}

func (pr *predictionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, predictionIDs []uuid.UUID) ([]*types.Prediction, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Prediction

  if len(predictionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", predictionIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}

func (pr *predictionRepo) GetUnprocessed(ctx context.Context, tx *gorm.DB) ([]*types.Prediction, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Prediction

  if err := transaction.WithContext(ctx).
    Select("prediction.id", "prediction.user_id", "prediction.predict").
    Joins("LEFT JOIN prediction_result ON prediction_result.prediction_id = prediction.id").
    Where("prediction_result.id IS NULL").
    Order("prediction.created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}
