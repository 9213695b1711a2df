package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/types"
)

type PredictionResultRepo interface {
  // Upsert bulk saves scored results keyed by prediction_id. A redelivered
  // batch rewrites the existing rows (latest wins) instead of duplicating
  // them.
  Upsert(ctx context.Context, tx *gorm.DB, results []*types.PredictionResult) error
  GetByPredictionIDs(ctx context.Context, tx *gorm.DB, predictionIDs []uuid.UUID) ([]*types.PredictionResult, error)
  GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PredictionResult, error)
}

type predictionResultRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPredictionResultRepo(db *gorm.DB, baseLog *logger.Logger) PredictionResultRepo {
  repoLog := baseLog.With("repo", "PredictionResultRepo")
  return &predictionResultRepo{db: db, log: repoLog}
}

func (rr *predictionResultRepo) Upsert(ctx context.Context, tx *gorm.DB, results []*types.PredictionResult) error {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }

  if len(results) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "prediction_id"}},
      DoUpdates: clause.AssignmentColumns([]string{"user_id", "total_score", "details", "processed_at", "updated_at"}),
    }).
    Create(&results).Error
}

func (rr *predictionResultRepo) GetByPredictionIDs(ctx context.Context, tx *gorm.DB, predictionIDs []uuid.UUID) ([]*types.PredictionResult, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }

  var results []*types.PredictionResult

  if len(predictionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("prediction_id IN ?", predictionIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}

func (rr *predictionResultRepo) GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PredictionResult, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }

  var result types.PredictionResult

  err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("processed_at DESC").
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }

  return &result, nil
}
