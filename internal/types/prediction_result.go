package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// One row per prediction. The bulk save path upserts on prediction_id so a
// redelivered batch overwrites instead of duplicating.
type PredictionResult struct {
  ID            uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  PredictionID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_prediction_result_prediction;column:prediction_id" json:"prediction_id"`
  UserID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_prediction_result_user;column:user_id" json:"user_id"`
  TotalScore    int              `gorm:"not null;column:total_score" json:"total_score"`
  Details       datatypes.JSON   `gorm:"type:jsonb;not null;column:details" json:"details"`
  ProcessedAt   time.Time        `gorm:"not null;index:idx_prediction_result_processed_at;column:processed_at" json:"processed_at"`
  CreatedAt     time.Time        `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (PredictionResult) TableName() string {
  return "prediction_result"
}
