package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type Prediction struct {
  ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_prediction_user;column:user_id" json:"user_id"`
  Predict     datatypes.JSON   `gorm:"type:jsonb;not null;column:predict" json:"predict"`
  CreatedAt   time.Time        `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (Prediction) TableName() string {
  return "prediction"
}
