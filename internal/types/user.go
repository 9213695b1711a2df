package types

import (
  "time"
  "github.com/google/uuid"
)

type User struct {
  ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Phone       string      `gorm:"uniqueIndex;not null;column:phone" json:"phone"`
  IsVerified  bool        `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
  CreatedAt   time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
