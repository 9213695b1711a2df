package types

import (
  "time"
  "github.com/google/uuid"
)

type UserSession struct {
  ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_user_session_user;column:user_id" json:"user_id"`
  TokenHash   string      `gorm:"not null;column:token_hash" json:"-"`
  ExpiresAt   time.Time   `gorm:"not null;column:expires_at" json:"expires_at"`
  UserAgent   string      `gorm:"column:user_agent" json:"user_agent"`
  IPAddress   string      `gorm:"column:ip_address" json:"ip_address"`
  IsActive    bool        `gorm:"not null;default:true;index:idx_user_session_active;column:is_active" json:"is_active"`
  CreatedAt   time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserSession) TableName() string {
  return "user_session"
}
