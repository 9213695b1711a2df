package types

import (
  "time"
  "github.com/google/uuid"
)

type Team struct {
  ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  FaName      string      `gorm:"type:text;not null;column:fa_name" json:"fa_name"`
  EngName     string      `gorm:"type:text;not null;column:eng_name" json:"eng_name"`
  Order       int         `gorm:"index:idx_team_order;column:order" json:"order"`
  Group       string      `gorm:"type:text;index:idx_team_group;column:group" json:"group"`
  Flag        string      `gorm:"type:text;column:flag" json:"flag"`
  CreatedAt   time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Team) TableName() string {
  return "team"
}
