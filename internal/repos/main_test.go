package repos

import (
  "testing"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"
  "github.com/varzia/worldcup-backend/internal/logger"
)

// Tests run against in-memory sqlite. The schema is created by hand because
// the production DDL leans on postgres defaults (uuid_generate_v4, now());
// tests set ids and timestamps explicitly instead.
var testSchema = []string{
  `CREATE TABLE "user" (
    id TEXT PRIMARY KEY,
    phone TEXT NOT NULL UNIQUE,
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
  )`,
  `CREATE TABLE team (
    id TEXT PRIMARY KEY,
    fa_name TEXT NOT NULL DEFAULT '',
    eng_name TEXT NOT NULL DEFAULT '',
    "order" INTEGER NOT NULL DEFAULT 0,
    "group" TEXT NOT NULL DEFAULT '',
    flag TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
  )`,
  `CREATE TABLE prediction (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    predict TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
  )`,
  `CREATE TABLE prediction_result (
    id TEXT PRIMARY KEY,
    prediction_id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    total_score INTEGER NOT NULL,
    details TEXT NOT NULL,
    processed_at DATETIME NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
  )`,
  `CREATE TABLE user_session (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    token_hash TEXT NOT NULL,
    expires_at DATETIME NOT NULL,
    user_agent TEXT,
    ip_address TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
  )`,
}

func openTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  for _, ddl := range testSchema {
    if err := db.Exec(ddl).Error; err != nil {
      t.Fatalf("create schema: %v", err)
    }
  }
  return db
}

func repoTestLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("production")
  if err != nil {
    t.Fatalf("logger.New: %v", err)
  }
  return log
}
