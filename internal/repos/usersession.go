package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/types"
)

type UserSessionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, session *types.UserSession) (*types.UserSession, error)
  Save(ctx context.Context, tx *gorm.DB, session *types.UserSession) error
  GetActive(ctx context.Context, tx *gorm.DB) ([]*types.UserSession, error)
  GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSession, error)
  GetActiveByID(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.UserSession, error)
}

type userSessionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
  repoLog := baseLog.With("repo", "UserSessionRepo")
  return &userSessionRepo{db: db, log: repoLog}
}

func (sr *userSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.UserSession) (*types.UserSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
    return nil, err
  }

  return session, nil
}

func (sr *userSessionRepo) Save(ctx context.Context, tx *gorm.DB, session *types.UserSession) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  return transaction.WithContext(ctx).Save(session).Error
}

func (sr *userSessionRepo) GetActive(ctx context.Context, tx *gorm.DB) ([]*types.UserSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.UserSession

  if err := transaction.WithContext(ctx).
    Where("is_active = ?", true).
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}

func (sr *userSessionRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.UserSession

  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND is_active = ?", userID, true).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}

func (sr *userSessionRepo) GetActiveByID(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.UserSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var result types.UserSession

  err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ? AND is_active = ?", sessionID, userID, true).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }

  return &result, nil
}
