package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/types"
)

type UserRepo interface {
  Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
  Save(ctx context.Context, tx *gorm.DB, user *types.User) error
  GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
  GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.User, error)
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
  repoLog := baseLog.With("repo", "UserRepo")
  return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
    return nil, err
  }

  return user, nil
}

func (ur *userRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  return transaction.WithContext(ctx).Save(user).Error
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  var result types.User

  err := transaction.WithContext(ctx).
    Where("id = ?", userID).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }

  return &result, nil
}

func (ur *userRepo) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  var result types.User

  err := transaction.WithContext(ctx).
    Where("phone = ?", phone).
    First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }

  return &result, nil
}
