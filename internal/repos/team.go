package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/types"
)

type TeamRepo interface {
  Create(ctx context.Context, tx *gorm.DB, teams []*types.Team) ([]*types.Team, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Team, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, teamIDs []uuid.UUID) ([]*types.Team, error)
  GetByGroups(ctx context.Context, tx *gorm.DB, groups []string) ([]*types.Team, error)
}

type teamRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
  repoLog := baseLog.With("repo", "TeamRepo")
  return &teamRepo{db: db, log: repoLog}
}

func (tr *teamRepo) Create(ctx context.Context, tx *gorm.DB, teams []*types.Team) ([]*types.Team, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }

  if len(teams) == 0 {
    return []*types.Team{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&teams).Error; err != nil {
    return nil, err
  }

  return teams, nil
}

func (tr *teamRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Team, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }

  var results []*types.Team

  if err := transaction.WithContext(ctx).
    Order(`"order" ASC`).
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}

func (tr *teamRepo) GetByIDs(ctx context.Context, tx *gorm.DB, teamIDs []uuid.UUID) ([]*types.Team, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }

  var results []*types.Team

  if len(teamIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", teamIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}

func (tr *teamRepo) GetByGroups(ctx context.Context, tx *gorm.DB, groups []string) ([]*types.Team, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }

  var results []*types.Team

  if len(groups) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where(`"group" IN ?`, groups).
    Order(`"order" ASC`).
    Find(&results).Error; err != nil {
    return nil, err
  }

  return results, nil
}
