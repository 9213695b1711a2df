package services

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/repos"
  "github.com/varzia/worldcup-backend/internal/types"
)

type TeamService interface {
  FindAll(ctx context.Context) ([]*types.Team, error)
  FindByGroup(ctx context.Context, group string) ([]*types.Team, error)
  FindByID(ctx context.Context, teamID uuid.UUID) (*types.Team, error)
}

type teamService struct {
  db       *gorm.DB
  log      *logger.Logger
  teamRepo repos.TeamRepo
}

func NewTeamService(db *gorm.DB, log *logger.Logger, teamRepo repos.TeamRepo) TeamService {
  serviceLog := log.With("service", "TeamService")
  return &teamService{db: db, log: serviceLog, teamRepo: teamRepo}
}

func (ts *teamService) FindAll(ctx context.Context) ([]*types.Team, error) {
  return ts.teamRepo.GetAll(ctx, nil)
}

func (ts *teamService) FindByGroup(ctx context.Context, group string) ([]*types.Team, error) {
  return ts.teamRepo.GetByGroups(ctx, nil, []string{group})
}

func (ts *teamService) FindByID(ctx context.Context, teamID uuid.UUID) (*types.Team, error) {
  teams, err := ts.teamRepo.GetByIDs(ctx, nil, []uuid.UUID{teamID})
  if err != nil {
    return nil, err
  }
  if len(teams) == 0 {
    return nil, nil
  }
  return teams[0], nil
}
