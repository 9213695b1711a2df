package services

import (
  "context"
  "fmt"
  "time"
  "golang.org/x/sync/singleflight"
  redisclient "github.com/varzia/worldcup-backend/internal/clients/redis"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/repos"
  "github.com/varzia/worldcup-backend/internal/scoring"
  "github.com/varzia/worldcup-backend/internal/utils"
)

// AnswerKeyService is the read-through cache of the authoritative group
// assignments. Hits never touch the team table; a miss loads all 48
// placements, caches them with a TTL and returns them. Concurrent misses for
// the key collapse into a single load.
type AnswerKeyService interface {
  Get(ctx context.Context) (scoring.Groups, error)
}

type answerKeyService struct {
  log         *logger.Logger
  kv          redisclient.KV
  teamRepo    repos.TeamRepo
  cacheKey    string
  cacheTTL    time.Duration
  loadTimeout time.Duration
  flight      singleflight.Group
}

func NewAnswerKeyService(log *logger.Logger, kv redisclient.KV, teamRepo repos.TeamRepo) AnswerKeyService {
  serviceLog := log.With("service", "AnswerKeyService")
  cacheKey := utils.GetEnv("CORRECT_GROUPS_CACHE_KEY", "correct_groups", log)
  cacheTTLSeconds := utils.GetEnvAsInt("CORRECT_GROUPS_CACHE_TTL", 3600, log)
  return &answerKeyService{
    log:         serviceLog,
    kv:          kv,
    teamRepo:    teamRepo,
    cacheKey:    cacheKey,
    cacheTTL:    time.Duration(cacheTTLSeconds) * time.Second,
    loadTimeout: 10 * time.Second,
  }
}

func (aks *answerKeyService) Get(ctx context.Context) (scoring.Groups, error) {
  var cached scoring.Groups
  hit, err := aks.kv.GetJSON(ctx, aks.cacheKey, &cached)
  if err != nil {
    aks.log.Warn("Cache read failed, loading from store", "error", err)
  }
  if err == nil && hit {
    return cached, nil
  }

  value, err, _ := aks.flight.Do(aks.cacheKey, func() (interface{}, error) {
    return aks.load(ctx)
  })
  if err != nil {
    return nil, err
  }
  return value.(scoring.Groups), nil
}

func (aks *answerKeyService) load(ctx context.Context) (scoring.Groups, error) {
  loadCtx, cancel := context.WithTimeout(ctx, aks.loadTimeout)
  defer cancel()

  teams, err := aks.teamRepo.GetByGroups(loadCtx, nil, scoring.GroupLabels[:])
  if err != nil {
    return nil, fmt.Errorf("load correct groups: %w", err)
  }

  groups := make(scoring.Groups, scoring.NumGroups)
  for _, team := range teams {
    groups[team.Group] = append(groups[team.Group], team.ID.String())
  }

  // A failed cache write only costs an extra load next time.
  if err := aks.kv.SetJSON(loadCtx, aks.cacheKey, groups, aks.cacheTTL); err != nil {
    aks.log.Warn("Failed to cache correct groups", "error", err)
  }

  aks.log.Info("Loaded correct groups from store", "groups", len(groups), "teams", len(teams))
  return groups, nil
}
