package repos

import (
  "context"
  "testing"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "github.com/varzia/worldcup-backend/internal/types"
)

func TestUpsertOverwritesOnRedelivery(t *testing.T) {
  db := openTestDB(t)
  repo := NewPredictionResultRepo(db, repoTestLogger(t))

  predictionID := uuid.New()
  userID := uuid.New()
  first := &types.PredictionResult{
    ID:           uuid.New(),
    PredictionID: predictionID,
    UserID:       userID,
    TotalScore:   60,
    Details:      datatypes.JSON(`{"run": 1}`),
    ProcessedAt:  time.Now().Add(-time.Minute),
  }
  if err := repo.Upsert(context.Background(), nil, []*types.PredictionResult{first}); err != nil {
    t.Fatalf("first upsert: %v", err)
  }

  // Same prediction scored again, as happens when a batch is redelivered.
  second := &types.PredictionResult{
    ID:           uuid.New(),
    PredictionID: predictionID,
    UserID:       userID,
    TotalScore:   100,
    Details:      datatypes.JSON(`{"run": 2}`),
    ProcessedAt:  time.Now(),
  }
  if err := repo.Upsert(context.Background(), nil, []*types.PredictionResult{second}); err != nil {
    t.Fatalf("second upsert: %v", err)
  }

  var count int64
  if err := db.Model(&types.PredictionResult{}).Count(&count).Error; err != nil {
    t.Fatalf("count: %v", err)
  }
  if count != 1 {
    t.Fatalf("result rows = %d, want 1", count)
  }

  got, err := repo.GetByPredictionIDs(context.Background(), nil, []uuid.UUID{predictionID})
  if err != nil {
    t.Fatalf("GetByPredictionIDs: %v", err)
  }
  if len(got) != 1 {
    t.Fatalf("got %d results, want 1", len(got))
  }
  if got[0].TotalScore != 100 {
    t.Fatalf("total score = %d, want the rescored 100", got[0].TotalScore)
  }
}

func TestUpsertEmptySliceIsNoop(t *testing.T) {
  db := openTestDB(t)
  repo := NewPredictionResultRepo(db, repoTestLogger(t))

  if err := repo.Upsert(context.Background(), nil, nil); err != nil {
    t.Fatalf("Upsert: %v", err)
  }
}

func TestGetLatestByUserID(t *testing.T) {
  db := openTestDB(t)
  repo := NewPredictionResultRepo(db, repoTestLogger(t))

  userID := uuid.New()
  now := time.Now()
  rows := []*types.PredictionResult{
    {
      ID:           uuid.New(),
      PredictionID: uuid.New(),
      UserID:       userID,
      TotalScore:   60,
      Details:      datatypes.JSON(`{}`),
      ProcessedAt:  now.Add(-time.Hour),
    },
    {
      ID:           uuid.New(),
      PredictionID: uuid.New(),
      UserID:       userID,
      TotalScore:   80,
      Details:      datatypes.JSON(`{}`),
      ProcessedAt:  now,
    },
    {
      ID:           uuid.New(),
      PredictionID: uuid.New(),
      UserID:       uuid.New(),
      TotalScore:   100,
      Details:      datatypes.JSON(`{}`),
      ProcessedAt:  now.Add(time.Hour),
    },
  }
  if err := repo.Upsert(context.Background(), nil, rows); err != nil {
    t.Fatalf("seed results: %v", err)
  }

  got, err := repo.GetLatestByUserID(context.Background(), nil, userID)
  if err != nil {
    t.Fatalf("GetLatestByUserID: %v", err)
  }
  if got == nil {
    t.Fatal("expected a result for the user")
  }
  if got.TotalScore != 80 {
    t.Fatalf("total score = %d, want the most recent 80", got.TotalScore)
  }
}

func TestGetLatestByUserIDNoResult(t *testing.T) {
  db := openTestDB(t)
  repo := NewPredictionResultRepo(db, repoTestLogger(t))

  got, err := repo.GetLatestByUserID(context.Background(), nil, uuid.New())
  if err != nil {
    t.Fatalf("GetLatestByUserID: %v", err)
  }
  if got != nil {
    t.Fatalf("got %+v, want nil for a user with no results", got)
  }
}
