package types

import (
  "encoding/json"
  "github.com/google/uuid"
)

// PredictionToProcess is the slice of a prediction row that travels on the
// queue. Predict stays raw JSON so a malformed payload fails only that item
// during scoring instead of poisoning the whole batch message.
type PredictionToProcess struct {
  ID        uuid.UUID         `json:"id"`
  UserID    uuid.UUID         `json:"userId"`
  Predict   json.RawMessage   `json:"predict"`
}

// BatchMessage is the wire payload published to the process-batch stream.
// BatchNumber is sequential starting at 1 within one trigger invocation.
type BatchMessage struct {
  Predictions   []PredictionToProcess   `json:"predictions"`
  BatchNumber   int                     `json:"batchNumber"`
}

type TriggerSummary struct {
  Message       string   `json:"message"`
  QueuedCount   int      `json:"queuedCount"`
}

type BatchSummary struct {
  Success          bool   `json:"success"`
  ProcessedCount   int    `json:"processedCount"`
  BatchNumber      int    `json:"batchNumber"`
}
