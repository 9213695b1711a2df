package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/services"
)

type PredictionHandler struct {
  log               *logger.Logger
  predictionService services.PredictionService
}

func NewPredictionHandler(log *logger.Logger, predictionService services.PredictionService) *PredictionHandler {
  return &PredictionHandler{log: log.With("handler", "PredictionHandler"), predictionService: predictionService}
}

// TriggerProcessing is the administrative action that kicks off scoring of
// everything not yet scored. It returns once all batches are queued.
func (ph *PredictionHandler) TriggerProcessing(c *gin.Context) {
  ph.log.Info("Admin triggered prediction processing")
  summary, err := ph.predictionService.TriggerProcessing(c.Request.Context())
  if err != nil {
    ph.log.Error("Failed to trigger prediction processing", "error", err)
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, summary)
}

func (ph *PredictionHandler) GetUserResult(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("userId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }

  result, err := ph.predictionService.GetUserResult(c.Request.Context(), userID)
  if err != nil {
    ph.log.Error("Failed to fetch prediction result", "user_id", userID, "error", err)
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  if result == nil {
    c.JSON(http.StatusOK, gin.H{
      "message": "No prediction result found for this user",
      "userId":  userID,
    })
    return
  }
  c.JSON(http.StatusOK, result)
}
