package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/varzia/worldcup-backend/internal/services"
)

// statusForError maps service sentinel errors onto HTTP statuses; anything
// unrecognized is a 500.
func statusForError(err error) int {
  switch {
  case errors.Is(err, services.ErrInvalidPhone),
    errors.Is(err, services.ErrOTPNotFound),
    errors.Is(err, services.ErrOTPExpired),
    errors.Is(err, services.ErrOTPInvalid):
    return http.StatusBadRequest
  case errors.Is(err, services.ErrRateLimited),
    errors.Is(err, services.ErrTooManyAttempts):
    return http.StatusTooManyRequests
  case errors.Is(err, services.ErrSMSUnavailable):
    return http.StatusServiceUnavailable
  case errors.Is(err, services.ErrSessionNotFound):
    return http.StatusNotFound
  default:
    return http.StatusInternalServerError
  }
}

func RespondError(c *gin.Context, err error) {
  c.JSON(statusForError(err), gin.H{"error": err.Error()})
}
