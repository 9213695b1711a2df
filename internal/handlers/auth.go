package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/middleware"
  "github.com/varzia/worldcup-backend/internal/services"
  "github.com/varzia/worldcup-backend/internal/types"
)

type AuthHandler struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
  return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

type sendOTPRequest struct {
  Phone string `json:"phone" binding:"required"`
}

func (ah *AuthHandler) SendOTP(c *gin.Context) {
  var req sendOTPRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  if err := ah.authService.SendOTP(c.Request.Context(), req.Phone, c.ClientIP()); err != nil {
    RespondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "OTP code sent successfully"})
}

type verifyOTPRequest struct {
  Phone string `json:"phone" binding:"required"`
  Code  string `json:"code" binding:"required"`
}

func (ah *AuthHandler) VerifyOTP(c *gin.Context) {
  var req verifyOTPRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  resp, err := ah.authService.VerifyOTP(c.Request.Context(), req.Phone, req.Code, c.Request.UserAgent(), c.ClientIP())
  if err != nil {
    RespondError(c, err)
    return
  }
  c.JSON(http.StatusOK, resp)
}

func (ah *AuthHandler) GetSessions(c *gin.Context) {
  user := currentUser(c)
  if user == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  sessions, err := ah.authService.GetUserSessions(c.Request.Context(), user.ID)
  if err != nil {
    RespondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (ah *AuthHandler) DeleteSession(c *gin.Context) {
  user := currentUser(c)
  if user == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  sessionID, err := uuid.Parse(c.Param("sessionId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
    return
  }
  if err := ah.authService.DeleteSession(c.Request.Context(), user.ID, sessionID); err != nil {
    RespondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func currentUser(c *gin.Context) *types.User {
  value, ok := c.Get(middleware.CurrentUserKey)
  if !ok {
    return nil
  }
  user, ok := value.(*types.User)
  if !ok {
    return nil
  }
  return user
}
