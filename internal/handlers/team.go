package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/services"
)

type TeamHandler struct {
  log         *logger.Logger
  teamService services.TeamService
}

func NewTeamHandler(log *logger.Logger, teamService services.TeamService) *TeamHandler {
  return &TeamHandler{log: log.With("handler", "TeamHandler"), teamService: teamService}
}

func (th *TeamHandler) ListTeams(c *gin.Context) {
  if group := c.Query("group"); group != "" {
    teams, err := th.teamService.FindByGroup(c.Request.Context(), group)
    if err != nil {
      c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
      return
    }
    c.JSON(http.StatusOK, gin.H{"teams": teams})
    return
  }

  teams, err := th.teamService.FindAll(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"teams": teams})
}
