package handlers

import (
  "net/http"
  "time"
  "github.com/gin-gonic/gin"
)

var startedAt = time.Now()

const appVersion = "1.0.0"

func HealthCheck(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{
    "status":    "ok",
    "timestamp": time.Now().UTC().Format(time.RFC3339),
    "uptime":    time.Since(startedAt).Seconds(),
    "version":   appVersion,
  })
}
