package handlers

import (
	"net/http"

	"guruconnect/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the last dependency snapshot taken by utils.StartHealthMonitor.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	state := "ok"
	code := http.StatusOK
	if !healthy {
		state = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    state,
		"mongo":     status.Mongo,
		"redis":     status.Redis,
		"checkedAt": status.CheckedAt,
	})
}
