package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health. It reports liveness only and never touches the store.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
