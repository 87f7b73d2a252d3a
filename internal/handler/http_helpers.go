package handler

import (
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondMessage is used by the read endpoints, whose clients expect a "message" key.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func (a *API) logError(c *gin.Context, msg string, err error, attrs ...any) {
	args := append([]any{"method", c.Request.Method, "path", c.Request.URL.Path, "error", err}, attrs...)
	a.logger.ErrorContext(c.Request.Context(), msg, args...)
}
