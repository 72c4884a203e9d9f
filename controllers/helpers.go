package controllers

import (
	"github.com/gin-gonic/gin"
)

// respondError writes the error envelope every endpoint uses for failures:
// {"success":false,"error":{"code","message"}}. Successful resource
// responses return the record, list or envelope body directly.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
