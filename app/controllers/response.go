package controllers

import (
	"time"

	"github.com/cn-address-parser/app/responses"
	"github.com/gin-gonic/gin"
)

// abortWithError trả về ErrorResponse với mã lỗi và thông báo
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
