package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusOperationFailed is returned when an update or delete could not be completed.
const StatusOperationFailed = 440

// OK writes {"success":true,"message":...} merged with fields.
func OK(c *gin.Context, message string, fields gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Error(c *gin.Context, httpStatus int, detail string) {
	ErrorWith(c, httpStatus, detail, nil)
}

// ErrorWith writes {"success":false,"detail":...} merged with fields.
func ErrorWith(c *gin.Context, httpStatus int, detail string, fields gin.H) {
	body := gin.H{"success": false, "detail": detail}
	for k, v := range fields {
		body[k] = v
	}
	c.AbortWithStatusJSON(httpStatus, body)
}
