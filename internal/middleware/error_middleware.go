package middleware

import (
	"chatlink/internal/transport/httpdto"
	"chatlink/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs and serializes errors handlers attached via c.Error
// without writing a response themselves.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}
		if !c.Writer.Written() {
			c.JSON(c.Writer.Status(), httpdto.NewErrorResponse(err.Error(), httpdto.CodeInternalError))
		}
	}
}
