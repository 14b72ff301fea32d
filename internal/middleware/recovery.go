package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
	"github.com/noah-isme/campus-registrar-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-registrar-api/pkg/observability"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

// Recovery turns panics into the InternalError envelope and reports them to Sentry.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			observability.CapturePanic(rec)
			logger.Error("panic recovered",
				zap.String("panic", fmt.Sprint(rec)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				requestid.Field(c),
				zap.Stack("stack"))
			response.AbortError(c, appErrors.ErrInternal)
		}()
		c.Next()
	}
}

// ReportErrors forwards 5xx handler errors to Sentry after the response is written.
func ReportErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < 500 {
			return
		}
		for _, ginErr := range c.Errors {
			observability.CaptureErr(ginErr.Err)
		}
	}
}
