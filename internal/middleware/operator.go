package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// OperatorHeader is the header the upstream identity layer uses to convey the
// acting operator. Authentication itself happens before requests reach this
// service.
const OperatorHeader = "X-Operator-ID"

// OperatorMiddleware extracts the acting operator's ID from the request header
// and stores it in the context for handlers and the audit fields.
func OperatorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if operatorID != "" {
			c.Set(string(operatorIDKey), operatorID)
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), operatorIDKey, operatorID))
			GetLoggerFromCtx(c.Request.Context()).Debug("Operator resolved", slog.String("operator_id", operatorID))
		}
		c.Next()
	}
}
