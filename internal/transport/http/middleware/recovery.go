package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "taskhub/internal/transport/http/response"
)

func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				_ = c.Error(fmt.Errorf("panic: %v", rec))
				l.Error("panic recovered",
					zap.String("rid", RequestIDOf(c)),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				resp.Abort(c, http.StatusInternalServerError, "")
			}
		}()
		c.Next()
	}
}
