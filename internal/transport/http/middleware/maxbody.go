package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "taskhub/internal/transport/http/response"
)

// MaxBodyBytes caps the request body. Reads past n fail, which the JSON
// binder reports as a 400.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusBadRequest, "Request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
