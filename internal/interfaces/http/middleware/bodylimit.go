package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// BodyLimitRule raises or lowers the limit for one route pattern
type BodyLimitRule struct {
	Method   string
	Route    string // gin route pattern, e.g. /api/v1/products/:id
	MaxBytes int64
}

// BodyLimit limits request bodies to maxBytes, or to the limit of the first
// rule matching the request's route
func BodyLimit(maxBytes int64, rules ...BodyLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		route := c.FullPath()
		for _, r := range rules {
			if r.Route == route && (r.Method == "" || r.Method == c.Request.Method) {
				limit = r.MaxBytes
				break
			}
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		// Chunked bodies have no Content-Length; the reader enforces the limit
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
