package middlewares

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
)

// BodyLimit caps the request body size uniformly across all routes.
// Oversized bodies abort mid-read with http.MaxBytesError before any handler
// finishes buffering them.
func BodyLimit(maxBytes int64) func(c *ginext.Context) {
	return func(c *ginext.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
