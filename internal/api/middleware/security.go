package middleware

import (
	"github.com/gin-gonic/gin"
)

// apiHeaders suit a JSON-only API that is never framed or rendered.
// geolocation stays enabled for the worker app's GPS reports.
var apiHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(self)"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders stamps apiHeaders on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range apiHeaders {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
