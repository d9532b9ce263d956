package security

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// The catalog serves its own stylesheet and no scripts, so the policy can
// lock every source to the origin.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'none'",
	"style-src 'self'",
	"img-src 'self' data:",
	"frame-ancestors 'none'",
	"base-uri 'self'",
}, "; ")

var staticHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "same-origin",
	"Permissions-Policy":     "camera=(), geolocation=(), microphone=(), payment=()",
}

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range staticHeaders {
			c.Header(name, value)
		}

		// Forms post back to the host the page was served from, which may be
		// a reverse proxy in front of us.
		formAction := "form-action 'self'"
		if host := c.Request.Host; host != "" {
			formAction += " https://" + host
		}
		c.Header("Content-Security-Policy", contentSecurityPolicy+"; "+formAction)

		// Catalog pages embed a CSRF token and a flash message; never cache them.
		if !strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
