// Package demo implements the read-only showcase mode: every catalog page can
// be browsed, but nothing can be created, changed or deleted.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is shown to visitors whose submission was refused.
const Message = "The catalog is read-only in demo mode"

// ContextKeyDemoMode stores the demo flag in the gin context for templates.
const ContextKeyDemoMode = "demo_mode"

// Middleware blocks every state-changing request while demo mode is enabled.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler lets safe methods through and answers anything else with 403.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)

		if !m.enabled || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		respondBlocked(c)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     Message,
			"demo_mode": true,
		})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusForbidden, Message)
	c.Abort()
}
