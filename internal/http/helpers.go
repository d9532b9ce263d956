package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/demo"
	"github.com/mrlokans/catalog/internal/forms"
	"github.com/mrlokans/catalog/internal/security"
	"github.com/mrlokans/catalog/internal/session"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for the JSON endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Page Helpers ---

// pages renders HTML views. Every payload gets the CSRF hidden field and the
// pending flash message, so templates never reach into the request.
type pages struct {
	sessions *session.Manager
}

func (p pages) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["csrf_field"] = security.CSRFTokenField(c)
	data["demo_mode"] = c.GetBool(demo.ContextKeyDemoMode)
	if flash := p.sessions.PopFlash(c); flash != "" {
		data["flash"] = flash
	}
	c.HTML(status, name, data)
}

// redirect sends the browser to location after a form submission, keeping an
// optional message for the next rendered page.
func (p pages) redirect(c *gin.Context, location, flash string) {
	p.sessions.Flash(c, flash)
	c.Redirect(http.StatusFound, location)
}

func (p pages) notFound(c *gin.Context, resource string) {
	p.render(c, http.StatusNotFound, "not_found", gin.H{
		"title":    "Not Found",
		"resource": resource,
	})
}

func (p pages) badRequest(c *gin.Context, message string) {
	p.render(c, http.StatusBadRequest, "error", gin.H{
		"title":   "Bad Request",
		"message": message,
	})
}

// serverError logs the error and renders the generic error page.
// The actual error is logged but not exposed to the client.
func (p pages) serverError(c *gin.Context, err error, context string) {
	log.Error().Err(err).
		Str("context", context).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")
	p.render(c, http.StatusInternalServerError, "error", gin.H{
		"title": "Error",
	})
}

// formExpired answers a failed CSRF check. The session is not loaded yet at
// that point, so the page is rendered without a flash message.
func formExpired(c *gin.Context) {
	c.HTML(http.StatusForbidden, "error", gin.H{
		"title":     "Form Expired",
		"message":   security.CSRFFailureMessage,
		"demo_mode": c.GetBool(demo.ContextKeyDemoMode),
	})
}

// fail maps a store error onto the matching page: 404 for missing records,
// 500 for everything else.
func (p pages) fail(c *gin.Context, err error, resource, context string) {
	if errors.Is(err, database.ErrNotFound) {
		p.notFound(c, resource)
		return
	}
	p.serverError(c, err, context)
}

// validationErrors extracts the field messages of a failed form, or nil when
// err is not a validation failure.
func validationErrors(err error) forms.ValidationErrors {
	var verrs forms.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}
