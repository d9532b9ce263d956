package security

import (
	"context"
	"crypto/rand"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"
)

// csrfTokenKey is the Gin context key holding the per-request token.
const csrfTokenKey = "csrf_token"

// CSRFFieldName is the form field the token is submitted in.
const CSRFFieldName = "gorilla.csrf.Token"

// CSRFFailureMessage explains a refused submission to the visitor.
const CSRFFailureMessage = "The form submission could not be verified. Reload the form and try again."

// ginContextKey carries the gin context through gorilla/csrf so a failure can
// be answered by the catalog's own error page.
type ginContextKey struct{}

// CSRFMiddleware protects the catalog forms. Safe methods pass through and
// get a token; any other method must carry a valid one, otherwise onFailure
// answers the request (a plain 403 when nil). When secure is false the
// request is marked as plain HTTP so the origin check does not require TLS.
func CSRFMiddleware(secret []byte, secure bool, onFailure gin.HandlerFunc) gin.HandlerFunc {
	if onFailure == nil {
		onFailure = csrfFailure
	}

	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warn().
				Err(csrf.FailureReason(r)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("CSRF check failed")

			c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
			if !ok {
				http.Error(w, CSRFFailureMessage, http.StatusForbidden)
				return
			}
			onFailure(c)
		})),
	)

	return func(c *gin.Context) {
		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		req = req.WithContext(context.WithValue(req.Context(), ginContextKey{}, c))

		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Set(csrfTokenKey, csrf.Token(r))
			// Session middleware runs after this and wraps the replaced request.
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, req)

		if _, passed := c.Get(csrfTokenKey); !passed {
			c.Abort()
		}
	}
}

// csrfFailure answers JSON clients with an error body and everyone else with
// plain text.
func csrfFailure(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusForbidden, gin.H{"error": CSRFFailureMessage})
		return
	}
	c.String(http.StatusForbidden, CSRFFailureMessage)
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}

// CSRFTokenField returns a hidden input carrying the token, or "" when CSRF
// protection is disabled.
func CSRFTokenField(c *gin.Context) template.HTML {
	token := GetCSRFToken(c)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="` + CSRFFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}

// GenerateCSRFSecret returns 32 random bytes for signing CSRF tokens.
func GenerateCSRFSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate CSRF secret: %w", err)
	}
	return secret, nil
}
