package http

import (
	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/genres"
	"github.com/mrlokans/catalog/internal/metrics"
	"github.com/mrlokans/catalog/internal/security"
	"github.com/mrlokans/catalog/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Genres   *genres.Repository
	Authors  *authors.Repository
	Books    *books.Repository
	Auditor  *audit.Service

	// Flash messages (optional)
	SessionManager *session.Manager

	// CSRF protection is enabled when the secret is set
	CSRFSecret    []byte
	SecureCookies bool

	// Optional middleware
	RateLimiter *security.RateLimiter
	Metrics     *metrics.Metrics

	// Refuse every submission, keep the catalog browsable
	DemoMode bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
