package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/demo"
	"github.com/mrlokans/catalog/internal/logging"
	"github.com/mrlokans/catalog/internal/security"
)

// CatalogPrefix is the path every catalog page is mounted under.
const CatalogPrefix = "/catalog"

const (
	GenreListPath  = CatalogPrefix + "/genres"
	AuthorListPath = CatalogPrefix + "/authors"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Genres == nil || cfg.Authors == nil || cfg.Books == nil {
		return nil, errors.New("router requires the genre, author and book repositories")
	}

	router := gin.New()
	router.Use(logging.RequestLogger())
	router.Use(gin.Recovery())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	// Apply security headers to all responses
	router.Use(security.SecurityHeadersMiddleware())

	// Demo mode refuses writes before they can consume rate limit tokens
	router.Use(demo.NewMiddleware(cfg.DemoMode).Handler())

	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Middleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, formExpired))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadSave())
	}

	tmpl, err := LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	health := NewHealthController(cfg.Version)
	health.AddCheck("database", databaseCheck(cfg.Database))
	catalog := NewCatalogController(cfg.Books, cfg.Books, cfg.Authors, cfg.Genres, cfg.Metrics, cfg.SessionManager)
	genres := NewGenresController(cfg.Genres, cfg.Books, cfg.Auditor, cfg.SessionManager)
	authors := NewAuthorsController(cfg.Authors, cfg.Books, cfg.Auditor, cfg.SessionManager)
	books := NewBooksController(cfg.Books, cfg.SessionManager)

	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.Metrics != nil {
		router.GET("/metrics", cfg.Metrics.Handler())
	}

	if cfg.Auditor != nil {
		auditController := NewAuditController(cfg.Auditor)
		router.GET("/api/audit", auditController.GetAuditEvents)
		router.GET("/api/audit/:type/:id", auditController.GetEntityHistory)
	}

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, CatalogPrefix)
	})

	group := router.Group(CatalogPrefix)
	{
		group.GET("", catalog.Index)

		group.GET("/genres", genres.List)
		group.GET("/genre/create", genres.CreateForm)
		group.POST("/genre/create", genres.Create)
		group.GET("/genre/:id", genres.Detail)
		group.GET("/genre/:id/delete", genres.DeleteForm)
		group.POST("/genre/:id/delete", genres.Delete)
		group.GET("/genre/:id/update", genres.UpdateForm)
		group.POST("/genre/:id/update", genres.Update)

		group.GET("/authors", authors.List)
		group.GET("/author/create", authors.CreateForm)
		group.POST("/author/create", authors.Create)
		group.GET("/author/:id", authors.Detail)
		group.GET("/author/:id/delete", authors.DeleteForm)
		group.POST("/author/:id/delete", authors.Delete)
		group.GET("/author/:id/update", authors.UpdateForm)
		group.POST("/author/:id/update", authors.Update)

		group.GET("/books", books.List)
		group.GET("/book/:id", books.Detail)
		group.GET("/bookinstances", books.InstanceList)
		group.GET("/bookinstance/:id", books.InstanceDetail)
	}

	router.NoRoute(func(c *gin.Context) {
		pages{sessions: cfg.SessionManager}.notFound(c, "Page")
	})

	return router, nil
}
