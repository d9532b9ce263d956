package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/metrics"
	"github.com/mrlokans/catalog/internal/session"
)

// CatalogController renders the home page with record counts.
type CatalogController struct {
	pages
	books     Counter
	instances InstanceCounter
	authors   Counter
	genres    Counter
	metrics   *metrics.Metrics
}

func NewCatalogController(books Counter, instances InstanceCounter, authors, genres Counter, m *metrics.Metrics, sessions *session.Manager) *CatalogController {
	return &CatalogController{
		pages:     pages{sessions: sessions},
		books:     books,
		instances: instances,
		authors:   authors,
		genres:    genres,
		metrics:   m,
	}
}

// Index counts every kind of record in parallel.
// GET /catalog
func (cc *CatalogController) Index(c *gin.Context) {
	var bookCount, instanceCount, availableCount, authorCount, genreCount int64

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		bookCount, err = cc.books.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		instanceCount, err = cc.instances.CountInstances(ctx)
		return err
	})
	g.Go(func() (err error) {
		availableCount, err = cc.instances.CountInstancesByStatus(ctx, entities.BookInstanceAvailable)
		return err
	})
	g.Go(func() (err error) {
		authorCount, err = cc.authors.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		genreCount, err = cc.genres.Count(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		cc.serverError(c, err, "catalog counts")
		return
	}

	cc.metrics.SetEntityCount("books", bookCount)
	cc.metrics.SetEntityCount("book_instances", instanceCount)
	cc.metrics.SetEntityCount("authors", authorCount)
	cc.metrics.SetEntityCount("genres", genreCount)

	cc.render(c, http.StatusOK, "index", gin.H{
		"title":                         "Local Library Home",
		"book_count":                    bookCount,
		"book_instance_count":           instanceCount,
		"book_instance_available_count": availableCount,
		"author_count":                  authorCount,
		"genre_count":                   genreCount,
	})
}
