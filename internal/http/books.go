package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/session"
)

// BooksController serves the read-only book and copy pages.
type BooksController struct {
	pages
	store BookStore
}

func NewBooksController(store BookStore, sessions *session.Manager) *BooksController {
	return &BooksController{
		pages: pages{sessions: sessions},
		store: store,
	}
}

// GET /catalog/books
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.store.List(c.Request.Context())
	if err != nil {
		bc.serverError(c, err, "list books")
		return
	}

	bc.render(c, http.StatusOK, "book_list", gin.H{
		"title":     "Book List",
		"book_list": books,
	})
}

// GET /catalog/book/:id
func (bc *BooksController) Detail(c *gin.Context) {
	id := c.Param("id")

	var (
		book      *entities.Book
		instances []entities.BookInstance
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		book, err = bc.store.GetByID(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		instances, err = bc.store.ListInstancesByBook(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		bc.fail(c, err, "Book", "book detail")
		return
	}

	bc.render(c, http.StatusOK, "book_detail", gin.H{
		"title":          "Book Detail",
		"book":           book,
		"book_instances": instances,
	})
}

// GET /catalog/bookinstances
func (bc *BooksController) InstanceList(c *gin.Context) {
	instances, err := bc.store.ListInstances(c.Request.Context())
	if err != nil {
		bc.serverError(c, err, "list book instances")
		return
	}

	bc.render(c, http.StatusOK, "bookinstance_list", gin.H{
		"title":             "Book Instance List",
		"bookinstance_list": instances,
	})
}

// GET /catalog/bookinstance/:id
func (bc *BooksController) InstanceDetail(c *gin.Context) {
	instance, err := bc.store.GetInstanceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		bc.fail(c, err, "Book instance", "book instance detail")
		return
	}

	bc.render(c, http.StatusOK, "bookinstance_detail", gin.H{
		"title":        "Book Instance Detail",
		"bookinstance": instance,
	})
}
