package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/forms"
	"github.com/mrlokans/catalog/internal/session"
)

type AuthorsController struct {
	pages
	store        AuthorStore
	books        AuthorBookLister
	auditService *audit.Service
}

func NewAuthorsController(store AuthorStore, books AuthorBookLister, auditService *audit.Service, sessions *session.Manager) *AuthorsController {
	return &AuthorsController{
		pages:        pages{sessions: sessions},
		store:        store,
		books:        books,
		auditService: auditService,
	}
}

// GET /catalog/authors
func (ac *AuthorsController) List(c *gin.Context) {
	authors, err := ac.store.List(c.Request.Context())
	if err != nil {
		ac.serverError(c, err, "list authors")
		return
	}

	ac.render(c, http.StatusOK, "author_list", gin.H{
		"title":       "Author List",
		"author_list": authors,
	})
}

func (ac *AuthorsController) authorWithBooks(ctx context.Context, id string) (*entities.Author, []entities.Book, error) {
	var (
		author *entities.Author
		books  []entities.Book
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		author, err = ac.store.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = ac.books.ListByAuthor(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return author, books, nil
}

// GET /catalog/author/:id
func (ac *AuthorsController) Detail(c *gin.Context) {
	author, books, err := ac.authorWithBooks(c.Request.Context(), c.Param("id"))
	if err != nil {
		ac.fail(c, err, "Author", "author detail")
		return
	}

	ac.render(c, http.StatusOK, "author_detail", gin.H{
		"title":        "Author Detail",
		"author":       author,
		"author_books": books,
	})
}

// GET /catalog/author/create
func (ac *AuthorsController) CreateForm(c *gin.Context) {
	ac.render(c, http.StatusOK, "author_form", gin.H{
		"title": "Create Author",
	})
}

// POST /catalog/author/create
func (ac *AuthorsController) Create(c *gin.Context) {
	var form forms.AuthorForm
	if err := c.ShouldBind(&form); err != nil {
		ac.badRequest(c, "Invalid form submission")
		return
	}

	if err := form.Validate(); err != nil {
		verrs := validationErrors(err)
		if verrs == nil {
			ac.serverError(c, err, "validate author")
			return
		}
		ac.render(c, http.StatusOK, "author_form", gin.H{
			"title":  "Create Author",
			"author": form,
			"errors": verrs,
		})
		return
	}

	author := form.Author()
	if err := ac.store.Create(c.Request.Context(), &author); err != nil {
		ac.serverError(c, err, "create author")
		return
	}

	if ac.auditService != nil {
		ac.auditService.LogCreate(audit.EntityAuthor, author.ID, entities.AuthorName(author))
	}

	c.Redirect(http.StatusFound, entities.AuthorURL(author))
}

// DeleteForm lists the books that would block the deletion. A missing author
// sends the browser back to the list.
// GET /catalog/author/:id/delete
func (ac *AuthorsController) DeleteForm(c *gin.Context) {
	author, books, err := ac.authorWithBooks(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.Redirect(http.StatusFound, AuthorListPath)
		return
	}
	if err != nil {
		ac.serverError(c, err, "author delete form")
		return
	}

	ac.render(c, http.StatusOK, "author_delete", gin.H{
		"title":        "Delete Author",
		"author":       author,
		"author_books": books,
	})
}

// POST /catalog/author/:id/delete
func (ac *AuthorsController) Delete(c *gin.Context) {
	id := c.Param("id")
	if bodyID := c.PostForm("authorid"); bodyID != "" && bodyID != id {
		ac.badRequest(c, "Author id in the form does not match the page")
		return
	}

	ctx := c.Request.Context()
	author, err := ac.store.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		c.Redirect(http.StatusFound, AuthorListPath)
		return
	}
	if err != nil {
		ac.serverError(c, err, "delete author")
		return
	}

	err = ac.store.Delete(ctx, id)
	var dependents *database.DependentsError
	switch {
	case err == nil:
	case errors.As(err, &dependents):
		ac.render(c, http.StatusOK, "author_delete", gin.H{
			"title":        "Delete Author",
			"author":       author,
			"author_books": dependents.Books,
		})
		return
	case errors.Is(err, database.ErrNotFound):
		c.Redirect(http.StatusFound, AuthorListPath)
		return
	default:
		ac.serverError(c, err, "delete author")
		return
	}

	if ac.auditService != nil {
		ac.auditService.LogDelete(audit.EntityAuthor, author.ID, entities.AuthorName(*author))
	}

	ac.redirect(c, AuthorListPath, "Author deleted.")
}

// GET /catalog/author/:id/update
func (ac *AuthorsController) UpdateForm(c *gin.Context) {
	author, err := ac.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		ac.fail(c, err, "Author", "author update form")
		return
	}

	ac.render(c, http.StatusOK, "author_form", gin.H{
		"title":  "Update Author",
		"author": forms.AuthorFormFrom(*author),
	})
}

// POST /catalog/author/:id/update
func (ac *AuthorsController) Update(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var form forms.AuthorForm
	if err := c.ShouldBind(&form); err != nil {
		ac.badRequest(c, "Invalid form submission")
		return
	}

	if err := form.Validate(); err != nil {
		verrs := validationErrors(err)
		if verrs == nil {
			ac.serverError(c, err, "validate author")
			return
		}
		if _, err := ac.store.GetByID(ctx, id); err != nil {
			ac.fail(c, err, "Author", "author update redisplay")
			return
		}
		ac.render(c, http.StatusOK, "author_form", gin.H{
			"title":  "Update Author",
			"author": form,
			"errors": verrs,
		})
		return
	}

	author := form.Author()
	author.ID = id
	if err := ac.store.Update(ctx, &author); err != nil {
		ac.fail(c, err, "Author", "update author")
		return
	}

	if ac.auditService != nil {
		ac.auditService.LogUpdate(audit.EntityAuthor, author.ID, entities.AuthorName(author))
	}

	c.Redirect(http.StatusFound, entities.AuthorURL(author))
}
