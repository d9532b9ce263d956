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

// GenreNameTakenMsg is shown when a rename collides with another genre.
const GenreNameTakenMsg = "Genre name already exists"

type GenresController struct {
	pages
	store        GenreStore
	books        GenreBookLister
	auditService *audit.Service
}

func NewGenresController(store GenreStore, books GenreBookLister, auditService *audit.Service, sessions *session.Manager) *GenresController {
	return &GenresController{
		pages:        pages{sessions: sessions},
		store:        store,
		books:        books,
		auditService: auditService,
	}
}

// List renders all genres sorted by name.
// GET /catalog/genres
func (gc *GenresController) List(c *gin.Context) {
	genres, err := gc.store.List(c.Request.Context())
	if err != nil {
		gc.serverError(c, err, "list genres")
		return
	}

	gc.render(c, http.StatusOK, "genre_list", gin.H{
		"title":      "Genre List",
		"genre_list": genres,
	})
}

// genreWithBooks looks up the genre and the books filed under it in
// parallel. Either failure fails the whole lookup.
func (gc *GenresController) genreWithBooks(ctx context.Context, id string) (*entities.Genre, []entities.Book, error) {
	var (
		genre *entities.Genre
		books []entities.Book
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genre, err = gc.store.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = gc.books.ListByGenre(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return genre, books, nil
}

// Detail renders one genre with its books.
// GET /catalog/genre/:id
func (gc *GenresController) Detail(c *gin.Context) {
	genre, books, err := gc.genreWithBooks(c.Request.Context(), c.Param("id"))
	if err != nil {
		gc.fail(c, err, "Genre", "genre detail")
		return
	}

	gc.render(c, http.StatusOK, "genre_detail", gin.H{
		"title":       "Genre Detail",
		"genre":       genre,
		"genre_books": books,
	})
}

// CreateForm renders an empty genre form.
// GET /catalog/genre/create
func (gc *GenresController) CreateForm(c *gin.Context) {
	gc.render(c, http.StatusOK, "genre_form", gin.H{
		"title": "Create Genre",
	})
}

// Create stores a new genre. Submitting a name that already exists is not an
// error: the browser is sent to the existing record instead.
// POST /catalog/genre/create
func (gc *GenresController) Create(c *gin.Context) {
	var form forms.GenreForm
	if err := c.ShouldBind(&form); err != nil {
		gc.badRequest(c, "Invalid form submission")
		return
	}

	if err := form.Validate(forms.GenreNameRequiredOnCreate); err != nil {
		verrs := validationErrors(err)
		if verrs == nil {
			gc.serverError(c, err, "validate genre")
			return
		}
		gc.render(c, http.StatusOK, "genre_form", gin.H{
			"title":  "Create Genre",
			"genre":  form.Genre(),
			"errors": verrs,
		})
		return
	}

	genre, created, err := gc.store.CreateIfAbsent(c.Request.Context(), form.Name)
	if err != nil {
		gc.serverError(c, err, "create genre")
		return
	}

	if created && gc.auditService != nil {
		gc.auditService.LogCreate(audit.EntityGenre, genre.ID, genre.Name)
	}

	c.Redirect(http.StatusFound, entities.GenreURL(*genre))
}

// DeleteForm renders the delete confirmation, listing the books that would
// block the deletion. A missing genre sends the browser back to the list.
// GET /catalog/genre/:id/delete
func (gc *GenresController) DeleteForm(c *gin.Context) {
	genre, books, err := gc.genreWithBooks(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.Redirect(http.StatusFound, GenreListPath)
		return
	}
	if err != nil {
		gc.serverError(c, err, "genre delete form")
		return
	}

	gc.render(c, http.StatusOK, "genre_delete", gin.H{
		"title":       "Genre Delete",
		"genre":       genre,
		"genre_books": books,
	})
}

// Delete removes a genre that no book references. The path id names the
// genre; a form field "genreid" is accepted only when it agrees with it.
// POST /catalog/genre/:id/delete
func (gc *GenresController) Delete(c *gin.Context) {
	id := c.Param("id")
	if bodyID := c.PostForm("genreid"); bodyID != "" && bodyID != id {
		gc.badRequest(c, "Genre id in the form does not match the page")
		return
	}

	ctx := c.Request.Context()
	genre, err := gc.store.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		c.Redirect(http.StatusFound, GenreListPath)
		return
	}
	if err != nil {
		gc.serverError(c, err, "delete genre")
		return
	}

	err = gc.store.Delete(ctx, id)
	var dependents *database.DependentsError
	switch {
	case err == nil:
	case errors.As(err, &dependents):
		gc.render(c, http.StatusOK, "genre_delete", gin.H{
			"title":       "Genre Delete",
			"genre":       genre,
			"genre_books": dependents.Books,
		})
		return
	case errors.Is(err, database.ErrNotFound):
		c.Redirect(http.StatusFound, GenreListPath)
		return
	default:
		gc.serverError(c, err, "delete genre")
		return
	}

	if gc.auditService != nil {
		gc.auditService.LogDelete(audit.EntityGenre, genre.ID, genre.Name)
	}

	gc.redirect(c, GenreListPath, "Genre deleted.")
}

// UpdateForm renders the genre form pre-filled with the stored name.
// GET /catalog/genre/:id/update
func (gc *GenresController) UpdateForm(c *gin.Context) {
	genre, err := gc.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		gc.fail(c, err, "Genre", "genre update form")
		return
	}

	gc.render(c, http.StatusOK, "genre_form", gin.H{
		"title": "Update Genre",
		"genre": genre,
	})
}

// Update renames an existing genre. It never creates a missing one.
// POST /catalog/genre/:id/update
func (gc *GenresController) Update(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var form forms.GenreForm
	if err := c.ShouldBind(&form); err != nil {
		gc.badRequest(c, "Invalid form submission")
		return
	}

	if err := form.Validate(forms.GenreNameRequiredOnUpdate); err != nil {
		verrs := validationErrors(err)
		if verrs == nil {
			gc.serverError(c, err, "validate genre")
			return
		}
		gc.redisplayUpdate(c, id, form, verrs)
		return
	}

	genre, err := gc.store.UpdateName(ctx, id, form.Name)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrDuplicateName):
		gc.redisplayUpdate(c, id, form, forms.ValidationErrors{{Field: "name", Msg: GenreNameTakenMsg}})
		return
	default:
		gc.fail(c, err, "Genre", "update genre")
		return
	}

	if gc.auditService != nil {
		gc.auditService.LogUpdate(audit.EntityGenre, genre.ID, genre.Name)
	}

	c.Redirect(http.StatusFound, entities.GenreURL(*genre))
}

// redisplayUpdate re-renders the update form over the stored record so the
// page keeps the genre's id while showing the submitted name.
func (gc *GenresController) redisplayUpdate(c *gin.Context, id string, form forms.GenreForm, verrs forms.ValidationErrors) {
	original, err := gc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		gc.fail(c, err, "Genre", "genre update redisplay")
		return
	}
	original.Name = form.Name

	gc.render(c, http.StatusOK, "genre_form", gin.H{
		"title":  "Update Genre",
		"genre":  original,
		"errors": verrs,
	})
}
