package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

type mockAuthorStore struct {
	authors  map[string]*entities.Author
	blocking map[string][]entities.Book
	created  []entities.Author
	deleted  []string
	nextID   int
}

func newMockAuthorStore(authors ...entities.Author) *mockAuthorStore {
	m := &mockAuthorStore{authors: map[string]*entities.Author{}, blocking: map[string][]entities.Book{}}
	for i := range authors {
		a := authors[i]
		m.authors[a.ID] = &a
	}
	return m
}

func (m *mockAuthorStore) List(ctx context.Context) ([]entities.Author, error) {
	out := make([]entities.Author, 0, len(m.authors))
	for _, a := range m.authors {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAuthorStore) GetByID(ctx context.Context, id string) (*entities.Author, error) {
	a, ok := m.authors[id]
	if !ok {
		return nil, fmt.Errorf("author %s: %w", id, database.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *mockAuthorStore) Create(ctx context.Context, author *entities.Author) error {
	m.nextID++
	author.ID = fmt.Sprintf("a%d", m.nextID)
	cp := *author
	m.authors[author.ID] = &cp
	m.created = append(m.created, cp)
	return nil
}

func (m *mockAuthorStore) Update(ctx context.Context, author *entities.Author) error {
	if _, ok := m.authors[author.ID]; !ok {
		return fmt.Errorf("author %s: %w", author.ID, database.ErrNotFound)
	}
	cp := *author
	m.authors[author.ID] = &cp
	return nil
}

func (m *mockAuthorStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.authors[id]; !ok {
		return fmt.Errorf("author %s: %w", id, database.ErrNotFound)
	}
	if books := m.blocking[id]; len(books) > 0 {
		return &database.DependentsError{Kind: "author", ID: id, Books: books}
	}
	delete(m.authors, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func setupAuthorsRouter(t *testing.T, store *mockAuthorStore, books *mockBookLister) *gin.Engine {
	t.Helper()

	controller := NewAuthorsController(store, books, nil, nil)

	router := newTestEngine(t)
	router.GET("/catalog/authors", controller.List)
	router.GET("/catalog/author/create", controller.CreateForm)
	router.POST("/catalog/author/create", controller.Create)
	router.GET("/catalog/author/:id", controller.Detail)
	router.GET("/catalog/author/:id/delete", controller.DeleteForm)
	router.POST("/catalog/author/:id/delete", controller.Delete)
	router.GET("/catalog/author/:id/update", controller.UpdateForm)
	router.POST("/catalog/author/:id/update", controller.Update)
	return router
}

func birthday(year int) *time.Time {
	t := time.Date(year, time.January, 2, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAuthorsController_ListAndDetail(t *testing.T) {
	store := newMockAuthorStore(entities.Author{
		ID:          "a1",
		FirstName:   "Isaac",
		FamilyName:  "Asimov",
		DateOfBirth: birthday(1920),
		DateOfDeath: birthday(1992),
	})
	books := &mockBookLister{byAuthor: map[string][]entities.Book{
		"a1": {{ID: "b1", Title: "Foundation"}},
	}}
	router := setupAuthorsRouter(t, store, books)

	w := get(router, "/catalog/authors")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asimov, Isaac")
	assert.Contains(t, w.Body.String(), `href="/catalog/author/a1"`)

	w = get(router, "/catalog/author/a1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifespan: 72")
	assert.Contains(t, w.Body.String(), "Jan 2, 1920")
	assert.Contains(t, w.Body.String(), "Foundation")

	w = get(router, "/catalog/author/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorsController_DetailUnknownLifespan(t *testing.T) {
	store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Jane", FamilyName: "Doe", DateOfBirth: birthday(1950)})
	router := setupAuthorsRouter(t, store, &mockBookLister{})

	w := get(router, "/catalog/author/a1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifespan: unknown")
}

func TestAuthorsController_Create(t *testing.T) {
	t.Run("stores the author and redirects to it", func(t *testing.T) {
		store := newMockAuthorStore()
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/create", url.Values{
			"first_name":    {" Ursula "},
			"family_name":   {"Le Guin"},
			"date_of_birth": {"1929-10-21"},
		})

		require.Equal(t, http.StatusFound, w.Code)
		require.Len(t, store.created, 1)
		created := store.created[0]
		assert.Equal(t, "Ursula", created.FirstName)
		assert.Equal(t, 1929, created.DateOfBirth.Year())
		assert.Nil(t, created.DateOfDeath)
		assert.Equal(t, "/catalog/author/"+created.ID, w.Header().Get("Location"))
	})

	t.Run("missing fields redisplay the form with every error", func(t *testing.T) {
		store := newMockAuthorStore()
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/create", url.Values{
			"first_name":    {""},
			"family_name":   {"O'Brien"},
			"date_of_birth": {"not-a-date"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "First name must be specified")
		assert.Contains(t, body, "Invalid date of birth")
		assert.Contains(t, body, "O&#x27;Brien")
		assert.Empty(t, store.created)
	})
}

func TestAuthorsController_Delete(t *testing.T) {
	t.Run("refuses while books reference the author", func(t *testing.T) {
		store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov"})
		store.blocking["a1"] = []entities.Book{{ID: "b1", Title: "Foundation"}}
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/a1/delete", url.Values{"authorid": {"a1"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Delete the following books")
		assert.Empty(t, store.deleted)
	})

	t.Run("deletes an author without books", func(t *testing.T) {
		store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov"})
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/a1/delete", url.Values{"authorid": {"a1"}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, AuthorListPath, w.Header().Get("Location"))
		assert.Equal(t, []string{"a1"}, store.deleted)
	})

	t.Run("rejects a mismatched body id", func(t *testing.T) {
		store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov"})
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/a1/delete", url.Values{"authorid": {"a2"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, store.deleted)
	})

	t.Run("delete form for a missing author redirects to the list", func(t *testing.T) {
		router := setupAuthorsRouter(t, newMockAuthorStore(), &mockBookLister{})

		w := get(router, "/catalog/author/missing/delete")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, AuthorListPath, w.Header().Get("Location"))
	})
}

func TestAuthorsController_Update(t *testing.T) {
	t.Run("form is pre-filled with form dates", func(t *testing.T) {
		store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: birthday(1920)})
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := get(router, "/catalog/author/a1/update")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="1920-01-02"`)
		assert.Contains(t, w.Body.String(), `value="Asimov"`)
	})

	t.Run("overwrites the fields and keeps the id", func(t *testing.T) {
		store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: birthday(1920)})
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/a1/update", url.Values{
			"first_name":  {"Isaak"},
			"family_name": {"Asimov"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/catalog/author/a1", w.Header().Get("Location"))
		a, _ := store.GetByID(context.Background(), "a1")
		assert.Equal(t, "Isaak", a.FirstName)
		assert.Nil(t, a.DateOfBirth)
	})

	t.Run("death before birth is rejected", func(t *testing.T) {
		store := newMockAuthorStore(entities.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov"})
		router := setupAuthorsRouter(t, store, &mockBookLister{})

		w := postForm(router, "/catalog/author/a1/update", url.Values{
			"first_name":    {"Isaac"},
			"family_name":   {"Asimov"},
			"date_of_birth": {"1992-04-06"},
			"date_of_death": {"1920-01-02"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Date of death must not be before date of birth")
	})

	t.Run("missing author is 404", func(t *testing.T) {
		router := setupAuthorsRouter(t, newMockAuthorStore(), &mockBookLister{})

		w := postForm(router, "/catalog/author/missing/update", url.Values{
			"first_name":  {"Isaac"},
			"family_name": {"Asimov"},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = postForm(router, "/catalog/author/missing/update", url.Values{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
