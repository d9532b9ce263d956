package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/forms"
)

const testTemplatesPath = "../../templates"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	return openTestDB(t, filepath.Join(t.TempDir(), "catalog.db"))
}

// openTestDB opens the database at path and closes it when t finishes.
func openTestDB(t *testing.T, path string) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestEngine returns a bare router that renders the real templates.
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	tmpl, err := LoadTemplates(testTemplatesPath)
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	return router
}

func TestLoadTemplates(t *testing.T) {
	tmpl, err := LoadTemplates(testTemplatesPath)
	require.NoError(t, err)

	for _, name := range []string{
		"index", "error", "not_found",
		"genre_list", "genre_detail", "genre_form", "genre_delete",
		"author_list", "author_detail", "author_form", "author_delete",
		"book_list", "book_detail", "bookinstance_list", "bookinstance_detail",
	} {
		assert.NotNil(t, tmpl.Lookup(name), "template %q should be defined", name)
	}

	_, err = LoadTemplates(t.TempDir())
	assert.Error(t, err)
}

func TestPagesFail(t *testing.T) {
	router := newTestEngine(t)
	p := pages{}

	router.GET("/missing", func(c *gin.Context) {
		p.fail(c, fmt.Errorf("genre x: %w", database.ErrNotFound), "Genre", "test")
	})
	router.GET("/broken", func(c *gin.Context) {
		p.fail(c, errors.New("disk on fire"), "Genre", "test")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Genre not found")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestValidationErrors(t *testing.T) {
	verrs := forms.ValidationErrors{{Field: "name", Msg: "Genre name required"}}

	assert.Equal(t, verrs, validationErrors(verrs))
	assert.Equal(t, verrs, validationErrors(fmt.Errorf("wrapped: %w", verrs)))
	assert.Nil(t, validationErrors(errors.New("other")))
}

func TestRespondHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondNotFound(c, "genre")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "genre not found")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondBadRequest(c, "bad id")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondInternalError(c, errors.New("secret"), "test")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}
