package genres

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func createBook(t *testing.T, db *gorm.DB, title string, genreID string) entities.Book {
	t.Helper()
	author := entities.Author{FirstName: "Ursula", FamilyName: "Le Guin"}
	require.NoError(t, db.Create(&author).Error)
	book := entities.Book{Title: title, Summary: "s", ISBN: "978", AuthorID: author.ID, GenreID: &genreID}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	for _, name := range []string{"Poetry", "Fantasy", "Science Fiction"} {
		_, _, err := repo.CreateIfAbsent(ctx, name)
		require.NoError(t, err)
	}

	genres, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 3)
	assert.Equal(t, "Fantasy", genres[0].Name)
	assert.Equal(t, "Poetry", genres[1].Name)
	assert.Equal(t, "Science Fiction", genres[2].Name)
}

func TestRepository_List_Empty(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	genres, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	created, _, err := repo.CreateIfAbsent(ctx, "Fantasy")
	require.NoError(t, err)

	t.Run("existing", func(t *testing.T) {
		genre, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fantasy", genre.Name)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})
}

func TestRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	first, created, err := repo.CreateIfAbsent(ctx, "Fantasy")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, first.ID, 36)

	second, created, err := repo.CreateIfAbsent(ctx, "Fantasy")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_CreateIfAbsent_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			genre, _, err := repo.CreateIfAbsent(ctx, "Horror")
			errs[i] = err
			if genre != nil {
				ids[i] = genre.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_UpdateName(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	fantasy, _, err := repo.CreateIfAbsent(ctx, "Fantasy")
	require.NoError(t, err)
	poetry, _, err := repo.CreateIfAbsent(ctx, "Poetry")
	require.NoError(t, err)

	t.Run("renames", func(t *testing.T) {
		updated, err := repo.UpdateName(ctx, fantasy.ID, "High Fantasy")
		require.NoError(t, err)
		assert.Equal(t, fantasy.ID, updated.ID)
		assert.Equal(t, "High Fantasy", updated.Name)
	})

	t.Run("missing id does not create", func(t *testing.T) {
		_, err := repo.UpdateName(ctx, "does-not-exist", "Drama")
		assert.True(t, errors.Is(err, database.ErrNotFound))

		_, err = repo.FindByName(ctx, "Drama")
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})

	t.Run("collision with another genre", func(t *testing.T) {
		_, err := repo.UpdateName(ctx, poetry.ID, "High Fantasy")
		assert.True(t, errors.Is(err, database.ErrDuplicateName))

		unchanged, err := repo.GetByID(ctx, poetry.ID)
		require.NoError(t, err)
		assert.Equal(t, "Poetry", unchanged.Name)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)

	t.Run("unused genre", func(t *testing.T) {
		genre, _, err := repo.CreateIfAbsent(ctx, "Poetry")
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, genre.ID))

		_, err = repo.GetByID(ctx, genre.ID)
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})

	t.Run("genre with books is kept", func(t *testing.T) {
		genre, _, err := repo.CreateIfAbsent(ctx, "Fantasy")
		require.NoError(t, err)
		book := createBook(t, db, "A Wizard of Earthsea", genre.ID)

		err = repo.Delete(ctx, genre.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, database.ErrHasDependents))

		var depErr *database.DependentsError
		require.True(t, errors.As(err, &depErr))
		require.Len(t, depErr.Books, 1)
		assert.Equal(t, book.ID, depErr.Books[0].ID)

		_, err = repo.GetByID(ctx, genre.ID)
		assert.NoError(t, err)
	})

	t.Run("missing genre", func(t *testing.T) {
		err := repo.Delete(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})

	t.Run("storage refuses orphaning books", func(t *testing.T) {
		genre, _, err := repo.CreateIfAbsent(ctx, "Horror")
		require.NoError(t, err)
		createBook(t, db, "Carmilla", genre.ID)

		err = db.Delete(&entities.Genre{}, "id = ?", genre.ID).Error
		assert.Error(t, err)

		_, err = repo.GetByID(ctx, genre.ID)
		assert.NoError(t, err)
	})
}
