package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

// Repository handles books and their physical copies.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every book sorted by title with its author loaded.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Preload("Author").Order("title ASC").Find(&books).Error
	return books, err
}

// GetByID returns the book with its author and genre loaded.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Genre").
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &book, nil
}

// ListByGenre returns the books filed under a genre, sorted by title.
func (r *Repository) ListByGenre(ctx context.Context, genreID string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Where("genre_id = ?", genreID).Order("title ASC").Find(&books).Error
	return books, err
}

// ListByAuthor returns the books written by an author, sorted by title.
func (r *Repository) ListByAuthor(ctx context.Context, authorID string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("title ASC").Find(&books).Error
	return books, err
}

// Create inserts a book. Associations must already exist.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Genre", "Instances").Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", database.Translate(err))
	}
	return nil
}

// Count returns the number of books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}
