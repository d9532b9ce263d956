package authors

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every author sorted by family name, then first name.
func (r *Repository) List(ctx context.Context) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).Order("family_name ASC, first_name ASC").Find(&authors).Error
	return authors, err
}

// GetByID returns the author or an error matching database.ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&author).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &author, nil
}

// Create inserts a new author and fills in its ID.
func (r *Repository) Create(ctx context.Context, author *entities.Author) error {
	if err := r.db.WithContext(ctx).Create(author).Error; err != nil {
		return fmt.Errorf("failed to create author: %w", database.Translate(err))
	}
	return nil
}

// Update overwrites the editable fields of an existing author, including
// clearing dates that were removed from the form.
func (r *Repository) Update(ctx context.Context, author *entities.Author) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Author{}).
		Where("id = ?", author.ID).
		Select("first_name", "family_name", "date_of_birth", "date_of_death").
		Updates(map[string]any{
			"first_name":    author.FirstName,
			"family_name":   author.FamilyName,
			"date_of_birth": author.DateOfBirth,
			"date_of_death": author.DateOfDeath,
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("author %s: %w", author.ID, database.ErrNotFound)
	}
	return nil
}

// Delete removes the author when no book references it, using the same
// transactional check as genres.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.Where("id = ?", id).First(&author).Error; err != nil {
			return database.Translate(err)
		}

		var books []entities.Book
		if err := tx.Where("author_id = ?", id).Order("title ASC").Find(&books).Error; err != nil {
			return err
		}
		if len(books) > 0 {
			return &database.DependentsError{Kind: "author", ID: id, Books: books}
		}

		if err := tx.Delete(&author).Error; err != nil {
			return database.Translate(err)
		}
		return nil
	})
}

// Count returns the number of authors.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Author{}).Count(&count).Error
	return count, err
}
