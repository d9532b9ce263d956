package genres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every genre sorted by name.
func (r *Repository) List(ctx context.Context) ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, err
}

// GetByID returns the genre or an error matching database.ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&genre).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &genre, nil
}

// FindByName looks a genre up by its exact stored name.
func (r *Repository) FindByName(ctx context.Context, name string) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&genre).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &genre, nil
}

// CreateIfAbsent inserts a genre unless one with the same name already exists.
// It returns the stored genre and whether this call created it. The unique
// index on name decides the race between concurrent submissions.
func (r *Repository) CreateIfAbsent(ctx context.Context, name string) (*entities.Genre, bool, error) {
	genre := &entities.Genre{Name: name}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(genre)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create genre: %w", database.Translate(result.Error))
	}
	if result.RowsAffected == 1 {
		return genre, true, nil
	}

	existing, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing genre: %w", err)
	}
	return existing, false, nil
}

// UpdateName renames an existing genre. It never creates a record.
func (r *Repository) UpdateName(ctx context.Context, id, name string) (*entities.Genre, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Genre{}).
		Where("id = ?", id).
		Update("name", name)
	if result.Error != nil {
		return nil, database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("genre %s: %w", id, database.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the genre when no book references it. The dependent check
// and the delete share one transaction; a refusal returns a
// *database.DependentsError listing the blocking books.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var genre entities.Genre
		if err := tx.Where("id = ?", id).First(&genre).Error; err != nil {
			return database.Translate(err)
		}

		var books []entities.Book
		if err := tx.Where("genre_id = ?", id).Order("title ASC").Find(&books).Error; err != nil {
			return err
		}
		if len(books) > 0 {
			return &database.DependentsError{Kind: "genre", ID: id, Books: books}
		}

		if err := tx.Delete(&genre).Error; err != nil {
			return database.Translate(err)
		}
		return nil
	})
}

// Count returns the number of genres.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Genre{}).Count(&count).Error
	return count, err
}
