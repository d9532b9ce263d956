package books

import (
	"context"
	"fmt"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

// ListInstances returns every copy with its book (and the book's author) loaded.
func (r *Repository) ListInstances(ctx context.Context) ([]entities.BookInstance, error) {
	var instances []entities.BookInstance
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Author").
		Select("book_instances.*").
		Joins("JOIN books ON books.id = book_instances.book_id").
		Order("books.title ASC, book_instances.imprint ASC").
		Find(&instances).Error
	return instances, err
}

// ListInstancesByBook returns the copies of one book.
func (r *Repository) ListInstancesByBook(ctx context.Context, bookID string) ([]entities.BookInstance, error) {
	var instances []entities.BookInstance
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("imprint ASC").
		Find(&instances).Error
	return instances, err
}

func (r *Repository) GetInstanceByID(ctx context.Context, id string) (*entities.BookInstance, error) {
	var instance entities.BookInstance
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Author").
		Where("id = ?", id).
		First(&instance).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &instance, nil
}

func (r *Repository) CreateInstance(ctx context.Context, instance *entities.BookInstance) error {
	if err := r.db.WithContext(ctx).Omit("Book").Create(instance).Error; err != nil {
		return fmt.Errorf("failed to create book instance: %w", database.Translate(err))
	}
	return nil
}

// CountInstances returns the number of copies.
func (r *Repository) CountInstances(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookInstance{}).Count(&count).Error
	return count, err
}

// CountInstancesByStatus returns the number of copies in the given status.
func (r *Repository) CountInstancesByStatus(ctx context.Context, status entities.BookInstanceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.BookInstance{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
