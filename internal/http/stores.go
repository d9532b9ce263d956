package http

import (
	"context"

	"github.com/mrlokans/catalog/internal/entities"
)

// Each controller depends only on the store methods it calls. The
// repositories under internal/database satisfy these interfaces; tests use
// hand-written mocks.

// GenreStore provides read and write access to genres.
type GenreStore interface {
	List(ctx context.Context) ([]entities.Genre, error)
	GetByID(ctx context.Context, id string) (*entities.Genre, error)
	CreateIfAbsent(ctx context.Context, name string) (*entities.Genre, bool, error)
	UpdateName(ctx context.Context, id, name string) (*entities.Genre, error)
	Delete(ctx context.Context, id string) error
}

// AuthorStore provides read and write access to authors.
type AuthorStore interface {
	List(ctx context.Context) ([]entities.Author, error)
	GetByID(ctx context.Context, id string) (*entities.Author, error)
	Create(ctx context.Context, author *entities.Author) error
	Update(ctx context.Context, author *entities.Author) error
	Delete(ctx context.Context, id string) error
}

// GenreBookLister returns the books filed under a genre.
type GenreBookLister interface {
	ListByGenre(ctx context.Context, genreID string) ([]entities.Book, error)
}

// AuthorBookLister returns the books written by an author.
type AuthorBookLister interface {
	ListByAuthor(ctx context.Context, authorID string) ([]entities.Book, error)
}

// BookStore provides read access to books and their copies.
type BookStore interface {
	List(ctx context.Context) ([]entities.Book, error)
	GetByID(ctx context.Context, id string) (*entities.Book, error)
	ListInstances(ctx context.Context) ([]entities.BookInstance, error)
	ListInstancesByBook(ctx context.Context, bookID string) ([]entities.BookInstance, error)
	GetInstanceByID(ctx context.Context, id string) (*entities.BookInstance, error)
}

// Counter is implemented by every repository that can report its size.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// InstanceCounter reports how many copies exist in total and per status.
type InstanceCounter interface {
	CountInstances(ctx context.Context) (int64, error)
	CountInstancesByStatus(ctx context.Context, status entities.BookInstanceStatus) (int64, error)
}
