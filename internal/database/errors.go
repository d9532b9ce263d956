package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateName = errors.New("name already exists")
	ErrHasDependents = errors.New("record has dependent books")
)

// DependentsError is returned when a delete is refused because books still
// reference the record. It matches ErrHasDependents with errors.Is.
type DependentsError struct {
	Kind  string
	ID    string
	Books []entities.Book
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("%s %s is referenced by %d book(s)", e.Kind, e.ID, len(e.Books))
}

func (e *DependentsError) Unwrap() error {
	return ErrHasDependents
}

// Translate maps gorm errors onto the package sentinels.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicateName, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", ErrHasDependents, err)
	}
	return err
}
