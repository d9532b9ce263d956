package forms

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/catalog/internal/entities"
)

// Messages shown for an empty genre name.
const (
	GenreNameRequiredOnCreate = "Genre name required"
	GenreNameRequiredOnUpdate = "Name can not be blank"
)

// GenreForm is the body of the genre create and update forms.
type GenreForm struct {
	Name string `form:"name" json:"name"`
}

// Validate trims the name, checks it and escapes it in place. The escaped
// value is kept even when validation fails so the form can be redisplayed.
func (f *GenreForm) Validate(requiredMsg string) error {
	f.Name = strings.TrimSpace(f.Name)

	err := validation.ValidateStruct(f,
		validation.Field(&f.Name,
			validation.Required.Error(requiredMsg),
			validation.RuneLength(1, entities.GenreNameMaxLength).
				Error(fmt.Sprintf("Genre name must be at most %d characters", entities.GenreNameMaxLength)),
		),
	)

	f.Name = Escape(f.Name)
	return fromOzzo(err, "name")
}

// Genre returns the entity view of the form for redisplay.
func (f GenreForm) Genre() entities.Genre {
	return entities.Genre{Name: f.Name}
}
