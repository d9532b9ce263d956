package forms

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/catalog/internal/entities"
)

// AuthorForm is the body of the author create and update forms. Dates are
// optional and use the HTML date input format.
type AuthorForm struct {
	FirstName   string `form:"first_name" json:"first_name"`
	FamilyName  string `form:"family_name" json:"family_name"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth"`
	DateOfDeath string `form:"date_of_death" json:"date_of_death"`
}

var authorFieldOrder = []string{"first_name", "family_name", "date_of_birth", "date_of_death"}

// Validate trims every field, checks the rules and escapes the names in place.
func (f *AuthorForm) Validate() error {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.FamilyName = strings.TrimSpace(f.FamilyName)
	f.DateOfBirth = strings.TrimSpace(f.DateOfBirth)
	f.DateOfDeath = strings.TrimSpace(f.DateOfDeath)

	tooLong := func(field string) string {
		return fmt.Sprintf("%s must be at most %d characters", field, entities.AuthorNameMaxLength)
	}

	err := validation.ValidateStruct(f,
		validation.Field(&f.FirstName,
			validation.Required.Error("First name must be specified"),
			validation.RuneLength(1, entities.AuthorNameMaxLength).Error(tooLong("First name")),
		),
		validation.Field(&f.FamilyName,
			validation.Required.Error("Family name must be specified"),
			validation.RuneLength(1, entities.AuthorNameMaxLength).Error(tooLong("Family name")),
		),
		validation.Field(&f.DateOfBirth,
			validation.Date(entities.FormDateLayout).Error("Invalid date of birth"),
		),
		validation.Field(&f.DateOfDeath,
			validation.Date(entities.FormDateLayout).Error("Invalid date of death"),
		),
	)

	f.FirstName = Escape(f.FirstName)
	f.FamilyName = Escape(f.FamilyName)

	err = fromOzzo(err, authorFieldOrder...)
	if err != nil {
		return err
	}

	birth, death := parseDate(f.DateOfBirth), parseDate(f.DateOfDeath)
	if birth != nil && death != nil && death.Before(*birth) {
		return ValidationErrors{{Field: "date_of_death", Msg: "Date of death must not be before date of birth"}}
	}
	return nil
}

// Author converts the form into an entity. Unparseable dates become nil, so
// call it after Validate.
func (f AuthorForm) Author() entities.Author {
	return entities.Author{
		FirstName:   f.FirstName,
		FamilyName:  f.FamilyName,
		DateOfBirth: parseDate(f.DateOfBirth),
		DateOfDeath: parseDate(f.DateOfDeath),
	}
}

// AuthorFormFrom pre-fills the form from a stored author.
func AuthorFormFrom(a entities.Author) AuthorForm {
	return AuthorForm{
		FirstName:   a.FirstName,
		FamilyName:  a.FamilyName,
		DateOfBirth: entities.FormDate(a.DateOfBirth),
		DateOfDeath: entities.FormDate(a.DateOfDeath),
	}
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(entities.FormDateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
