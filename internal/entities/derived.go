package entities

import (
	"strconv"
	"time"
)

// Derived fields are computed from the entity passed in and are never stored.
// Each function returns an empty string when a required sub-field is missing.

// LifespanUnknown is returned by AuthorLifespan when either date is absent.
const LifespanUnknown = "unknown"

// DisplayDateLayout is the layout used for dates rendered in the views.
const DisplayDateLayout = "Jan 2, 2006"

// FormDateLayout is the layout of dates submitted by and pre-filled into forms.
const FormDateLayout = "2006-01-02"

func GenreURL(g Genre) string {
	if g.ID == "" {
		return ""
	}
	return "/catalog/genre/" + g.ID
}

func AuthorURL(a Author) string {
	if a.ID == "" {
		return ""
	}
	return "/catalog/author/" + a.ID
}

func BookURL(b Book) string {
	if b.ID == "" {
		return ""
	}
	return "/catalog/book/" + b.ID
}

func BookInstanceURL(bi BookInstance) string {
	if bi.ID == "" {
		return ""
	}
	return "/catalog/bookinstance/" + bi.ID
}

// AuthorName renders "family, first", or "" unless both parts are present.
func AuthorName(a Author) string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// AuthorLifespan is the difference between the death and birth years.
func AuthorLifespan(a Author) string {
	if a.DateOfBirth == nil || a.DateOfDeath == nil {
		return LifespanUnknown
	}
	return strconv.Itoa(a.DateOfDeath.Year() - a.DateOfBirth.Year())
}

// FormatDate renders an optional date for display.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}

// FormDate renders an optional date as a form input value.
func FormDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(FormDateLayout)
}
