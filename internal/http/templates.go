package http

import (
	"fmt"
	"html/template"

	"github.com/mrlokans/catalog/internal/entities"
)

// templateFuncs exposes the derived entity fields to the views. Names, titles
// and imprints are escaped before they are stored, so "stored" marks them as
// already safe instead of escaping them a second time.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"genreURL":        entities.GenreURL,
		"authorURL":       entities.AuthorURL,
		"bookURL":         entities.BookURL,
		"bookInstanceURL": entities.BookInstanceURL,
		"authorName":      entities.AuthorName,
		"lifespan":        entities.AuthorLifespan,
		"formatDate":      entities.FormatDate,
		"formDate":        entities.FormDate,
		"stored": func(s string) template.HTML {
			return template.HTML(s)
		},
		"dueBack": func(bi entities.BookInstance) string {
			return entities.FormatDate(&bi.DueBack)
		},
	}
}

// LoadTemplates parses every *.html file under path with the view helpers.
func LoadTemplates(path string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseGlob(path + "/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates in %s: %w", path, err)
	}
	return tmpl, nil
}
