package forms

import "strings"

// Same character set as the validator.js escape() sanitizer, so stored
// values stay byte-compatible with records written by earlier versions.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces HTML-significant characters with entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}
