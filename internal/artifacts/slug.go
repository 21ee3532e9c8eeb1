package artifacts

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug turns a scenario identifier into a lower-case, path-safe file stem:
// "Obrigações" becomes "obrigacoes", "Nav / Agenda" becomes "nav_agenda".
func Slug(id string) string {
	folded, _, err := transform.String(foldDiacritics, id)
	if err != nil {
		folded = id
	}
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '.':
			b.WriteRune(r)
			underscore = false
		default:
			if !underscore && b.Len() > 0 {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	s := strings.Trim(b.String(), "_.")
	if s == "" {
		return "scenario"
	}
	return s
}

// Expand substitutes {id} in a file name template with the slug of id.
// An empty template yields "<slug>.png".
func Expand(template, id string) string {
	if template == "" {
		return Slug(id) + ".png"
	}
	return strings.ReplaceAll(template, "{id}", Slug(id))
}
