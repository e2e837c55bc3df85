package helpers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the groups.slug column.
const MaxSlugLength = 50

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSpaces   = regexp.MustCompile(`[-\s]+`)
)

// Slugify turns a title into a URL-safe slug: accents are stripped, anything
// that is not an ASCII letter, digit, underscore or hyphen is dropped, and
// runs of spaces and hyphens collapse into one hyphen. The result may be
// empty for titles without any Latin characters.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	plain = nonSlugChars.ReplaceAllString(strings.ToLower(plain), "")
	plain = slugSpaces.ReplaceAllString(strings.TrimSpace(plain), "-")
	plain = strings.Trim(plain, "-_")

	if len(plain) > MaxSlugLength {
		plain = strings.TrimRight(plain[:MaxSlugLength], "-_")
	}
	return plain
}
