package utils

import (
	"regexp"
	"strings"

	"astrobook/models"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with single dashes.
// Accented latin letters are folded to their base letter.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = accentFolder.Replace(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "ö", "o", "õ", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ñ", "n", "ç", "c",
)

// BookFilename builds the download name of a PDF, e.g. astrology-book-alex-pisces.pdf.
// When the user has neither a name nor a sun sign, fallbackID is used instead.
func BookFilename(user models.UserData, fallbackID string) string {
	parts := []string{"astrology-book"}
	if name := Slugify(user.Value(models.TokenName)); name != "" {
		parts = append(parts, name)
	}
	if sign := Slugify(user.SunSign); sign != "" {
		parts = append(parts, sign)
	}
	if len(parts) == 1 {
		if id := Slugify(fallbackID); id != "" {
			parts = append(parts, id)
		}
	}
	return strings.Join(parts, "-") + ".pdf"
}
