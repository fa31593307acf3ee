package service

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"astrobook/models"
)

// defaultFallbacks is the text substituted for a token the user did not supply
// and the page does not override
var defaultFallbacks = map[models.Token]string{
	models.TokenName:       "Your Name",
	models.TokenFirstName:  "Your First Name",
	models.TokenLastName:   "Your Last Name",
	models.TokenBirthDate:  "Your Birth Date",
	models.TokenBirthTime:  "Your Birth Time",
	models.TokenBirthPlace: "Your Birth Place",
	models.TokenCoverColor: "default",
	models.TokenGender:     "Your Gender",
	models.TokenSunSign:    "Your Sun Sign",
	models.TokenMoonSign:   "Your Moon Sign",
	models.TokenRisingSign: "Your Rising Sign",
}

// DefaultFallback returns the global fallback text for a token
func DefaultFallback(t models.Token) string {
	return defaultFallbacks[t]
}

// FallbackApplied records one token of one page that was filled with fallback text
type FallbackApplied struct {
	Page  int          `json:"page"`
	Token models.Token `json:"token"`
	Value string       `json:"value"`
}

// FallbackReport lists every fallback substitution of a build, in page order
type FallbackReport []FallbackApplied

// Tokens returns the distinct tokens that fell back, in first-seen order
func (r FallbackReport) Tokens() []models.Token {
	seen := make(map[models.Token]bool)
	var out []models.Token
	for _, f := range r {
		if !seen[f.Token] {
			seen[f.Token] = true
			out = append(out, f.Token)
		}
	}
	return out
}

// markerUnwrapper strips the braces of every known token marker
var markerUnwrapper = func() *strings.Replacer {
	pairs := make([]string, 0, len(models.Tokens)*2)
	for _, t := range models.Tokens {
		pairs = append(pairs, t.Marker(), string(t))
	}
	return strings.NewReplacer(pairs...)
}()

// unwrapMarkers removes known token markers until none are left, so substituted
// text can never be picked up by a later pass
func unwrapMarkers(s string) string {
	for strings.Contains(s, "{") {
		next := markerUnwrapper.Replace(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// PersonalizePages substitutes user values into the Text of every heading,
// paragraph and preformatted section and into every list item. Missing values
// use the page's fallback, then the global default. Unknown {curly} text is
// left untouched. The input is not modified; output order equals input order.
// Applying it twice with the same user yields the same pages.
func PersonalizePages(pages []models.PageData, user models.UserData) ([]models.PageData, FallbackReport) {
	out := make([]models.PageData, len(pages))
	reports := make([]FallbackReport, len(pages))

	var g errgroup.Group
	for i := range pages {
		g.Go(func() error {
			out[i], reports[i] = personalizePage(pages[i], user)
			return nil
		})
	}
	_ = g.Wait()

	var report FallbackReport
	for _, r := range reports {
		report = append(report, r...)
	}
	return out, report
}

func personalizePage(page models.PageData, user models.UserData) (models.PageData, FallbackReport) {
	page = page.Clone()

	used := usedTokens(page.Sections)
	if len(used) == 0 {
		return page, nil
	}

	var report FallbackReport
	pairs := make([]string, 0, len(used)*2)
	for _, t := range used {
		value := user.Value(t)
		if value == "" {
			value = page.Fallbacks[t]
			if strings.TrimSpace(value) == "" {
				value = defaultFallbacks[t]
			}
			report = append(report, FallbackApplied{Page: page.Number, Token: t, Value: value})
		}
		pairs = append(pairs, t.Marker(), value)
	}
	replacer := strings.NewReplacer(pairs...)

	substitute := func(s string) string {
		if !strings.Contains(s, "{") {
			return s
		}
		return unwrapMarkers(replacer.Replace(s))
	}

	for i := range page.Sections {
		s := &page.Sections[i]
		switch s.Kind {
		case models.SectionList:
			for j := range s.Items {
				s.Items[j] = substitute(s.Items[j])
			}
		default:
			s.Text = substitute(s.Text)
		}
	}

	return page, report
}

// usedTokens returns the known tokens occurring in substitutable text, in vocabulary order
func usedTokens(sections []models.Section) []models.Token {
	var used []models.Token
	for _, t := range models.Tokens {
		marker := t.Marker()
		if sectionsContain(sections, marker) {
			used = append(used, t)
		}
	}
	return used
}

func sectionsContain(sections []models.Section, marker string) bool {
	for _, s := range sections {
		if s.Kind == models.SectionList {
			for _, item := range s.Items {
				if strings.Contains(item, marker) {
					return true
				}
			}
			continue
		}
		if strings.Contains(s.Text, marker) {
			return true
		}
	}
	return false
}
