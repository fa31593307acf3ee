package utils

import (
	"strings"

	"astrobook/models"
)

// DefaultCoverColorID is the scheme every unknown or missing id resolves to
const DefaultCoverColorID = "default"

// coverSchemes maps a cover color id to its background/text pair.
// The "default" entry must always exist.
var coverSchemes = map[string]models.ColorScheme{
	"default":    {ID: "default", BackgroundColor: "#1b1f3b", TextColor: "#f5e6c8"},
	"midnight":   {ID: "midnight", BackgroundColor: "#0b1026", TextColor: "#e9d8a6"},
	"navy":       {ID: "navy", BackgroundColor: "#14213d", TextColor: "#fca311"},
	"rose":       {ID: "rose", BackgroundColor: "#f4c2c2", TextColor: "#4a1c2b"},
	"blush":      {ID: "blush", BackgroundColor: "#f9e0e3", TextColor: "#5a2a36"},
	"sage":       {ID: "sage", BackgroundColor: "#b2c2a4", TextColor: "#1f2b1a"},
	"emerald":    {ID: "emerald", BackgroundColor: "#0f5132", TextColor: "#f1f7ed"},
	"gold":       {ID: "gold", BackgroundColor: "#d4a72c", TextColor: "#1b1b1b"},
	"lavender":   {ID: "lavender", BackgroundColor: "#c8b6e2", TextColor: "#2e1a47"},
	"plum":       {ID: "plum", BackgroundColor: "#4b2142", TextColor: "#f6e7f2"},
	"terracotta": {ID: "terracotta", BackgroundColor: "#c0583f", TextColor: "#fff5ec"},
	"ivory":      {ID: "ivory", BackgroundColor: "#fbf7ef", TextColor: "#2b2b2b"},
	"black":      {ID: "black", BackgroundColor: "#111111", TextColor: "#e6c47a"},
}

// coverAliases maps alternative spellings to a scheme id
var coverAliases = map[string]string{
	"dark-blue": "navy",
	"darkblue":  "navy",
	"pink":      "rose",
	"green":     "sage",
	"purple":    "lavender",
	"yellow":    "gold",
	"white":     "ivory",
	"cream":     "ivory",
	"orange":    "terracotta",
}

// ResolveColorScheme returns the scheme for an id.
// Input is normalized (trimmed, lowercase, spaces to dashes) before lookup;
// unknown or empty ids resolve to the default scheme.
func ResolveColorScheme(id string) models.ColorScheme {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), " ", "-")
	if alias, ok := coverAliases[key]; ok {
		key = alias
	}
	if scheme, ok := coverSchemes[key]; ok {
		return scheme
	}
	return coverSchemes[DefaultCoverColorID]
}

// GetCoverColor returns the cover background color for an id
func GetCoverColor(id string) string {
	return ResolveColorScheme(id).BackgroundColor
}

// GetCoverTextColor returns the cover text color for an id
func GetCoverTextColor(id string) string {
	return ResolveColorScheme(id).TextColor
}

// CoverColorIDs returns every known scheme id
func CoverColorIDs() []string {
	ids := make([]string, 0, len(coverSchemes))
	for id := range coverSchemes {
		ids = append(ids, id)
	}
	return ids
}
