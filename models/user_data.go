package models

import "strings"

// Token is a personalization slot name, written as {token} in template text
type Token string

const (
	TokenName       Token = "name"
	TokenFirstName  Token = "firstName"
	TokenLastName   Token = "lastName"
	TokenBirthDate  Token = "birthDate"
	TokenBirthTime  Token = "birthTime"
	TokenBirthPlace Token = "birthPlace"
	TokenCoverColor Token = "coverColor"
	TokenGender     Token = "gender"
	TokenSunSign    Token = "sunSign"
	TokenMoonSign   Token = "moonSign"
	TokenRisingSign Token = "risingSign"
)

// Tokens lists the closed token vocabulary
var Tokens = []Token{
	TokenName,
	TokenFirstName,
	TokenLastName,
	TokenBirthDate,
	TokenBirthTime,
	TokenBirthPlace,
	TokenCoverColor,
	TokenGender,
	TokenSunSign,
	TokenMoonSign,
	TokenRisingSign,
}

// Known reports whether t belongs to the vocabulary
func (t Token) Known() bool {
	for _, known := range Tokens {
		if t == known {
			return true
		}
	}
	return false
}

// Marker returns the literal text of the token inside a template
func (t Token) Marker() string {
	return "{" + string(t) + "}"
}

// UserData is the flat record a build is personalized with.
// Every field is optional and already formatted for display.
type UserData struct {
	Name       string `json:"name,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	BirthDate  string `json:"birthDate,omitempty"`
	BirthTime  string `json:"birthTime,omitempty"`
	BirthPlace string `json:"birthPlace,omitempty"`
	CoverColor string `json:"coverColor,omitempty"`
	Gender     string `json:"gender,omitempty"`
	SunSign    string `json:"sunSign,omitempty"`
	MoonSign   string `json:"moonSign,omitempty"`
	RisingSign string `json:"risingSign,omitempty"`
}

// Value returns the trimmed value for a token, "" when the user did not supply it.
// The name token falls back to first and last name.
func (u UserData) Value(t Token) string {
	switch t {
	case TokenName:
		if name := strings.TrimSpace(u.Name); name != "" {
			return name
		}
		return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	case TokenFirstName:
		return strings.TrimSpace(u.FirstName)
	case TokenLastName:
		return strings.TrimSpace(u.LastName)
	case TokenBirthDate:
		return strings.TrimSpace(u.BirthDate)
	case TokenBirthTime:
		return strings.TrimSpace(u.BirthTime)
	case TokenBirthPlace:
		return strings.TrimSpace(u.BirthPlace)
	case TokenCoverColor:
		return strings.TrimSpace(u.CoverColor)
	case TokenGender:
		return strings.TrimSpace(u.Gender)
	case TokenSunSign:
		return strings.TrimSpace(u.SunSign)
	case TokenMoonSign:
		return strings.TrimSpace(u.MoonSign)
	case TokenRisingSign:
		return strings.TrimSpace(u.RisingSign)
	}
	return ""
}

// ColorScheme is a cover theme: background and text color pair
type ColorScheme struct {
	ID              string `json:"id"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
}
