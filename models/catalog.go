package models

import (
	"fmt"
	"strings"
)

// SectionKind identifies which variant a Section holds
type SectionKind string

const (
	SectionHeading      SectionKind = "heading"
	SectionParagraph    SectionKind = "paragraph"
	SectionList         SectionKind = "list"
	SectionPreformatted SectionKind = "preformatted"
)

// Section is one content block of a page.
// Heading uses Level, Text and ClassName; Paragraph uses Text and ClassName;
// List uses Ordered, Title and Items; Preformatted uses Text.
// Only Text and Items may carry personalization tokens.
type Section struct {
	Kind      SectionKind `json:"kind" yaml:"kind"`
	Level     int         `json:"level,omitempty" yaml:"level,omitempty"`
	Text      string      `json:"text,omitempty" yaml:"text,omitempty"`
	ClassName string      `json:"className,omitempty" yaml:"class,omitempty"`
	Ordered   bool        `json:"ordered,omitempty" yaml:"ordered,omitempty"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	Items     []string    `json:"items,omitempty" yaml:"items,omitempty"`
}

// Heading builds a heading section
func Heading(level int, text, className string) Section {
	return Section{Kind: SectionHeading, Level: level, Text: text, ClassName: className}
}

// Paragraph builds a paragraph section
func Paragraph(text, className string) Section {
	return Section{Kind: SectionParagraph, Text: text, ClassName: className}
}

// List builds a list section
func List(ordered bool, title string, items ...string) Section {
	return Section{Kind: SectionList, Ordered: ordered, Title: title, Items: items}
}

// Preformatted builds a preformatted section
func Preformatted(text string) Section {
	return Section{Kind: SectionPreformatted, Text: text}
}

// Validate checks that only the fields of the section's variant are set
func (s Section) Validate() error {
	switch s.Kind {
	case SectionHeading:
		if s.Level < 1 || s.Level > 6 {
			return fmt.Errorf("heading level must be between 1 and 6, got %d", s.Level)
		}
		if s.Ordered || s.Title != "" || len(s.Items) > 0 {
			return fmt.Errorf("heading must not carry list fields")
		}
	case SectionParagraph:
		if s.Level != 0 || s.Ordered || s.Title != "" || len(s.Items) > 0 {
			return fmt.Errorf("paragraph must only carry text and class")
		}
	case SectionList:
		if s.Text != "" || s.Level != 0 || s.ClassName != "" {
			return fmt.Errorf("list must only carry ordered, title and items")
		}
		if len(s.Items) == 0 {
			return fmt.Errorf("list must have at least one item")
		}
	case SectionPreformatted:
		if s.Level != 0 || s.ClassName != "" || s.Ordered || s.Title != "" || len(s.Items) > 0 {
			return fmt.Errorf("preformatted must only carry text")
		}
	default:
		return fmt.Errorf("unknown section kind %q", s.Kind)
	}
	return nil
}

// Clone returns a copy that shares no slices with s
func (s Section) Clone() Section {
	if s.Items != nil {
		s.Items = append([]string(nil), s.Items...)
	}
	return s
}

// PageTemplate is one compiled-in page definition.
// Number is unique across the catalog and defines document order;
// TemplateID selects the render routine.
type PageTemplate struct {
	Number       int              `json:"number" yaml:"number"`
	TemplateID   string           `json:"templateId" yaml:"template"`
	Background   string           `json:"background,omitempty" yaml:"background,omitempty"`
	Illustration string           `json:"illustration,omitempty" yaml:"illustration,omitempty"`
	Fallbacks    map[Token]string `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
	Sections     []Section        `json:"sections" yaml:"sections"`
}

// Validate checks the template's own invariants
func (p PageTemplate) Validate() error {
	if p.Number < 1 {
		return fmt.Errorf("page number must be positive, got %d", p.Number)
	}
	if strings.TrimSpace(p.TemplateID) == "" {
		return fmt.Errorf("page %d: template id is required", p.Number)
	}
	for token := range p.Fallbacks {
		if !token.Known() {
			return fmt.Errorf("page %d: fallback for unknown token %q", p.Number, token)
		}
	}
	for i, section := range p.Sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("page %d section %d: %w", p.Number, i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the template
func (p PageTemplate) Clone() PageTemplate {
	p.Sections = cloneSections(p.Sections)
	if p.Fallbacks != nil {
		fallbacks := make(map[Token]string, len(p.Fallbacks))
		for k, v := range p.Fallbacks {
			fallbacks[k] = v
		}
		p.Fallbacks = fallbacks
	}
	return p
}

// PageData is the runtime, possibly personalized, representation of one page
type PageData struct {
	Number       int              `json:"number"`
	TemplateID   string           `json:"templateId"`
	Background   string           `json:"background,omitempty"`
	TextColor    string           `json:"textColor,omitempty"`
	Illustration string           `json:"illustration,omitempty"` // data URI
	Fallbacks    map[Token]string `json:"-"`
	Sections     []Section        `json:"sections"`
}

// NewPageData copies a template into a fresh PageData
func NewPageData(t PageTemplate) PageData {
	t = t.Clone()
	return PageData{
		Number:     t.Number,
		TemplateID: t.TemplateID,
		Background: t.Background,
		Fallbacks:  t.Fallbacks,
		Sections:   t.Sections,
	}
}

// Clone returns a deep copy of the page
func (p PageData) Clone() PageData {
	p.Sections = cloneSections(p.Sections)
	return p
}

func cloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// AvailablePageSet is the ordered subset of page numbers included in one build
type AvailablePageSet []int

// Contains reports whether n is part of the set
func (s AvailablePageSet) Contains(n int) bool {
	return s.IndexOf(n) >= 0
}

// IndexOf returns the position of n in the set, or -1
func (s AvailablePageSet) IndexOf(n int) int {
	for i, p := range s {
		if p == n {
			return i
		}
	}
	return -1
}

// CatalogSummary describes the catalog for API consumers
type CatalogSummary struct {
	TotalPages int              `json:"totalPages"`
	Scopes     map[string][]int `json:"scopes"`
}
