package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ScopeAll names the full document
const ScopeAll = "all"

// MaxScopePages caps how many pages an explicit page list may name
const MaxScopePages = 1000

func tooManyPages() error {
	return &InvalidPageSetError{Reason: fmt.Sprintf("more than %d pages requested", MaxScopePages)}
}

// Scope selects the pages of one build: either a named scope defined by the
// catalog or an explicit page list (admin preview).
type Scope struct {
	Name  string `json:"name,omitempty"`
	Pages []int  `json:"pages,omitempty"`
}

// NamedScope returns a scope referencing a catalog-defined page set
func NamedScope(name string) Scope {
	return Scope{Name: name}
}

// PageListScope returns a scope over an explicit page list
func PageListScope(pages ...int) Scope {
	return Scope{Pages: pages}
}

// IsExplicit reports whether the scope is an explicit page list
func (s Scope) IsExplicit() bool {
	return s.Name == "" && len(s.Pages) > 0
}

func (s Scope) String() string {
	if s.IsExplicit() {
		parts := make([]string, len(s.Pages))
		for i, p := range s.Pages {
			parts[i] = strconv.Itoa(p)
		}
		return strings.Join(parts, ",")
	}
	if s.Name == "" {
		return ScopeAll
	}
	return s.Name
}

// ParseScope parses "all", a scope name, or a page list such as "1,5,41" or "1-4,41".
// Ranges are expanded in the order written; ordering is validated by the catalog.
func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NamedScope(ScopeAll), nil
	}
	if raw[0] < '0' || raw[0] > '9' {
		return NamedScope(strings.ToLower(raw)), nil
	}

	var pages []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return Scope{}, fmt.Errorf("invalid page range %q: %w", part, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return Scope{}, fmt.Errorf("invalid page range %q: %w", part, err)
			}
			if end < start {
				return Scope{}, fmt.Errorf("invalid page range %q: end before start", part)
			}
			if end-start >= MaxScopePages-len(pages) {
				return Scope{}, tooManyPages()
			}
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return Scope{}, fmt.Errorf("invalid page number %q: %w", part, err)
		}
		if len(pages) >= MaxScopePages {
			return Scope{}, tooManyPages()
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return Scope{}, fmt.Errorf("page list %q is empty", raw)
	}
	return PageListScope(pages...), nil
}
