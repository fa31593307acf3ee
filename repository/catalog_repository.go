package repository

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"astrobook/models"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

// catalogFile is the on-disk shape of the embedded catalog
type catalogFile struct {
	Scopes map[string][]int      `yaml:"scopes"`
	Pages  []models.PageTemplate `yaml:"pages"`
}

// TemplateCatalog is the process-wide, read-only registry of page templates.
// It is built once and never mutated, so it is safe for concurrent use.
type TemplateCatalog struct {
	pages  []models.PageTemplate // ascending by number
	index  map[int]int
	scopes map[string]models.AvailablePageSet
}

// Ensure TemplateCatalog implements TemplateCatalogInterface
var _ TemplateCatalogInterface = (*TemplateCatalog)(nil)

var loadDefaultCatalog = sync.OnceValues(func() (*TemplateCatalog, error) {
	return ParseCatalog(catalogYAML)
})

// DefaultCatalog returns the compiled-in catalog, parsed on first use
func DefaultCatalog() (*TemplateCatalog, error) {
	return loadDefaultCatalog()
}

// ParseCatalog builds a catalog from its YAML definition
func ParseCatalog(data []byte) (*TemplateCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewTemplateCatalog(file.Pages, file.Scopes)
}

// NewTemplateCatalog validates the templates and named scopes and builds the catalog.
// Templates may be given in any order; page numbers must be unique.
func NewTemplateCatalog(pages []models.PageTemplate, scopes map[string][]int) (*TemplateCatalog, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("catalog has no pages")
	}

	c := &TemplateCatalog{
		pages:  make([]models.PageTemplate, 0, len(pages)),
		index:  make(map[int]int, len(pages)),
		scopes: make(map[string]models.AvailablePageSet, len(scopes)+1),
	}

	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid page template: %w", err)
		}
		if seen[p.Number] {
			return nil, fmt.Errorf("duplicate page number %d", p.Number)
		}
		seen[p.Number] = true
		c.pages = append(c.pages, p.Clone())
	}
	sort.Slice(c.pages, func(i, j int) bool {
		return c.pages[i].Number < c.pages[j].Number
	})

	all := make(models.AvailablePageSet, len(c.pages))
	for i, p := range c.pages {
		c.index[p.Number] = i
		all[i] = p.Number
	}
	c.scopes[models.ScopeAll] = all

	for name, list := range scopes {
		if name == models.ScopeAll {
			return nil, fmt.Errorf("scope %q is reserved", models.ScopeAll)
		}
		set, err := c.validatePageSet(list)
		if err != nil {
			return nil, fmt.Errorf("scope %q: %w", name, err)
		}
		c.scopes[name] = set
	}

	return c, nil
}

// GetAvailablePages returns the ordered page numbers for a scope.
// This is the only way callers obtain a page subset, so numbering stays
// consistent across builds.
func (c *TemplateCatalog) GetAvailablePages(scope models.Scope) (models.AvailablePageSet, error) {
	if scope.IsExplicit() {
		return c.validatePageSet(scope.Pages)
	}
	name := scope.Name
	if name == "" {
		name = models.ScopeAll
	}
	set, ok := c.scopes[name]
	if !ok {
		return nil, &models.UnknownScopeError{Scope: name}
	}
	return append(models.AvailablePageSet(nil), set...), nil
}

// GetPage returns a copy of the template registered under number
func (c *TemplateCatalog) GetPage(number int) (models.PageTemplate, error) {
	i, ok := c.index[number]
	if !ok {
		return models.PageTemplate{}, &models.PageNotFoundError{PageNumber: number}
	}
	return c.pages[i].Clone(), nil
}

// Len returns the total number of pages in the catalog
func (c *TemplateCatalog) Len() int {
	return len(c.pages)
}

// TemplateIDs returns the distinct template ids used by the catalog, sorted
func (c *TemplateCatalog) TemplateIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range c.pages {
		if !seen[p.TemplateID] {
			seen[p.TemplateID] = true
			ids = append(ids, p.TemplateID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Summary describes the catalog and its named scopes
func (c *TemplateCatalog) Summary() models.CatalogSummary {
	scopes := make(map[string][]int, len(c.scopes))
	for name, set := range c.scopes {
		scopes[name] = append([]int(nil), set...)
	}
	return models.CatalogSummary{
		TotalPages: len(c.pages),
		Scopes:     scopes,
	}
}

func (c *TemplateCatalog) validatePageSet(pages []int) (models.AvailablePageSet, error) {
	if len(pages) == 0 {
		return nil, &models.InvalidPageSetError{Pages: pages, Reason: "empty"}
	}
	if len(pages) > len(c.pages) {
		return nil, &models.InvalidPageSetError{Reason: fmt.Sprintf("%d pages requested, catalog has %d", len(pages), len(c.pages))}
	}
	set := make(models.AvailablePageSet, len(pages))
	for i, p := range pages {
		if i > 0 && p <= pages[i-1] {
			reason := "pages must be strictly increasing"
			if p == pages[i-1] {
				reason = fmt.Sprintf("duplicate page %d", p)
			}
			return nil, &models.InvalidPageSetError{Pages: append([]int(nil), pages...), Reason: reason}
		}
		if _, ok := c.index[p]; !ok {
			return nil, &models.PageNotFoundError{PageNumber: p}
		}
		set[i] = p
	}
	return set, nil
}
