package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"astrobook/models"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

//go:embed styles/pages.css
var pageStyles string

// Mode selects the container a page is rendered into
type Mode int

const (
	// Interactive renders a page for the scrollable viewer
	Interactive Mode = iota
	// StaticHTML renders a self-contained block for the print document
	StaticHTML
)

func (m Mode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case StaticHTML:
		return "static"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// PageTemplateIDs lists the template ids the default registry renders
var PageTemplateIDs = []string{
	"cover",
	"title",
	"personal-details",
	"toc",
	"chapter-opener",
	"prose",
	"sign-profile",
	"list",
	"quote",
	"chart-table",
	"illustration",
	"closing",
	"back-cover",
}

// Static pages are A4 with a forced break after each one
const staticGeometry = "width:210mm;height:297mm;page-break-after:always;break-after:page;"

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9.,\s%]+\))$`)

// RenderedPage is the HTML of one page in one mode
type RenderedPage struct {
	Number     int
	TemplateID string
	Mode       Mode
	HTML       template.HTML
}

// RenderFunc writes the body of a page. The body must not depend on the mode.
type RenderFunc func(w io.Writer, page models.PageData) error

// Registry dispatches pages to their render routine by template id
type Registry struct {
	funcs map[string]RenderFunc
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]RenderFunc)}
}

var templateFuncs = template.FuncMap{
	"upper":           strings.ToUpper,
	"illustrationURL": illustrationURL,
}

var chrome = template.Must(template.New("chrome").Funcs(templateFuncs).ParseFS(templatesFS, "templates/page.gohtml"))

var loadDefaultRegistry = sync.OnceValues(func() (*Registry, error) {
	tmpl, err := template.New("pages").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	r := NewRegistry()
	for _, id := range PageTemplateIDs {
		if tmpl.Lookup(id) == nil {
			return nil, fmt.Errorf("page template %q is not defined", id)
		}
		r.Register(id, templateRenderFunc(tmpl, id))
	}
	return r, nil
})

// DefaultRegistry returns the registry built from the embedded page templates
func DefaultRegistry() (*Registry, error) {
	return loadDefaultRegistry()
}

func templateRenderFunc(tmpl *template.Template, name string) RenderFunc {
	return func(w io.Writer, page models.PageData) error {
		return tmpl.ExecuteTemplate(w, name, page)
	}
}

// Register adds or replaces the render routine of a template id
func (r *Registry) Register(templateID string, fn RenderFunc) {
	r.funcs[templateID] = fn
}

// Has reports whether a template id has a render routine
func (r *Registry) Has(templateID string) bool {
	_, ok := r.funcs[templateID]
	return ok
}

// TemplateIDs returns the registered template ids, sorted
func (r *Registry) TemplateIDs() []string {
	ids := make([]string, 0, len(r.funcs))
	for id := range r.funcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Check fails with UnregisteredTemplateError on the first page without a render routine
func (r *Registry) Check(pages []models.PageData) error {
	for _, p := range pages {
		if !r.Has(p.TemplateID) {
			return &models.UnregisteredTemplateError{TemplateID: p.TemplateID}
		}
	}
	return nil
}

// Render renders one page in the given mode
func (r *Registry) Render(page models.PageData, mode Mode) (RenderedPage, error) {
	fn, ok := r.funcs[page.TemplateID]
	if !ok {
		return RenderedPage{}, &models.UnregisteredTemplateError{TemplateID: page.TemplateID}
	}

	var body bytes.Buffer
	if err := fn(&body, page); err != nil {
		return RenderedPage{}, fmt.Errorf("failed to render page %d (%s): %w", page.Number, page.TemplateID, err)
	}

	container := "interactive-page"
	style := colorStyle(page)
	switch mode {
	case Interactive:
	case StaticHTML:
		container = "static-page"
		style = staticGeometry + style
	default:
		return RenderedPage{}, fmt.Errorf("unknown render mode %v", mode)
	}

	var out bytes.Buffer
	err := chrome.ExecuteTemplate(&out, container, struct {
		Page  models.PageData
		Style template.CSS
		Body  template.HTML
	}{
		Page:  page,
		Style: template.CSS(style),
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return RenderedPage{}, fmt.Errorf("failed to wrap page %d: %w", page.Number, err)
	}

	return RenderedPage{
		Number:     page.Number,
		TemplateID: page.TemplateID,
		Mode:       mode,
		HTML:       template.HTML(out.String()),
	}, nil
}

// RenderAll renders every page in order. Template ids are checked before any
// page is rendered, so an unregistered id yields no output at all.
func (r *Registry) RenderAll(pages []models.PageData, mode Mode) ([]RenderedPage, error) {
	if err := r.Check(pages); err != nil {
		return nil, err
	}
	out := make([]RenderedPage, 0, len(pages))
	for _, p := range pages {
		rendered, err := r.Render(p, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

// PageStyles returns the stylesheet for rendered page bodies
func PageStyles() string {
	return pageStyles
}

// SafeColor returns c when it is a plain CSS color, "" otherwise
func SafeColor(c string) string {
	c = strings.TrimSpace(c)
	if colorPattern.MatchString(c) {
		return c
	}
	return ""
}

func colorStyle(page models.PageData) string {
	var b strings.Builder
	if bg := SafeColor(page.Background); bg != "" {
		b.WriteString("background:" + bg + ";")
	}
	if fg := SafeColor(page.TextColor); fg != "" {
		b.WriteString("color:" + fg + ";")
	}
	return b.String()
}

// illustrationURL only lets embedded image data through
func illustrationURL(uri string) template.URL {
	if strings.HasPrefix(uri, "data:image/") {
		return template.URL(uri)
	}
	return ""
}
