package viewer

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"astrobook/renderer"
)

//go:embed assets/viewer.css
var viewerCSS string

//go:embed assets/viewer.js
var viewerJS string

var documentTemplate = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.PageCSS}}</style>
<style>{{.ViewerCSS}}</style>
</head>
<body>
<header class="viewer-toolbar">
<span class="viewer-title">{{.Title}}</span>
<span class="viewer-indicator" data-viewer-indicator aria-live="polite"></span>
<div class="viewer-controls">
<button type="button" data-viewer-step="-1" aria-label="Previous page">&#8593;</button>
<button type="button" data-viewer-step="1" aria-label="Next page">&#8595;</button>
<form class="viewer-jump" data-viewer-jump>
<input type="number" min="1" name="page" aria-label="Page number">
<button type="submit">Go</button>
</form>
</div>
</header>
<main class="viewer-pages" data-viewer data-initial-page="{{.InitialPage}}" data-debounce-ms="{{.DebounceMS}}"{{with .SyncURL}} data-sync-url="{{.}}"{{end}}>
{{range .Pages}}{{.HTML}}
{{end}}</main>
<script>{{.Script}}</script>
</body>
</html>
`))

// DocumentOptions configures the viewer shell
type DocumentOptions struct {
	Title       string
	InitialPage int
	Debounce    int // milliseconds; DefaultDebounce when 0
	// SyncURL receives {"page": N} whenever the current page settles
	SyncURL string
}

// RenderDocument mounts interactive pages into one scrollable HTML document
func RenderDocument(pages []renderer.RenderedPage, opts DocumentOptions) (string, error) {
	if len(pages) == 0 {
		return "", fmt.Errorf("viewer document needs at least one page")
	}
	for _, p := range pages {
		if p.Mode != renderer.Interactive {
			return "", fmt.Errorf("page %d was rendered in %s mode, want %s", p.Number, p.Mode, renderer.Interactive)
		}
	}

	if opts.Title == "" {
		opts.Title = "Your Astrology Book"
	}
	if opts.InitialPage == 0 {
		opts.InitialPage = pages[0].Number
	}
	if opts.Debounce <= 0 {
		opts.Debounce = int(DefaultDebounce.Milliseconds())
	}

	var buf bytes.Buffer
	err := documentTemplate.Execute(&buf, struct {
		Title       string
		InitialPage int
		DebounceMS  int
		SyncURL     string
		PageCSS     template.CSS
		ViewerCSS   template.CSS
		Script      template.JS
		Pages       []renderer.RenderedPage
	}{
		Title:       opts.Title,
		InitialPage: opts.InitialPage,
		DebounceMS:  opts.Debounce,
		SyncURL:     opts.SyncURL,
		PageCSS:     template.CSS(renderer.PageStyles()),
		ViewerCSS:   template.CSS(viewerCSS),
		Script:      template.JS(viewerJS),
		Pages:       pages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render viewer document: %w", err)
	}
	return buf.String(), nil
}
