package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"time"

	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/renderer"
)

// DefaultPDFTimeout bounds one export when no timeout is configured
const DefaultPDFTimeout = 60 * time.Second

// pdfPageSelector matches one printed page block
const pdfPageSelector = ".pdf-page"

// pdfPageObject matches a page object of the page tree, not the /Pages node
var pdfPageObject = regexp.MustCompile(`/Type\s*/Page\b`)

// countPDFPages counts the page objects of an uncompressed page tree.
// It returns 0 when the page dictionaries are not readable as plain text.
func countPDFPages(data []byte) int {
	return len(pdfPageObject.FindAllIndex(data, -1))
}

// Browser acquires an isolated headless browser
type Browser interface {
	Open(ctx context.Context) (BrowserSession, error)
}

// BrowserSession is one acquired browser. Close must be called exactly once.
type BrowserSession interface {
	// Load replaces the document with html and waits for fonts and images
	Load(ctx context.Context, html string) error
	CountPages(ctx context.Context, selector string) (int, error)
	Print(ctx context.Context) ([]byte, error)
	Close() error
}

var printDocumentTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 0; }
html, body { margin: 0; padding: 0; background: {{.Background}}; }
body { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
.pdf-page:last-child { page-break-after: auto; break-after: auto; }
.pdf-page .cover-name { color: {{.TextColor}}; }
{{.PageCSS}}
</style>
</head>
<body>
{{range .Pages}}{{.HTML}}
{{end}}</body>
</html>
`))

// PDFService turns statically rendered pages into a PDF
// Implements PDFServiceInterface
type PDFService struct {
	browser Browser
	timeout time.Duration
	log     *zap.Logger
}

// NewPDFService creates a new PDFService
func NewPDFService(browser Browser, timeout time.Duration, log *zap.Logger) *PDFService {
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &PDFService{
		browser: browser,
		timeout: timeout,
		log:     log,
	}
}

// Ensure PDFService implements PDFServiceInterface
var _ PDFServiceInterface = (*PDFService)(nil)

// BuildDocument assembles one standalone HTML document with a page block per rendered page.
// The cover theme colors the document chrome.
func (s *PDFService) BuildDocument(title string, pages []renderer.RenderedPage, theme models.ColorScheme) (string, error) {
	if len(pages) == 0 {
		return "", &models.PdfGenerationError{Stage: models.StageDocument, Err: errors.New("no pages to print")}
	}
	for _, p := range pages {
		if p.Mode != renderer.StaticHTML {
			return "", &models.PdfGenerationError{
				Stage: models.StageDocument,
				Err:   fmt.Errorf("page %d was rendered in %s mode", p.Number, p.Mode),
			}
		}
	}

	background := renderer.SafeColor(theme.BackgroundColor)
	if background == "" {
		background = "#ffffff"
	}
	textColor := renderer.SafeColor(theme.TextColor)
	if textColor == "" {
		textColor = "inherit"
	}

	var buf bytes.Buffer
	err := printDocumentTemplate.Execute(&buf, struct {
		Title      string
		Background template.CSS
		TextColor  template.CSS
		PageCSS    template.CSS
		Pages      []renderer.RenderedPage
	}{
		Title:      title,
		Background: template.CSS(background),
		TextColor:  template.CSS(textColor),
		PageCSS:    template.CSS(renderer.PageStyles()),
		Pages:      pages,
	})
	if err != nil {
		return "", &models.PdfGenerationError{Stage: models.StageDocument, Err: err}
	}
	return buf.String(), nil
}

// Export prints doc to PDF in a dedicated browser. The browser is released on
// every path. The result is rejected unless the document holds exactly
// expectedPages page blocks. Every failure is a *models.PdfGenerationError.
func (s *PDFService) Export(ctx context.Context, doc string, expectedPages int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Info("🖨️  Starting PDF export", zap.Int("expectedPages", expectedPages))

	session, err := s.browser.Open(ctx)
	if err != nil {
		return nil, s.fail(models.StageLaunch, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.log.Warn("⚠️  Failed to close browser", zap.Error(err))
		}
	}()

	if err := session.Load(ctx, doc); err != nil {
		return nil, s.fail(models.StageLoad, err)
	}

	count, err := session.CountPages(ctx, pdfPageSelector)
	if err != nil {
		return nil, s.fail(models.StageVerify, err)
	}
	if count != expectedPages {
		return nil, s.fail(models.StageVerify, fmt.Errorf("document has %d pages, expected %d", count, expectedPages))
	}

	pdf, err := session.Print(ctx)
	if err != nil {
		return nil, s.fail(models.StagePrint, err)
	}
	if len(pdf) == 0 {
		return nil, s.fail(models.StagePrint, errors.New("browser returned an empty PDF"))
	}
	switch printed := countPDFPages(pdf); {
	case printed == 0:
		s.log.Warn("⚠️  PDF page tree not readable, relying on the document page count")
	case printed != expectedPages:
		return nil, s.fail(models.StageVerify, fmt.Errorf("printed PDF has %d pages, expected %d", printed, expectedPages))
	}

	s.log.Info("✅ PDF exported",
		zap.Int("pages", count),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)))
	return pdf, nil
}

func (s *PDFService) fail(stage string, err error) error {
	s.log.Error("❌ PDF export failed", zap.String("stage", stage), zap.Error(err))
	return &models.PdfGenerationError{Stage: stage, Err: err}
}
