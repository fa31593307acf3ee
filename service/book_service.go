package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/renderer"
	"astrobook/repository"
	"astrobook/utils"
)

const bookTitle = "Your Astrology Book"

// Build is one assembled, personalized book, ready to render
type Build struct {
	ID        string
	Scope     models.Scope
	Set       models.AvailablePageSet
	User      models.UserData
	Theme     models.ColorScheme
	Pages     []models.PageData
	Fallbacks FallbackReport
}

// Title returns the display title of the build
func (b *Build) Title() string {
	if name := b.User.Value(models.TokenName); name != "" {
		return bookTitle + " · " + name
	}
	return bookTitle
}

// InteractiveBuild is a build rendered for the viewer
type InteractiveBuild struct {
	*Build
	Rendered []renderer.RenderedPage
}

// PDFResult is a printed build
type PDFResult struct {
	BuildID  string
	Filename string
	Pages    int
	Data     []byte
}

// BookService runs the pipeline: select pages, load, personalize, theme, render, export
// Implements BookServiceInterface
type BookService struct {
	catalog  repository.TemplateCatalogInterface
	loader   ContentLoaderInterface
	registry *renderer.Registry
	pdf      PDFServiceInterface
	log      *zap.Logger
}

// NewBookService creates a new BookService
func NewBookService(
	catalog repository.TemplateCatalogInterface,
	loader ContentLoaderInterface,
	registry *renderer.Registry,
	pdf PDFServiceInterface,
	log *zap.Logger,
) *BookService {
	return &BookService{
		catalog:  catalog,
		loader:   loader,
		registry: registry,
		pdf:      pdf,
		log:      log,
	}
}

// Ensure BookService implements BookServiceInterface
var _ BookServiceInterface = (*BookService)(nil)

// Assemble selects, loads and personalizes the pages of a scope and applies the cover theme.
// Every template id is checked against the renderer before returning, so an
// unrenderable page fails the build here and nothing is rendered.
func (s *BookService) Assemble(ctx context.Context, scope models.Scope, user models.UserData) (*Build, error) {
	id := uuid.NewString()
	log := s.log.With(zap.String("buildId", id), zap.Stringer("scope", scope))
	log.Info("📖 Assembling book")

	set, err := s.catalog.GetAvailablePages(scope)
	if err != nil {
		log.Warn("⚠️  Invalid page selection", zap.Error(err))
		return nil, err
	}

	pages, err := s.loader.LoadPagesData(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	personalized, report := PersonalizePages(pages, user)
	if len(report) > 0 {
		log.Info("ℹ️  Personalization used fallbacks",
			zap.Int("substitutions", len(report)),
			zap.Any("tokens", report.Tokens()))
	}

	theme := utils.ResolveColorScheme(user.CoverColor)
	ApplyCoverTheme(personalized, theme)

	if err := s.registry.Check(personalized); err != nil {
		log.Error("❌ Unrenderable page in build", zap.Error(err))
		return nil, err
	}

	log.Info("✓ Book assembled", zap.Int("pages", len(personalized)), zap.String("theme", theme.ID))
	return &Build{
		ID:        id,
		Scope:     scope,
		Set:       set,
		User:      user,
		Theme:     theme,
		Pages:     personalized,
		Fallbacks: report,
	}, nil
}

// RenderInteractive assembles a build and renders it for the viewer
func (s *BookService) RenderInteractive(ctx context.Context, scope models.Scope, user models.UserData) (*InteractiveBuild, error) {
	build, err := s.Assemble(ctx, scope, user)
	if err != nil {
		return nil, err
	}

	rendered, err := s.registry.RenderAll(build.Pages, renderer.Interactive)
	if err != nil {
		return nil, err
	}
	return &InteractiveBuild{Build: build, Rendered: rendered}, nil
}

// GeneratePDF assembles a build and prints it. Nothing is cached.
func (s *BookService) GeneratePDF(ctx context.Context, scope models.Scope, user models.UserData) (*PDFResult, error) {
	start := time.Now()

	build, err := s.Assemble(ctx, scope, user)
	if err != nil {
		return nil, err
	}

	rendered, err := s.registry.RenderAll(build.Pages, renderer.StaticHTML)
	if err != nil {
		return nil, err
	}

	doc, err := s.pdf.BuildDocument(build.Title(), rendered, build.Theme)
	if err != nil {
		return nil, err
	}

	data, err := s.pdf.Export(ctx, doc, len(build.Set))
	if err != nil {
		return nil, err
	}

	result := &PDFResult{
		BuildID:  build.ID,
		Filename: utils.BookFilename(user, build.ID),
		Pages:    len(build.Set),
		Data:     data,
	}
	s.log.Info("🎉 Book PDF generated",
		zap.String("buildId", build.ID),
		zap.String("filename", result.Filename),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// ApplyCoverTheme colors the first page of an assembled list with the theme.
// All other pages keep their template background.
func ApplyCoverTheme(pages []models.PageData, theme models.ColorScheme) {
	if len(pages) == 0 {
		return
	}
	pages[0].Background = theme.BackgroundColor
	pages[0].TextColor = theme.TextColor
}
