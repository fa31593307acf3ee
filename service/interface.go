package service

import (
	"context"

	"astrobook/models"
	"astrobook/renderer"
)

// ContentLoaderInterface defines the contract for loading page content
type ContentLoaderInterface interface {
	LoadPagesData(ctx context.Context, pages models.AvailablePageSet) ([]models.PageData, error)
}

// PDFServiceInterface defines the contract for printing rendered pages
type PDFServiceInterface interface {
	BuildDocument(title string, pages []renderer.RenderedPage, theme models.ColorScheme) (string, error)
	Export(ctx context.Context, doc string, expectedPages int) ([]byte, error)
}

// BookServiceInterface defines the contract for assembling books
type BookServiceInterface interface {
	Assemble(ctx context.Context, scope models.Scope, user models.UserData) (*Build, error)
	RenderInteractive(ctx context.Context, scope models.Scope, user models.UserData) (*InteractiveBuild, error)
	GeneratePDF(ctx context.Context, scope models.Scope, user models.UserData) (*PDFResult, error)
}
