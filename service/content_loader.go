package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"astrobook/models"
	"astrobook/repository"
)

// DefaultLoaderWorkers bounds per-page fan-out when no limit is configured
const DefaultLoaderWorkers = 8

// ContentLoader produces the PageData of a page set
// Implements ContentLoaderInterface
type ContentLoader struct {
	catalog       repository.TemplateCatalogInterface
	illustrations IllustrationResolver
	workers       int
	log           *zap.Logger
}

// NewContentLoader creates a loader. illustrations may be nil, in which case
// pages are loaded without their illustration.
func NewContentLoader(catalog repository.TemplateCatalogInterface, illustrations IllustrationResolver, workers int, log *zap.Logger) *ContentLoader {
	if workers < 1 {
		workers = DefaultLoaderWorkers
	}
	return &ContentLoader{
		catalog:       catalog,
		illustrations: illustrations,
		workers:       workers,
		log:           log,
	}
}

// Ensure ContentLoader implements ContentLoaderInterface
var _ ContentLoaderInterface = (*ContentLoader)(nil)

// LoadPagesData returns one PageData per requested number, in request order.
// Pages load concurrently; the first failure cancels the rest and no partial
// result is returned.
func (l *ContentLoader) LoadPagesData(ctx context.Context, pages models.AvailablePageSet) ([]models.PageData, error) {
	l.log.Debug("📚 Loading pages", zap.Int("count", len(pages)), zap.Int("workers", l.workers))

	out := make([]models.PageData, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, number := range pages {
		g.Go(func() error {
			page, err := l.loadPage(gctx, number)
			if err != nil {
				return err
			}
			out[i] = page
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.log.Error("❌ Failed to load pages", zap.Error(err))
		return nil, err
	}

	l.log.Debug("✓ Pages loaded", zap.Int("count", len(out)))
	return out, nil
}

func (l *ContentLoader) loadPage(ctx context.Context, number int) (models.PageData, error) {
	if err := ctx.Err(); err != nil {
		return models.PageData{}, err
	}

	tmpl, err := l.catalog.GetPage(number)
	if err != nil {
		return models.PageData{}, err
	}
	page := models.NewPageData(tmpl)

	if tmpl.Illustration != "" && l.illustrations != nil {
		uri, err := l.illustrations.Resolve(ctx, number, tmpl.Illustration)
		if err != nil {
			return models.PageData{}, err
		}
		page.Illustration = uri
	}

	return page, nil
}
