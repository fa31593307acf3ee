package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"astrobook/models"
	"astrobook/repository"
)

// slowResolver delays earlier pages longer so completion order is reversed
type slowResolver struct{}

func (slowResolver) Resolve(ctx context.Context, page int, name string) (string, error) {
	select {
	case <-time.After(time.Duration(50-page) * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "data:image/jpeg;base64," + name, nil
}

func TestContentLoader_PreservesRequestOrder(t *testing.T) {
	catalog := smallCatalog(t)
	loader := NewContentLoader(catalog, stubResolver{}, 2, zaptest.NewLogger(t))

	pages, err := loader.LoadPagesData(context.Background(), models.AvailablePageSet{1, 5, 41})

	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 5, pages[1].Number)
	assert.Equal(t, 41, pages[2].Number)
	assert.Equal(t, "cover", pages[0].TemplateID)
	assert.NotEmpty(t, pages[0].Illustration)
	assert.Empty(t, pages[1].Illustration)
}

func TestContentLoader_OrderUnderReversedCompletion(t *testing.T) {
	var templates []models.PageTemplate
	var set models.AvailablePageSet
	for n := 1; n <= 20; n++ {
		templates = append(templates, models.PageTemplate{
			Number:       n,
			TemplateID:   "illustration",
			Illustration: "art",
			Sections:     []models.Section{models.Paragraph("p", "")},
		})
		set = append(set, n)
	}
	catalog, err := repository.NewTemplateCatalog(templates, nil)
	require.NoError(t, err)

	loader := NewContentLoader(catalog, slowResolver{}, 20, zaptest.NewLogger(t))
	pages, err := loader.LoadPagesData(context.Background(), set)

	require.NoError(t, err)
	for i, p := range pages {
		assert.Equal(t, set[i], p.Number)
	}
}

func TestContentLoader_DefaultCatalogAllPages(t *testing.T) {
	catalog, err := repository.DefaultCatalog()
	require.NoError(t, err)
	set, err := catalog.GetAvailablePages(models.NamedScope(models.ScopeAll))
	require.NoError(t, err)

	loader := NewContentLoader(catalog, nil, 0, zaptest.NewLogger(t))
	pages, err := loader.LoadPagesData(context.Background(), set)

	require.NoError(t, err)
	require.Len(t, pages, len(set))
	for i, p := range pages {
		assert.Equal(t, set[i], p.Number)
		assert.Empty(t, p.Illustration)
	}
}

func TestContentLoader_MissingPage(t *testing.T) {
	loader := NewContentLoader(smallCatalog(t), nil, 4, zaptest.NewLogger(t))

	pages, err := loader.LoadPagesData(context.Background(), models.AvailablePageSet{1, 99})

	assert.Nil(t, pages)
	var notFound *models.PageNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 99, notFound.PageNumber)
}

func TestContentLoader_MissingIllustration(t *testing.T) {
	resolver := stubResolver{missing: map[string]bool{"cover-art": true}}
	loader := NewContentLoader(smallCatalog(t), resolver, 4, zaptest.NewLogger(t))

	pages, err := loader.LoadPagesData(context.Background(), models.AvailablePageSet{1, 5, 41})

	assert.Nil(t, pages)
	var missing *models.IllustrationNotFoundError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 1, missing.PageNumber)
	assert.Equal(t, "cover-art", missing.Name)
}

func TestContentLoader_CanceledContext(t *testing.T) {
	loader := NewContentLoader(smallCatalog(t), nil, 1, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.LoadPagesData(ctx, models.AvailablePageSet{1, 5})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestContentLoader_PagesAreIndependentCopies(t *testing.T) {
	catalog := smallCatalog(t)
	loader := NewContentLoader(catalog, nil, 1, zaptest.NewLogger(t))

	pages, err := loader.LoadPagesData(context.Background(), models.AvailablePageSet{1})
	require.NoError(t, err)
	pages[0].Sections[0].Text = "changed"

	again, err := loader.LoadPagesData(context.Background(), models.AvailablePageSet{1})
	require.NoError(t, err)
	assert.Equal(t, "{name}", again[0].Sections[0].Text)
}
