package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"astrobook/models"
	"astrobook/repository"
)

// pngBytes encodes a solid w x h image
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 50, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// memorySource serves illustrations from a map and counts fetches
type memorySource struct {
	mu      sync.Mutex
	files   map[string][]byte
	fetches map[string]int
}

func newMemorySource(files map[string][]byte) *memorySource {
	return &memorySource{files: files, fetches: make(map[string]int)}
}

func (s *memorySource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[name]++
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrIllustrationMissing)
	}
	return data, nil
}

func (s *memorySource) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[name]
}

// stubResolver answers every name with a fixed data URI
type stubResolver struct {
	missing map[string]bool
}

func (r stubResolver) Resolve(ctx context.Context, page int, name string) (string, error) {
	if r.missing[name] {
		return "", &models.IllustrationNotFoundError{PageNumber: page, Name: name}
	}
	return "data:image/jpeg;base64,c3R1Yg==", nil
}

// smallCatalog is a three page catalog with the cover tokens used in examples
func smallCatalog(t *testing.T, extra ...models.PageTemplate) *repository.TemplateCatalog {
	t.Helper()
	pages := []models.PageTemplate{
		{
			Number:       1,
			TemplateID:   "cover",
			Illustration: "cover-art",
			Sections: []models.Section{
				models.Heading(1, "{name}", "cover-name"),
				models.Paragraph("{sunSign} Sun", "cover-signs"),
				models.Paragraph("{birthDate}", "cover-date"),
			},
		},
		{
			Number:     5,
			TemplateID: "prose",
			Sections: []models.Section{
				models.Heading(2, "Chapter One", ""),
				models.Paragraph("Born in {birthPlace}.", ""),
			},
		},
		{
			Number:     41,
			TemplateID: "quote",
			Fallbacks:  map[models.Token]string{models.TokenFirstName: "Dear reader"},
			Sections: []models.Section{
				models.Paragraph("{firstName}, shine.", "quote-text"),
			},
		},
	}
	pages = append(pages, extra...)
	catalog, err := repository.NewTemplateCatalog(pages, map[string][]int{"sample": {1, 5, 41}})
	require.NoError(t, err)
	return catalog
}
