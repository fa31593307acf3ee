package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Illustration sizes
const (
	SizePage  = "page"
	SizeThumb = "thumb"
)

const (
	// Quality settings
	qualityThumb = 60
	qualityPage  = 82
	// Size settings (max dimension). A4 at ~150dpi is 1240x1754.
	maxSizeThumb = 300
	maxSizePage  = 1600
)

// OptimizeImage converts an image to JPEG and resizes it so neither side
// exceeds the size's max dimension. Images already small enough are only re-encoded.
func OptimizeImage(log *zap.Logger, imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	log.Debug("📸 Image decoded", zap.String("format", format), zap.Stringer("bounds", img.Bounds()))

	var maxDim, quality int
	switch size {
	case SizeThumb:
		maxDim = maxSizeThumb
		quality = qualityThumb
	case SizePage:
		maxDim = maxSizePage
		quality = qualityPage
	default:
		maxDim = maxSizePage
		quality = qualityPage
		log.Warn("⚠️  Unknown size, defaulting to page", zap.String("size", size))
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var resized image.Image = img
	if width > maxDim || height > maxDim {
		// imaging keeps the aspect ratio when one side is 0
		if width > height {
			resized = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
		log.Debug("🔄 Resized image",
			zap.Int("fromWidth", width), zap.Int("fromHeight", height),
			zap.Int("toWidth", resized.Bounds().Dx()), zap.Int("toHeight", resized.Bounds().Dy()))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Debug("✓ Image optimized", zap.String("size", size), zap.Int("quality", quality), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// JPEGDataURI embeds JPEG bytes as a data: URI
func JPEGDataURI(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
