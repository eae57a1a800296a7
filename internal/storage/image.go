package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	_ "golang.org/x/image/webp"
)

// MaxImagePixels bounds width*height of accepted images, so decoding a floor
// map never allocates more than a few hundred megabytes.
const MaxImagePixels = 40_000_000

var ErrImageTooLarge = errors.New("image has too many pixels")

// ImageInfo is the intrinsic size of an uploaded image.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

var allowedContentTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// SniffContentType detects the type from the first bytes of data and
// reports whether uploads of that type are accepted.
func SniffContentType(data []byte) (string, bool) {
	contentType := http.DetectContentType(data)
	_, ok := allowedContentTypes[contentType]
	return contentType, ok
}

// InspectImage reads the image header without decoding pixels.
func InspectImage(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, fmt.Errorf("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return ImageInfo{}, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// DecodeImage decodes a stored image for rendering. The header is checked
// against MaxImagePixels before any pixel is decoded.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if _, err := InspectImage(data); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
