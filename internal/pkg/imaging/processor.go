package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"

	// webp galleries are accepted on upload; decode support only,
	// re-encoded as JPEG
	_ "golang.org/x/image/webp"
)

// ProcessedImage contains both variants of a processed upload.
// Full is the delivered/downloadable asset, Thumbnail the grid asset.
type ProcessedImage struct {
	Full        []byte
	Thumbnail   []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth     int // max width of the full variant
	MaxHeight    int // max height of the full variant
	ThumbSize    int // thumbnail edge (square cover crop)
	FullQuality  int // JPEG quality for the full variant
	ThumbQuality int // JPEG quality for the thumbnail
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:     2000,
		MaxHeight:    2000,
		ThumbSize:    400,
		FullQuality:  90,
		ThumbQuality: 80,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes an upload, bounds the full variant to MaxWidth×MaxHeight
// (aspect ratio preserved, never upscaled) and produces a square
// center-cropped thumbnail.
func (p *Processor) Process(reader io.Reader) (*ProcessedImage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	result := &ProcessedImage{
		ContentType: mimeFromFormat(format),
		Extension:   extFromFormat(format),
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}

	// Bound the full variant, never upscale
	full := img
	if result.Width > p.config.MaxWidth || result.Height > p.config.MaxHeight {
		full = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
		result.Width = full.Bounds().Dx()
		result.Height = full.Bounds().Dy()
	}

	encoded, err := p.encode(full, format, p.config.FullQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode full variant: %w", err)
	}
	result.Full = encoded

	// Cover-fit center crop for the grid
	thumb := imaging.Fill(img, p.config.ThumbSize, p.config.ThumbSize, imaging.Center, imaging.Lanczos)
	thumbnail, err := p.encode(thumb, format, p.config.ThumbQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	result.Thumbnail = thumbnail

	return result, nil
}

// encode encodes image to bytes in the source format, falling back to JPEG
// for formats without a pure-Go encoder (webp).
func (p *Processor) encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func mimeFromFormat(format string) string {
	switch format {
	case "png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func extFromFormat(format string) string {
	switch format {
	case "png":
		return ".png"
	default:
		return ".jpg"
	}
}
