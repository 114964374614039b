// Package imageio reads and writes the image files scrollshot works on.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for image.Decode.
	_ "golang.org/x/image/webp"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/example/scrollshot/internal/gfx"
)

// ErrUnknownFormat is returned for output formats with no encoder.
var ErrUnknownFormat = errors.New("imageio: unknown image format")

// Format names an output encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists the encodable formats.
func Formats() []Format {
	return []Format{PNG, JPEG, GIF, BMP, TIFF}
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp", "dib":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath picks the format from the file extension, or fallback when
// the path has none.
func FormatForPath(path string, fallback Format) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return fallback, nil
	}
	return ParseFormat(ext)
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// EncodeOptions tunes the lossy and paletted encoders.
type EncodeOptions struct {
	// Quality is the JPEG quality, 1-100. Zero uses jpeg.DefaultQuality.
	Quality int
	// Colors bounds the GIF palette, 2-256. Zero means 256.
	Colors int
}

// Decode reads any registered format: png, jpeg, gif, bmp, tiff and webp.
func Decode(r io.Reader) (image.Image, string, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, name, nil
}

// Load decodes the image stored at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadBitmap decodes path into a bitmap of the given pixel format.
func LoadBitmap(path string, format gfx.PixelFormat) (*gfx.Bitmap, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return gfx.FromImage(img, format)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts EncodeOptions) error {
	if b, ok := img.(*gfx.Bitmap); ok {
		img = b.ToNRGBA()
	}
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		return enc.Encode(w, img)
	case JPEG:
		q := opts.Quality
		if q <= 0 {
			q = jpeg.DefaultQuality
		}
		if q > 100 {
			q = 100
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case GIF:
		colors := opts.Colors
		if colors == 0 {
			colors = 256
		}
		if colors < 2 || colors > 256 {
			return fmt.Errorf("%w: %d", gfx.ErrInvalidColorCount, colors)
		}
		if p, ok := img.(*image.Paletted); ok && len(p.Palette) <= colors {
			return gif.Encode(w, p, &gif.Options{NumColors: len(p.Palette)})
		}
		// draw.Src maps each pixel to its nearest entry without dithering.
		return gif.Encode(w, img, &gif.Options{
			NumColors: colors,
			Quantizer: gfx.WuQuantizer{MaxColors: colors},
			Drawer:    draw.Src,
		})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Save encodes img to path. The format comes from the extension, falling back
// to fallback when the path has none.
func Save(path string, img image.Image, fallback Format, opts EncodeOptions) (err error) {
	f, err := FormatForPath(path, fallback)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := Encode(out, img, f, opts); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
