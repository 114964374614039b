package gfx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when a bitmap carries a pixel format the
	// operation cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	// ErrInvalidSize is returned for negative or overflowing bitmap dimensions.
	ErrInvalidSize = errors.New("invalid bitmap size")
)

// PixelFormat describes the byte layout of a single pixel in a Bitmap.
//
// Channel bytes are stored blue first, matching the little-endian layouts that
// GDI and X11 ZPixmap captures hand out.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	// Format24bppRGB stores B, G, R.
	Format24bppRGB
	// Format32bppRGB stores B, G, R and an unused byte that is kept at 0xFF.
	Format32bppRGB
	// Format32bppARGB stores B, G, R, A with straight (non-premultiplied) alpha.
	Format32bppARGB
)

// BytesPerPixel reports the number of bytes a pixel occupies, or 0 for
// unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case Format24bppRGB:
		return 3
	case Format32bppRGB, Format32bppARGB:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the fourth byte carries meaningful alpha.
func (f PixelFormat) HasAlpha() bool {
	return f == Format32bppARGB
}

// Valid reports whether f is one of the supported formats.
func (f PixelFormat) Valid() bool {
	return f.BytesPerPixel() != 0
}

func (f PixelFormat) String() string {
	switch f {
	case Format24bppRGB:
		return "24bpp-rgb"
	case Format32bppRGB:
		return "32bpp-rgb"
	case Format32bppARGB:
		return "32bpp-argb"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParsePixelFormat accepts the names produced by String as well as the short
// forms "24", "32" and "32a".
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "24bpp-rgb", "24", "rgb24":
		return Format24bppRGB, nil
	case "32bpp-rgb", "32", "rgb32":
		return Format32bppRGB, nil
	case "32bpp-argb", "32a", "argb", "argb32":
		return Format32bppARGB, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}
