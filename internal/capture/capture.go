// Package capture grabs screen regions for scrolling captures.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/scrollshot/internal/gfx"
)

// Backend names a capture producer.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendPortal Backend = "portal"
	BackendX11    Backend = "x11"
)

var (
	// ErrUnsupported is returned by producers unavailable on this platform.
	ErrUnsupported = errors.New("capture: not supported on this platform")
	// ErrEmptyRegion is returned when the requested region has no pixels.
	ErrEmptyRegion = errors.New("capture: region is empty")
)

// Source produces screen grabs. Each call returns a fresh bitmap owned by
// the caller.
type Source interface {
	Grab(ctx context.Context, region image.Rectangle) (*gfx.Bitmap, error)
	Close() error
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendPortal, BackendX11:
		return b, nil
	}
	return "", fmt.Errorf("unknown capture backend %q", s)
}

// Open returns the producer for backend. Auto prefers a direct X11
// connection and falls back to the desktop portal on Wayland sessions.
func Open(backend Backend) (Source, error) {
	switch backend {
	case BackendX11:
		return openX11()
	case BackendPortal:
		return openPortal()
	case BackendAuto, "":
		if !runningOnWayland() {
			if src, err := openX11(); err == nil {
				return src, nil
			}
		}
		return openPortal()
	}
	return nil, fmt.Errorf("unknown capture backend %q", backend)
}

// ParseRegion reads "x0,y0,x1,y1" or "x,y,wxh" in global screen coordinates.
func ParseRegion(s string) (image.Rectangle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	switch len(parts) {
	case 3:
		x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(parts[2])), "x")
		if errX != nil || errY != nil || !ok {
			return image.Rectangle{}, fmt.Errorf("invalid region %q", s)
		}
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			return image.Rectangle{}, fmt.Errorf("invalid region size %q", parts[2])
		}
		return image.Rect(x, y, x+width, y+height), nil
	case 4:
		var v [4]int
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return image.Rectangle{}, fmt.Errorf("invalid region %q", s)
			}
			v[i] = n
		}
		r := image.Rect(v[0], v[1], v[2], v[3])
		if r.Empty() {
			return image.Rectangle{}, fmt.Errorf("%w: %q", ErrEmptyRegion, s)
		}
		return r, nil
	}
	return image.Rectangle{}, fmt.Errorf("invalid region %q", s)
}

// cropToRect copies rect out of src, which covers screen, into a new
// bitmap. An empty rect selects the whole of src.
func cropToRect(src *gfx.Bitmap, screen, rect image.Rectangle) (*gfx.Bitmap, error) {
	if rect.Empty() {
		return src.Clone(), nil
	}
	rect = rect.Intersect(screen)
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image: %w", ErrEmptyRegion)
	}
	local := rect.Sub(screen.Min)
	dst, err := gfx.NewBitmap(local.Dx(), local.Dy(), src.Format)
	if err != nil {
		return nil, err
	}
	bpp := src.Format.BytesPerPixel()
	for y := 0; y < local.Dy(); y++ {
		row := src.Row(local.Min.Y + y)
		copy(dst.Row(y), row[local.Min.X*bpp:local.Max.X*bpp])
	}
	return dst, nil
}
