package gfx

import (
	"fmt"
	"image"
)

type blurConfig struct {
	excludeAlpha bool
}

// BlurOption adjusts BoxBlur.
type BlurOption func(*blurConfig)

// WithExcludeAlpha leaves the alpha channel of 32bpp ARGB bitmaps untouched.
func WithExcludeAlpha() BlurOption {
	return func(c *blurConfig) { c.excludeAlpha = true }
}

// BoxBlur blurs the whole bitmap in place. See BoxBlurArea.
func BoxBlur(b *Bitmap, radius int, opts ...BlurOption) error {
	return BoxBlurArea(b, b.Bounds(), radius, opts...)
}

// BoxBlurArea replaces every channel of every pixel inside area with the
// rounded mean of the (2*radius+1)² box around it. The box is clipped to
// area, so pixels near the edges average over fewer samples; nothing outside
// area is read or written. A radius below one or an empty area is a no-op.
//
// The blur runs as a sliding window of column sums down the rows with a
// horizontal prefix sum per row, which yields the exact two dimensional mean
// while only buffering 2*radius+1 rows of the original pixels.
func BoxBlurArea(b *Bitmap, area image.Rectangle, radius int, opts ...BlurOption) error {
	if !b.Format.Valid() {
		return fmt.Errorf("box blur: %w: %v", ErrUnsupportedFormat, b.Format)
	}
	var cfg blurConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	area = area.Intersect(b.Bounds())
	if radius <= 0 || area.Empty() {
		return nil
	}

	bpp := b.Format.BytesPerPixel()
	channels := bpp
	if b.Format == Format32bppRGB || (cfg.excludeAlpha && b.Format.HasAlpha()) {
		channels = 3
	}
	w, h := area.Dx(), area.Dy()
	rowBytes := w * bpp
	row := func(y int) []byte {
		off := b.PixOffset(area.Min.X, area.Min.Y+y)
		return b.Pix[off : off+rowBytes]
	}

	ringRows := min(2*radius+1, h)
	ring := make([]byte, ringRows*rowBytes)
	colSum := make([]int, w*channels)
	prefix := make([]int, (w+1)*channels)

	add := func(y int) {
		src := row(y)
		slot := ring[(y%ringRows)*rowBytes:][:rowBytes]
		copy(slot, src)
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				colSum[x*channels+c] += int(src[x*bpp+c])
			}
		}
	}
	remove := func(y int) {
		slot := ring[(y%ringRows)*rowBytes:][:rowBytes]
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				colSum[x*channels+c] -= int(slot[x*bpp+c])
			}
		}
	}

	for y := 0; y <= min(radius, h-1); y++ {
		add(y)
	}
	for y := 0; y < h; y++ {
		cy := min(h-1, y+radius) - max(0, y-radius) + 1
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				prefix[(x+1)*channels+c] = prefix[x*channels+c] + colSum[x*channels+c]
			}
		}
		dst := row(y)
		for x := 0; x < w; x++ {
			x0 := max(0, x-radius)
			x1 := min(w-1, x+radius)
			count := (x1 - x0 + 1) * cy
			for c := 0; c < channels; c++ {
				sum := prefix[(x1+1)*channels+c] - prefix[x0*channels+c]
				dst[x*bpp+c] = uint8((sum + count/2) / count)
			}
		}
		if leave := y - radius; leave >= 0 {
			remove(leave)
		}
		if enter := y + radius + 1; enter < h {
			add(enter)
		}
	}
	return nil
}
