// Package render composes finished captures for output.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/scrollshot/internal/gfx"
)

// ShadowOptions configures the drop shadow effect applied to an image.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// ShadowResult captures the output of ApplyShadow.
type ShadowResult struct {
	// Image is the composited image that includes the blurred shadow.
	Image *image.RGBA
	// Offset reports how far the original image content was translated when
	// rebasing onto the expanded canvas.
	Offset image.Point
}

// DefaultShadowOptions returns a conservative drop shadow configuration that
// works well with most screenshots.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  24,
		Offset:  image.Pt(16, 16),
		Opacity: 0.55,
	}
}

// ApplyShadow composites img with a blurred drop shadow using opts. The result
// always has a zero origin. The returned Offset indicates where the original
// image's top-left corner ended up inside the expanded canvas.
func ApplyShadow(img image.Image, opts ShadowOptions) (ShadowResult, error) {
	if img == nil {
		return ShadowResult{}, nil
	}
	srcBounds := img.Bounds()
	if srcBounds.Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: toRGBA(img)}, nil
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	paddedBounds := srcBounds.Inset(-radius)
	shadowBounds := paddedBounds.Add(opts.Offset)
	compositeBounds := srcBounds.Union(shadowBounds)
	dstRect := compositeBounds.Sub(compositeBounds.Min)

	shift := srcBounds.Min.Sub(compositeBounds.Min)
	shadowOrigin := shadowBounds.Min.Sub(compositeBounds.Min)

	// The mask keeps the subject's coverage in the alpha channel of a black
	// bitmap so the blur spreads only coverage.
	mask, err := gfx.NewBitmap(paddedBounds.Dx(), paddedBounds.Dy(), gfx.Format32bppARGB)
	if err != nil {
		return ShadowResult{}, err
	}
	for y := srcBounds.Min.Y; y < srcBounds.Max.Y; y++ {
		for x := srcBounds.Min.X; x < srcBounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			mask.SetNRGBA(x-paddedBounds.Min.X, y-paddedBounds.Min.Y, color.NRGBA{A: uint8(a >> 8)})
		}
	}
	if err := gfx.BoxBlur(mask, radius); err != nil {
		return ShadowResult{}, err
	}

	dst := image.NewRGBA(dstRect)
	shadowAlpha := uint8(opacity*255 + 0.5)
	if shadowAlpha > 0 {
		draw.DrawMask(dst, mask.Bounds().Add(shadowOrigin), image.NewUniform(color.RGBA{0, 0, 0, shadowAlpha}), image.Point{}, mask, image.Point{}, draw.Over)
	}
	draw.Draw(dst, srcBounds.Sub(compositeBounds.Min), img, srcBounds.Min, draw.Over)
	mask.Dispose()

	return ShadowResult{Image: dst, Offset: shift}, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
