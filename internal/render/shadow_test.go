package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/scrollshot/internal/gfx"
)

func TestApplyShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 3; y < 8; y++ {
		for x := 3; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out, err := ApplyShadow(img, opts)
	if err != nil {
		t.Fatalf("ApplyShadow: %v", err)
	}
	expected := image.Rect(0, 0, 22, 20)
	if !out.Image.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", out.Image.Bounds(), expected)
	}
	if out.Offset != (image.Point{}) {
		t.Fatalf("unexpected offset %v", out.Offset)
	}
	shadowPt := image.Pt(5, 5).Add(opts.Offset)
	if out.Image.RGBAAt(shadowPt.X, shadowPt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowPt)
	}
	if got := out.Image.RGBAAt(5, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("subject pixel changed: %+v", got)
	}
}

func TestApplyShadowNegativeOffsetShiftsContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 6))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	out, err := ApplyShadow(img, ShadowOptions{Radius: 1, Offset: image.Pt(-5, -3), Opacity: 1})
	if err != nil {
		t.Fatalf("ApplyShadow: %v", err)
	}
	// padded (-1,-1)-(7,7) moved by the offset starts at (-6,-4)
	if out.Offset != image.Pt(6, 4) {
		t.Fatalf("unexpected offset %v", out.Offset)
	}
	if got := out.Image.RGBAAt(6, 4); got != (color.RGBA{G: 255, A: 255}) {
		t.Fatalf("content not moved to offset: %+v", got)
	}
}

func TestApplyShadowNoShadowWhenOpacityZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	out, err := ApplyShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10), Opacity: 0})
	if err != nil {
		t.Fatalf("ApplyShadow: %v", err)
	}
	if !out.Image.Bounds().Eq(img.Bounds()) {
		t.Fatalf("bounds changed unexpectedly: %v vs %v", out.Image.Bounds(), img.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := out.Image.RGBAAt(x, y); got != fill {
				t.Fatalf("pixel mismatch at (%d,%d): got %+v want %+v", x, y, got, fill)
			}
		}
	}
}

func TestApplyShadowBlurredAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{A: 255})
		}
	}
	opts := ShadowOptions{Radius: 2, Offset: image.Pt(3, 0), Opacity: 1}

	out, err := ApplyShadow(img, opts)
	if err != nil {
		t.Fatalf("ApplyShadow: %v", err)
	}
	// The canvas starts at y=-2 so the shadow of pixel (0,0) lands at (3,2).
	base := image.Pt(3, 2)
	baseAlpha := out.Image.RGBAAt(base.X, base.Y).A
	if baseAlpha == 0 {
		t.Fatal("expected alpha at base shadow location")
	}
	neighbor := out.Image.RGBAAt(base.X+3, base.Y)
	if neighbor.A == 0 || neighbor.A >= baseAlpha {
		t.Fatalf("expected fainter blurred alpha beyond the subject, base=%d neighbor=%d", baseAlpha, neighbor.A)
	}
}

func TestApplyShadowAcceptsBitmap(t *testing.T) {
	b, err := gfx.NewBitmap(8, 8, gfx.Format24bppRGB)
	if err != nil {
		t.Fatalf("NewBitmap: %v", err)
	}
	out, err := ApplyShadow(b, DefaultShadowOptions())
	if err != nil {
		t.Fatalf("ApplyShadow: %v", err)
	}
	if out.Image.Bounds().Dx() <= 8 {
		t.Fatalf("expected expanded canvas, got %v", out.Image.Bounds())
	}
}
