package gfx

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func noise(t *testing.T, w, h int, format PixelFormat, seed int64) *Bitmap {
	t.Helper()
	b, err := NewBitmap(w, h, format)
	if err != nil {
		t.Fatalf("NewBitmap: %v", err)
	}
	rnd := rand.New(rand.NewSource(seed))
	rnd.Read(b.Pix)
	if format == Format32bppRGB {
		for i := 3; i < len(b.Pix); i += 4 {
			b.Pix[i] = 0xFF
		}
	}
	return b
}

// naiveBlur computes the clipped box mean one pixel at a time.
func naiveBlur(src *Bitmap, radius, channels int) *Bitmap {
	out := src.Clone()
	w, h := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				sum, n := 0, 0
				for yy := max(0, y-radius); yy <= min(h-1, y+radius); yy++ {
					for xx := max(0, x-radius); xx <= min(w-1, x+radius); xx++ {
						sum += int(src.Pix[src.PixOffset(xx, yy)+c])
						n++
					}
				}
				out.Pix[out.PixOffset(x, y)+c] = uint8((sum + n/2) / n)
			}
		}
	}
	return out
}

func TestBoxBlurRadiusZeroIsIdentity(t *testing.T) {
	b := noise(t, 9, 7, Format32bppARGB, 1)
	want := b.Clone()
	if err := BoxBlur(b, 0); err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	if !bytes.Equal(b.Pix, want.Pix) {
		t.Fatal("radius 0 changed pixels")
	}
}

func TestBoxBlurMatchesNaiveMean(t *testing.T) {
	for _, radius := range []int{1, 2, 5, 40} {
		b := noise(t, 17, 13, Format32bppARGB, int64(radius))
		want := naiveBlur(b, radius, 4)
		if err := BoxBlur(b, radius); err != nil {
			t.Fatalf("BoxBlur: %v", err)
		}
		if !bytes.Equal(b.Pix, want.Pix) {
			t.Fatalf("radius %d: blur differs from the naive box mean", radius)
		}
	}
}

func TestBoxBlurSinglePixelSpread(t *testing.T) {
	b, _ := NewBitmap(9, 9, Format32bppRGB)
	b.SetNRGBA(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err := BoxBlur(b, 1); err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			if got := b.NRGBAAt(x, y).R; got != 28 {
				t.Fatalf("(%d,%d): expected 28, got %d", x, y, got)
			}
		}
	}
	if got := b.NRGBAAt(6, 4).R; got != 0 {
		t.Fatalf("blur reached beyond the radius: %d", got)
	}
	if got := b.Pix[b.PixOffset(4, 4)+3]; got != 255 {
		t.Fatalf("padding byte changed: %d", got)
	}
}

func TestBoxBlurCornerUsesClippedWindow(t *testing.T) {
	b, _ := NewBitmap(6, 6, Format24bppRGB)
	b.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	if err := BoxBlur(b, 1); err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	cases := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 64}, // 2x2 window
		{1, 0, 43}, // 3x2 window
		{1, 1, 28}, // full 3x3 window
		{2, 2, 0},
	}
	for _, c := range cases {
		if got := b.NRGBAAt(c.x, c.y).R; got != c.want {
			t.Fatalf("(%d,%d): got %d want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestBoxBlurFormatIndependent(t *testing.T) {
	src := noise(t, 11, 8, Format32bppRGB, 7)
	rgb24, err := src.Convert(Format24bppRGB)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if err := BoxBlur(src, 2); err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	if err := BoxBlur(rgb24, 2); err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 11; x++ {
			if src.NRGBAAt(x, y) != rgb24.NRGBAAt(x, y) {
				t.Fatalf("formats disagree at (%d,%d)", x, y)
			}
		}
	}
}

func TestBoxBlurExcludeAlpha(t *testing.T) {
	b := noise(t, 6, 6, Format32bppARGB, 3)
	alpha := make([]byte, 0, 36)
	for i := 3; i < len(b.Pix); i += 4 {
		alpha = append(alpha, b.Pix[i])
	}
	if err := BoxBlur(b, 2, WithExcludeAlpha()); err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	for i, j := 3, 0; i < len(b.Pix); i, j = i+4, j+1 {
		if b.Pix[i] != alpha[j] {
			t.Fatalf("alpha changed at pixel %d", j)
		}
	}
}

func TestBoxBlurAreaLeavesOutsideUntouched(t *testing.T) {
	b := noise(t, 12, 12, Format24bppRGB, 9)
	orig := b.Clone()
	area := image.Rect(3, 4, 8, 9)
	if err := BoxBlurArea(b, area, 3); err != nil {
		t.Fatalf("BoxBlurArea: %v", err)
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			if image.Pt(x, y).In(area) {
				continue
			}
			if b.NRGBAAt(x, y) != orig.NRGBAAt(x, y) {
				t.Fatalf("pixel outside area changed at (%d,%d)", x, y)
			}
		}
	}
}

func TestBoxBlurEmptyAreaIsNoop(t *testing.T) {
	b := noise(t, 5, 5, Format24bppRGB, 2)
	orig := b.Clone()
	if err := BoxBlurArea(b, image.Rect(10, 10, 20, 20), 2); err != nil {
		t.Fatalf("BoxBlurArea: %v", err)
	}
	if !bytes.Equal(b.Pix, orig.Pix) {
		t.Fatal("empty intersection modified the bitmap")
	}
}

func TestBoxBlurUnsupportedFormat(t *testing.T) {
	b := &Bitmap{Pix: make([]byte, 4), Stride: 2, Rect: image.Rect(0, 0, 2, 2)}
	if err := BoxBlur(b, 1); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPixelate(t *testing.T) {
	b, _ := NewBitmap(4, 4, Format24bppRGB)
	b.SetNRGBA(0, 0, color.NRGBA{R: 100, A: 255})
	b.SetNRGBA(1, 1, color.NRGBA{R: 20, A: 255})
	b.SetNRGBA(3, 3, color.NRGBA{G: 40, A: 255})
	if err := Pixelate(b, b.Bounds(), 2); err != nil {
		t.Fatalf("Pixelate: %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if got := b.NRGBAAt(p.X, p.Y).R; got != 30 {
			t.Fatalf("%v: expected 30, got %d", p, got)
		}
	}
	if got := b.NRGBAAt(2, 2).G; got != 10 {
		t.Fatalf("expected 10 in the bottom right cell, got %d", got)
	}
	if got := b.NRGBAAt(3, 0); got.R != 0 || got.G != 0 {
		t.Fatalf("top right cell should stay black, got %+v", got)
	}
}

func TestPixelateSizeOneIsNoop(t *testing.T) {
	b := noise(t, 5, 5, Format32bppARGB, 4)
	orig := b.Clone()
	if err := Pixelate(b, b.Bounds(), 1); err != nil {
		t.Fatalf("Pixelate: %v", err)
	}
	if !bytes.Equal(b.Pix, orig.Pix) {
		t.Fatal("size 1 changed pixels")
	}
}
