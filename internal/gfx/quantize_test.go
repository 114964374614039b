package gfx

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
)

func rainbow(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func TestQuantizePaletteBound(t *testing.T) {
	img := rainbow(256, 256)
	for _, n := range []int{2, 16, 256} {
		out, err := Quantize(img, n)
		if err != nil {
			t.Fatalf("Quantize(%d): %v", n, err)
		}
		if len(out.Palette) > n {
			t.Fatalf("palette has %d entries, limit %d", len(out.Palette), n)
		}
		for i, idx := range out.Pix {
			if int(idx) >= len(out.Palette) {
				t.Fatalf("pixel %d points past the palette", i)
			}
		}
	}
}

func TestQuantizeDeterministic(t *testing.T) {
	img := rainbow(64, 48)
	a, err := Quantize(img, 32)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	b, err := Quantize(img, 32)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("pixel indices differ between runs")
	}
	if len(a.Palette) != len(b.Palette) {
		t.Fatalf("palette sizes differ: %d vs %d", len(a.Palette), len(b.Palette))
	}
	for i := range a.Palette {
		if a.Palette[i] != b.Palette[i] {
			t.Fatalf("palette entry %d differs", i)
		}
	}
}

func TestQuantizeKeepsFewDistinctColors(t *testing.T) {
	colors := []color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	img := image.NewNRGBA(image.Rect(0, 0, 30, 10))
	for x := 0; x < 30; x++ {
		for y := 0; y < 10; y++ {
			img.SetNRGBA(x, y, colors[x/10])
		}
	}
	out, err := Quantize(img, 256)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(out.Palette) != 3 {
		t.Fatalf("expected 3 palette entries, got %d", len(out.Palette))
	}
	for x := 0; x < 30; x++ {
		got := color.NRGBAModel.Convert(out.At(x, 5)).(color.NRGBA)
		if got != colors[x/10] {
			t.Fatalf("x=%d: got %+v want %+v", x, got, colors[x/10])
		}
	}
}

func TestQuantizeReservesTransparentEntry(t *testing.T) {
	img := rainbow(20, 20)
	img.SetNRGBA(3, 4, color.NRGBA{})
	out, err := Quantize(img, 8)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(out.Palette) > 8 {
		t.Fatalf("palette too large: %d", len(out.Palette))
	}
	_, _, _, a := out.At(3, 4).RGBA()
	if a != 0 {
		t.Fatalf("expected transparent pixel, alpha=%d", a)
	}
	_, _, _, a = out.At(5, 5).RGBA()
	if a == 0 {
		t.Fatal("opaque pixel became transparent")
	}
}

func TestQuantizeBitmapSource(t *testing.T) {
	b := gradient(t, 40, 40, Format24bppRGB)
	out, err := Quantize(b, 64)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if !out.Bounds().Eq(b.Bounds()) {
		t.Fatalf("bounds mismatch %v vs %v", out.Bounds(), b.Bounds())
	}
	if len(out.Palette) > 64 {
		t.Fatalf("palette too large: %d", len(out.Palette))
	}
}

func TestQuantizeRejectsBadInput(t *testing.T) {
	if _, err := Quantize(rainbow(2, 2), 1); !errors.Is(err, ErrInvalidColorCount) {
		t.Fatalf("expected ErrInvalidColorCount, got %v", err)
	}
	if _, err := Quantize(rainbow(2, 2), 257); !errors.Is(err, ErrInvalidColorCount) {
		t.Fatalf("expected ErrInvalidColorCount, got %v", err)
	}
	bad := &Bitmap{Pix: make([]byte, 4), Stride: 2, Rect: image.Rect(0, 0, 2, 2)}
	if _, err := Quantize(bad, 16); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWuQuantizerWithGIF(t *testing.T) {
	img := rainbow(64, 64)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256, Quantizer: WuQuantizer{MaxColors: 64}}); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	decoded, err := gif.Decode(&buf)
	if err != nil {
		t.Fatalf("gif.Decode: %v", err)
	}
	pal, ok := decoded.ColorModel().(color.Palette)
	if !ok {
		t.Fatalf("expected paletted output, got %T", decoded.ColorModel())
	}
	if len(pal) > 64 {
		t.Fatalf("palette has %d entries, limit 64", len(pal))
	}
}
