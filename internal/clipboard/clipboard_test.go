package clipboard

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/example/scrollshot/internal/gfx"
)

func TestEncodePNGFromBitmap(t *testing.T) {
	b, err := gfx.NewBitmap(3, 2, gfx.Format24bppRGB)
	if err != nil {
		t.Fatalf("NewBitmap: %v", err)
	}
	b.SetNRGBA(2, 1, color.NRGBA{R: 40, G: 50, B: 60, A: 255})
	data, err := encodePNG(b)
	if err != nil {
		t.Fatalf("encodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if !img.Bounds().Eq(image.Rect(0, 0, 3, 2)) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := color.NRGBAModel.Convert(img.At(2, 1)).(color.NRGBA); got != (color.NRGBA{R: 40, G: 50, B: 60, A: 255}) {
		t.Fatalf("unexpected pixel %+v", got)
	}
}
