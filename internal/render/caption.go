package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultCaptionSize is the point size used when CaptionOptions.Size is unset.
const DefaultCaptionSize = 14

// CaptionOptions configures the text strip added below an image.
type CaptionOptions struct {
	Size       float64
	Padding    int
	Foreground color.Color
	Background color.Color
}

var (
	captionOnce  sync.Once
	captionFont  *opentype.Font
	captionErr   error
	captionFaces sync.Map // map[float64]font.Face
)

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultCaptionSize
	}
	captionOnce.Do(func() {
		captionFont, captionErr = opentype.Parse(goregular.TTF)
	})
	if captionErr != nil {
		return nil, fmt.Errorf("caption font: %w", captionErr)
	}
	key := math.Round(size*100) / 100
	if face, ok := captionFaces.Load(key); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(captionFont, &opentype.FaceOptions{Size: key, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	captionFaces.Store(key, face)
	return face, nil
}

// MeasureText returns the bounding box of text at size and the offset from
// the top to the baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return
}

// AddCaption returns a copy of img extended by a strip holding text. An empty
// text returns img converted to RGBA.
func AddCaption(img image.Image, text string, opts CaptionOptions) (*image.RGBA, error) {
	if text == "" {
		return toRGBA(img), nil
	}
	if opts.Padding <= 0 {
		opts.Padding = 6
	}
	if opts.Foreground == nil {
		opts.Foreground = color.Black
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	face, err := faceForSize(opts.Size)
	if err != nil {
		return nil, err
	}
	textW, textH, baseline, err := MeasureText(text, opts.Size)
	if err != nil {
		return nil, err
	}

	src := img.Bounds()
	width := max(src.Dx(), textW+2*opts.Padding)
	strip := textH + 2*opts.Padding
	out := image.NewRGBA(image.Rect(0, 0, width, src.Dy()+strip))
	draw.Draw(out, out.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, src.Dx(), src.Dy()), img, src.Min, draw.Src)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(opts.Foreground),
		Face: face,
		Dot:  fixed.P(opts.Padding, src.Dy()+opts.Padding+baseline),
	}
	d.DrawString(text)
	return out, nil
}
