package gfx

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Bitmap is a row addressable pixel buffer. The bounds always start at the
// origin. A Bitmap is owned by exactly one holder; Dispose releases the pixel
// memory and leaves an empty bitmap behind.
type Bitmap struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
	Format PixelFormat
}

var (
	_ image.Image = (*Bitmap)(nil)
	_ draw.Image  = (*Bitmap)(nil)
)

// NewBitmap allocates a zeroed bitmap. Formats without alpha are initialised
// opaque.
func NewBitmap(width, height int, format PixelFormat) (*Bitmap, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("new bitmap: %w: %v", ErrUnsupportedFormat, format)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("new bitmap %dx%d: %w", width, height, ErrInvalidSize)
	}
	stride := width * bpp
	if width != 0 && stride/width != bpp {
		return nil, fmt.Errorf("new bitmap %dx%d: %w", width, height, ErrInvalidSize)
	}
	size := stride * height
	if height != 0 && size/height != stride {
		return nil, fmt.Errorf("new bitmap %dx%d: %w", width, height, ErrInvalidSize)
	}
	b := &Bitmap{
		Pix:    make([]byte, size),
		Stride: stride,
		Rect:   image.Rect(0, 0, width, height),
		Format: format,
	}
	if format == Format32bppRGB {
		for i := 3; i < len(b.Pix); i += 4 {
			b.Pix[i] = 0xFF
		}
	}
	return b, nil
}

// FromImage copies img into a new bitmap of the requested format. The result
// is rebased to the origin.
func FromImage(img image.Image, format PixelFormat) (*Bitmap, error) {
	if img == nil {
		return nil, fmt.Errorf("from image: nil image")
	}
	if src, ok := img.(*Bitmap); ok {
		return src.Convert(format)
	}
	bounds := img.Bounds()
	b, err := NewBitmap(bounds.Dx(), bounds.Dy(), format)
	if err != nil {
		return nil, err
	}
	bpp := format.BytesPerPixel()
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < bounds.Dy(); y++ {
			in := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			out := b.Pix[y*b.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				b.putNRGBA(out[x*bpp:], color.NRGBA{in[x*4], in[x*4+1], in[x*4+2], in[x*4+3]})
			}
		}
	case *image.RGBA:
		for y := 0; y < bounds.Dy(); y++ {
			in := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			out := b.Pix[y*b.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				c := color.RGBA{in[x*4], in[x*4+1], in[x*4+2], in[x*4+3]}
				if c.A == 0xFF {
					b.putNRGBA(out[x*bpp:], color.NRGBA{c.R, c.G, c.B, 0xFF})
					continue
				}
				b.putNRGBA(out[x*bpp:], color.NRGBAModel.Convert(c).(color.NRGBA))
			}
		}
	default:
		for y := 0; y < bounds.Dy(); y++ {
			out := b.Pix[y*b.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
				b.putNRGBA(out[x*bpp:], c)
			}
		}
	}
	return b, nil
}

// Width returns the number of columns.
func (b *Bitmap) Width() int { return b.Rect.Dx() }

// Height returns the number of rows.
func (b *Bitmap) Height() int { return b.Rect.Dy() }

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle { return b.Rect }

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model { return color.NRGBAModel }

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color {
	return b.NRGBAAt(x, y)
}

// NRGBAAt returns the pixel at (x, y) or transparent black when outside the
// bounds.
func (b *Bitmap) NRGBAAt(x, y int) color.NRGBA {
	if !(image.Point{x, y}.In(b.Rect)) || b.Pix == nil {
		return color.NRGBA{}
	}
	return b.getNRGBA(b.Pix[b.PixOffset(x, y):])
}

// Set implements draw.Image.
func (b *Bitmap) Set(x, y int, c color.Color) {
	b.SetNRGBA(x, y, color.NRGBAModel.Convert(c).(color.NRGBA))
}

// SetNRGBA stores c at (x, y). Points outside the bounds are ignored.
func (b *Bitmap) SetNRGBA(x, y int, c color.NRGBA) {
	if !(image.Point{x, y}.In(b.Rect)) || b.Pix == nil {
		return
	}
	b.putNRGBA(b.Pix[b.PixOffset(x, y):], c)
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (b *Bitmap) PixOffset(x, y int) int {
	return (y-b.Rect.Min.Y)*b.Stride + (x-b.Rect.Min.X)*b.Format.BytesPerPixel()
}

// Row returns the visible bytes of row y, without stride padding. The slice
// aliases the bitmap.
func (b *Bitmap) Row(y int) []byte {
	start := y * b.Stride
	return b.Pix[start : start+b.Width()*b.Format.BytesPerPixel()]
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	out := &Bitmap{
		Pix:    make([]byte, len(b.Pix)),
		Stride: b.Stride,
		Rect:   b.Rect,
		Format: b.Format,
	}
	copy(out.Pix, b.Pix)
	return out
}

// Convert returns a copy of b in the requested format. Converting to the same
// format clones.
func (b *Bitmap) Convert(format PixelFormat) (*Bitmap, error) {
	if format == b.Format {
		return b.Clone(), nil
	}
	if !b.Format.Valid() {
		return nil, fmt.Errorf("convert from %v: %w", b.Format, ErrUnsupportedFormat)
	}
	out, err := NewBitmap(b.Width(), b.Height(), format)
	if err != nil {
		return nil, err
	}
	sbpp, dbpp := b.Format.BytesPerPixel(), format.BytesPerPixel()
	for y := 0; y < b.Height(); y++ {
		in, dst := b.Row(y), out.Row(y)
		for x := 0; x < b.Width(); x++ {
			out.putNRGBA(dst[x*dbpp:], b.getNRGBA(in[x*sbpp:]))
		}
	}
	return out, nil
}

// ToNRGBA copies the bitmap into a standard library image, which is what the
// encoders in image/png and friends understand best.
func (b *Bitmap) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(b.Rect)
	bpp := b.Format.BytesPerPixel()
	for y := 0; y < b.Height(); y++ {
		in := b.Row(y)
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Width(); x++ {
			c := b.getNRGBA(in[x*bpp:])
			dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = c.R, c.G, c.B, c.A
		}
	}
	return out
}

// Dispose releases the pixel memory. The bitmap reports empty bounds
// afterwards.
func (b *Bitmap) Dispose() {
	if b == nil {
		return
	}
	b.Pix = nil
	b.Stride = 0
	b.Rect = image.Rectangle{}
}

// Disposed reports whether Dispose has been called.
func (b *Bitmap) Disposed() bool {
	return b == nil || (b.Pix == nil && b.Rect.Empty())
}

func (b *Bitmap) getNRGBA(p []byte) color.NRGBA {
	switch b.Format {
	case Format24bppRGB, Format32bppRGB:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xFF}
	case Format32bppARGB:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
	}
	return color.NRGBA{}
}

func (b *Bitmap) putNRGBA(p []byte, c color.NRGBA) {
	switch b.Format {
	case Format24bppRGB:
		p[0], p[1], p[2] = c.B, c.G, c.R
	case Format32bppRGB:
		p[0], p[1], p[2], p[3] = c.B, c.G, c.R, 0xFF
	case Format32bppARGB:
		p[0], p[1], p[2], p[3] = c.B, c.G, c.R, c.A
	}
}
