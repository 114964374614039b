package gfx

import (
	"fmt"
	"image"
)

// Pixelate replaces each size×size cell of area with the mean of its pixels.
// Cells on the right and bottom edges are clipped to area. A size of one or
// less, or an empty area, leaves the bitmap unchanged.
func Pixelate(b *Bitmap, area image.Rectangle, size int) error {
	if !b.Format.Valid() {
		return fmt.Errorf("pixelate: %w: %v", ErrUnsupportedFormat, b.Format)
	}
	area = area.Intersect(b.Bounds())
	if size <= 1 || area.Empty() {
		return nil
	}
	bpp := b.Format.BytesPerPixel()
	var sums [4]int
	for cellY := area.Min.Y; cellY < area.Max.Y; cellY += size {
		for cellX := area.Min.X; cellX < area.Max.X; cellX += size {
			cell := image.Rect(cellX, cellY, cellX+size, cellY+size).Intersect(area)
			sums = [4]int{}
			for y := cell.Min.Y; y < cell.Max.Y; y++ {
				p := b.Pix[b.PixOffset(cell.Min.X, y):]
				for x := 0; x < cell.Dx(); x++ {
					for c := 0; c < bpp; c++ {
						sums[c] += int(p[x*bpp+c])
					}
				}
			}
			n := cell.Dx() * cell.Dy()
			var mean [4]byte
			for c := 0; c < bpp; c++ {
				mean[c] = uint8((sums[c] + n/2) / n)
			}
			for y := cell.Min.Y; y < cell.Max.Y; y++ {
				p := b.Pix[b.PixOffset(cell.Min.X, y):]
				for x := 0; x < cell.Dx(); x++ {
					copy(p[x*bpp:x*bpp+bpp], mean[:bpp])
				}
			}
		}
	}
	return nil
}
