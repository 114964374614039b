package imageio

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Scale resizes img by factor with Catmull-Rom resampling. Factors <= 0 or
// equal to 1 return img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))
	return ScaleTo(img, w, h)
}

// ScaleTo resizes img to exactly w by h pixels.
func ScaleTo(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
