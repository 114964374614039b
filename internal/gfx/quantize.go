package gfx

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ErrInvalidColorCount is returned for palette sizes outside [2, 256].
var ErrInvalidColorCount = errors.New("quantize: color count must be between 2 and 256")

// Xiaolin Wu's color quantizer ("Efficient Statistical Computations for
// Optimal Color Quantization", Graphics Gems II, 1991). Colors are binned
// into a 33³ histogram of 5 bit channels (index 0 is the zero border used by
// the cumulative moments), then the box with the largest variance is split
// along the axis that maximises the between-box variance until the palette
// is full or no box can be split further.
const (
	wuSide  = 33
	wuPlane = wuSide * wuSide
	wuCells = wuSide * wuPlane
)

const (
	wuBlue = iota
	wuGreen
	wuRed
)

type wuBox struct {
	r0, r1, g0, g1, b0, b1 int
	vol                    int
}

type wuHistogram struct {
	wt, mr, mg, mb [wuCells]int64
	m2             [wuCells]float64
}

func wuIndex(r, g, b int) int {
	return r*wuPlane + g*wuSide + b
}

func wuCell(c color.NRGBA) int {
	return wuIndex(int(c.R>>3)+1, int(c.G>>3)+1, int(c.B>>3)+1)
}

func (h *wuHistogram) add(c color.NRGBA) {
	i := wuCell(c)
	r, g, b := int64(c.R), int64(c.G), int64(c.B)
	h.wt[i]++
	h.mr[i] += r
	h.mg[i] += g
	h.mb[i] += b
	h.m2[i] += float64(r*r + g*g + b*b)
}

// moments turns the per-cell counts into cumulative moments so the sums over
// any box can be read off with eight lookups.
func (h *wuHistogram) moments() {
	for r := 1; r < wuSide; r++ {
		var area, areaR, areaG, areaB [wuSide]int64
		var area2 [wuSide]float64
		for g := 1; g < wuSide; g++ {
			var line, lineR, lineG, lineB int64
			var line2 float64
			for b := 1; b < wuSide; b++ {
				i := wuIndex(r, g, b)
				line += h.wt[i]
				lineR += h.mr[i]
				lineG += h.mg[i]
				lineB += h.mb[i]
				line2 += h.m2[i]

				area[b] += line
				areaR[b] += lineR
				areaG[b] += lineG
				areaB[b] += lineB
				area2[b] += line2

				j := i - wuPlane
				h.wt[i] = h.wt[j] + area[b]
				h.mr[i] = h.mr[j] + areaR[b]
				h.mg[i] = h.mg[j] + areaG[b]
				h.mb[i] = h.mb[j] + areaB[b]
				h.m2[i] = h.m2[j] + area2[b]
			}
		}
	}
}

func wuVolume(c *wuBox, m *[wuCells]int64) int64 {
	return m[wuIndex(c.r1, c.g1, c.b1)] -
		m[wuIndex(c.r1, c.g1, c.b0)] -
		m[wuIndex(c.r1, c.g0, c.b1)] +
		m[wuIndex(c.r1, c.g0, c.b0)] -
		m[wuIndex(c.r0, c.g1, c.b1)] +
		m[wuIndex(c.r0, c.g1, c.b0)] +
		m[wuIndex(c.r0, c.g0, c.b1)] -
		m[wuIndex(c.r0, c.g0, c.b0)]
}

func wuVolumeF(c *wuBox, m *[wuCells]float64) float64 {
	return m[wuIndex(c.r1, c.g1, c.b1)] -
		m[wuIndex(c.r1, c.g1, c.b0)] -
		m[wuIndex(c.r1, c.g0, c.b1)] +
		m[wuIndex(c.r1, c.g0, c.b0)] -
		m[wuIndex(c.r0, c.g1, c.b1)] +
		m[wuIndex(c.r0, c.g1, c.b0)] +
		m[wuIndex(c.r0, c.g0, c.b1)] -
		m[wuIndex(c.r0, c.g0, c.b0)]
}

// wuBottom is the part of the volume that does not depend on the cut
// position along dir.
func wuBottom(c *wuBox, dir int, m *[wuCells]int64) int64 {
	switch dir {
	case wuRed:
		return -m[wuIndex(c.r0, c.g1, c.b1)] +
			m[wuIndex(c.r0, c.g1, c.b0)] +
			m[wuIndex(c.r0, c.g0, c.b1)] -
			m[wuIndex(c.r0, c.g0, c.b0)]
	case wuGreen:
		return -m[wuIndex(c.r1, c.g0, c.b1)] +
			m[wuIndex(c.r1, c.g0, c.b0)] +
			m[wuIndex(c.r0, c.g0, c.b1)] -
			m[wuIndex(c.r0, c.g0, c.b0)]
	default:
		return -m[wuIndex(c.r1, c.g1, c.b0)] +
			m[wuIndex(c.r1, c.g0, c.b0)] +
			m[wuIndex(c.r0, c.g1, c.b0)] -
			m[wuIndex(c.r0, c.g0, c.b0)]
	}
}

// wuTop is the remainder of the volume with the cut at pos.
func wuTop(c *wuBox, dir, pos int, m *[wuCells]int64) int64 {
	switch dir {
	case wuRed:
		return m[wuIndex(pos, c.g1, c.b1)] -
			m[wuIndex(pos, c.g1, c.b0)] -
			m[wuIndex(pos, c.g0, c.b1)] +
			m[wuIndex(pos, c.g0, c.b0)]
	case wuGreen:
		return m[wuIndex(c.r1, pos, c.b1)] -
			m[wuIndex(c.r1, pos, c.b0)] -
			m[wuIndex(c.r0, pos, c.b1)] +
			m[wuIndex(c.r0, pos, c.b0)]
	default:
		return m[wuIndex(c.r1, c.g1, pos)] -
			m[wuIndex(c.r1, c.g0, pos)] -
			m[wuIndex(c.r0, c.g1, pos)] +
			m[wuIndex(c.r0, c.g0, pos)]
	}
}

func (h *wuHistogram) variance(c *wuBox) float64 {
	dr := float64(wuVolume(c, &h.mr))
	dg := float64(wuVolume(c, &h.mg))
	db := float64(wuVolume(c, &h.mb))
	xx := wuVolumeF(c, &h.m2)
	return xx - (dr*dr+dg*dg+db*db)/float64(wuVolume(c, &h.wt))
}

func (h *wuHistogram) maximize(c *wuBox, dir, first, last int, wholeR, wholeG, wholeB, wholeW int64) (float64, int) {
	baseR := wuBottom(c, dir, &h.mr)
	baseG := wuBottom(c, dir, &h.mg)
	baseB := wuBottom(c, dir, &h.mb)
	baseW := wuBottom(c, dir, &h.wt)
	best, cut := 0.0, -1
	for i := first; i < last; i++ {
		halfR := baseR + wuTop(c, dir, i, &h.mr)
		halfG := baseG + wuTop(c, dir, i, &h.mg)
		halfB := baseB + wuTop(c, dir, i, &h.mb)
		halfW := baseW + wuTop(c, dir, i, &h.wt)
		if halfW == 0 {
			continue
		}
		temp := (float64(halfR)*float64(halfR) + float64(halfG)*float64(halfG) + float64(halfB)*float64(halfB)) / float64(halfW)
		halfR, halfG, halfB, halfW = wholeR-halfR, wholeG-halfG, wholeB-halfB, wholeW-halfW
		if halfW == 0 {
			continue
		}
		temp += (float64(halfR)*float64(halfR) + float64(halfG)*float64(halfG) + float64(halfB)*float64(halfB)) / float64(halfW)
		if temp > best {
			best, cut = temp, i
		}
	}
	return best, cut
}

// cut splits a into a and b. It reports false when a cannot be split.
func (h *wuHistogram) cut(a, b *wuBox) bool {
	wholeR := wuVolume(a, &h.mr)
	wholeG := wuVolume(a, &h.mg)
	wholeB := wuVolume(a, &h.mb)
	wholeW := wuVolume(a, &h.wt)

	maxR, cutR := h.maximize(a, wuRed, a.r0+1, a.r1, wholeR, wholeG, wholeB, wholeW)
	maxG, cutG := h.maximize(a, wuGreen, a.g0+1, a.g1, wholeR, wholeG, wholeB, wholeW)
	maxB, cutB := h.maximize(a, wuBlue, a.b0+1, a.b1, wholeR, wholeG, wholeB, wholeW)

	b.r1, b.g1, b.b1 = a.r1, a.g1, a.b1
	switch {
	case maxR >= maxG && maxR >= maxB:
		if cutR < 0 {
			return false
		}
		a.r1 = cutR
		b.r0, b.g0, b.b0 = cutR, a.g0, a.b0
	case maxG >= maxR && maxG >= maxB:
		a.g1 = cutG
		b.r0, b.g0, b.b0 = a.r0, cutG, a.b0
	default:
		a.b1 = cutB
		b.r0, b.g0, b.b0 = a.r0, a.g0, cutB
	}
	a.vol = (a.r1 - a.r0) * (a.g1 - a.g0) * (a.b1 - a.b0)
	b.vol = (b.r1 - b.r0) * (b.g1 - b.g0) * (b.b1 - b.b0)
	return true
}

// wuPalette is the outcome of one quantization: the palette and the lookup
// from histogram cell to palette index.
type wuPalette struct {
	colors      []color.NRGBA
	lookup      []uint8
	transparent int
}

func (p *wuPalette) index(c color.NRGBA) uint8 {
	if c.A == 0 && p.transparent >= 0 {
		return uint8(p.transparent)
	}
	return p.lookup[wuCell(c)]
}

func buildWuPalette(img image.Image, maxColors int) (*wuPalette, error) {
	if maxColors < 2 || maxColors > 256 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColorCount, maxColors)
	}
	h := new(wuHistogram)
	transparent := false
	err := eachPixel(img, func(_, _ int, c color.NRGBA) {
		if c.A == 0 {
			transparent = true
			return
		}
		h.add(c)
	})
	if err != nil {
		return nil, err
	}
	k := maxColors
	if transparent {
		k--
	}
	h.moments()

	boxes := make([]wuBox, k)
	vv := make([]float64, k)
	boxes[0] = wuBox{r1: wuSide - 1, g1: wuSide - 1, b1: wuSide - 1}
	n := k
	next := 0
	for i := 1; i < k; i++ {
		if h.cut(&boxes[next], &boxes[i]) {
			vv[next] = 0
			if boxes[next].vol > 1 {
				vv[next] = h.variance(&boxes[next])
			}
			vv[i] = 0
			if boxes[i].vol > 1 {
				vv[i] = h.variance(&boxes[i])
			}
		} else {
			vv[next] = 0
			i--
		}
		next = 0
		best := vv[0]
		for j := 1; j <= i; j++ {
			if vv[j] > best {
				best, next = vv[j], j
			}
		}
		if best <= 0 {
			n = i + 1
			break
		}
	}

	p := &wuPalette{lookup: make([]uint8, wuCells), transparent: -1}
	for i := 0; i < n; i++ {
		box := &boxes[i]
		weight := wuVolume(box, &h.wt)
		if weight == 0 {
			continue
		}
		label := uint8(len(p.colors))
		for r := box.r0 + 1; r <= box.r1; r++ {
			for g := box.g0 + 1; g <= box.g1; g++ {
				for b := box.b0 + 1; b <= box.b1; b++ {
					p.lookup[wuIndex(r, g, b)] = label
				}
			}
		}
		p.colors = append(p.colors, color.NRGBA{
			R: uint8(wuVolume(box, &h.mr) / weight),
			G: uint8(wuVolume(box, &h.mg) / weight),
			B: uint8(wuVolume(box, &h.mb) / weight),
			A: 0xFF,
		})
	}
	if transparent {
		p.transparent = len(p.colors)
		p.colors = append(p.colors, color.NRGBA{})
	}
	return p, nil
}

// Quantize reduces img to at most maxColors colors with Wu's algorithm and
// returns the paletted result. Fully transparent pixels share one reserved
// transparent palette entry. The result is deterministic for a given input.
func Quantize(img image.Image, maxColors int) (*image.Paletted, error) {
	p, err := buildWuPalette(img, maxColors)
	if err != nil {
		return nil, err
	}
	pal := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		pal[i] = c
	}
	bounds := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, bounds.Dx(), bounds.Dy()), pal)
	err = eachPixel(img, func(x, y int, c color.NRGBA) {
		out.Pix[y*out.Stride+x] = p.index(c)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WuQuantizer plugs Wu's algorithm into image/draw, e.g. as gif.Options
// Quantizer. MaxColors of zero means as many as the destination palette
// has room for.
type WuQuantizer struct {
	MaxColors int
}

var _ draw.Quantizer = WuQuantizer{}

// Quantize implements draw.Quantizer. It appends to p and never exceeds
// cap(p). Images the quantizer cannot read leave p unchanged.
func (q WuQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	room := cap(p) - len(p)
	if q.MaxColors > 0 && q.MaxColors < room {
		room = q.MaxColors
	}
	if room > 256 {
		room = 256
	}
	if room < 2 {
		return p
	}
	wp, err := buildWuPalette(m, room)
	if err != nil {
		return p
	}
	for _, c := range wp.colors {
		p = append(p, c)
	}
	return p
}

func eachPixel(img image.Image, fn func(x, y int, c color.NRGBA)) error {
	bounds := img.Bounds()
	switch src := img.(type) {
	case *Bitmap:
		if !src.Format.Valid() {
			return fmt.Errorf("quantize: %w: %v", ErrUnsupportedFormat, src.Format)
		}
		bpp := src.Format.BytesPerPixel()
		for y := 0; y < src.Height(); y++ {
			row := src.Row(y)
			for x := 0; x < src.Width(); x++ {
				fn(x, y, src.getNRGBA(row[x*bpp:]))
			}
		}
	case *image.NRGBA:
		for y := 0; y < bounds.Dy(); y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < bounds.Dx(); x++ {
				fn(x, y, color.NRGBA{row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]})
			}
		}
	default:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				fn(x, y, color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA))
			}
		}
	}
	return nil
}
