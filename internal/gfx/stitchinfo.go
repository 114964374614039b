package gfx

import (
	"image"
	"image/draw"
)

// StitchInfo owns one captured bitmap and the rectangle of it that still
// belongs in the stitched result. The rectangle only ever shrinks vertically.
type StitchInfo struct {
	bitmap     *Bitmap
	hashes     []uint32
	sourceRect image.Rectangle
	// contentTop is the first row below the stripped header.
	contentTop int
}

// NewStitchInfo takes ownership of b and hashes all of its rows.
func NewStitchInfo(b *Bitmap) *StitchInfo {
	return &StitchInfo{
		bitmap:     b,
		hashes:     RowHashes(b),
		sourceRect: b.Bounds(),
	}
}

// SourceRect is the part of the bitmap that will be drawn.
func (s *StitchInfo) SourceRect() image.Rectangle { return s.sourceRect }

// Bitmap returns the owned bitmap. It stays owned by s.
func (s *StitchInfo) Bitmap() *Bitmap { return s.bitmap }

// Hashes returns a copy of the row hashes.
func (s *StitchInfo) Hashes() []uint32 {
	out := make([]uint32, len(s.hashes))
	copy(out, s.hashes)
	return out
}

// ScanForHeader strips the rows this image shares, from the very top, with
// primary. Toolbars and other fixed chrome repeat in every scrolled capture
// and only the first copy is kept.
func (s *StitchInfo) ScanForHeader(primary *StitchInfo) {
	limit := min(len(s.hashes), len(primary.hashes), s.sourceRect.Max.Y)
	cursor := 0
	for cursor < limit && s.hashes[cursor] == primary.hashes[cursor] {
		cursor++
	}
	if cursor > s.sourceRect.Min.Y {
		s.sourceRect.Min.Y = cursor
	}
	s.contentTop = s.sourceRect.Min.Y
}

// FindTargetLocation looks for the first offset below previous' header from
// which previous' rows continue into the top of this image. The search covers
// rows previous already gave up to its own predecessor, so small scroll
// steps still line up. The matched run is removed from the top of this
// image. Only vertical translation is considered and the first complete
// match wins.
func (s *StitchInfo) FindTargetLocation(previous *StitchInfo) {
	top := s.sourceRect.Min.Y
	height := s.sourceRect.Dy()
	if height <= 0 {
		return
	}
	prevBottom := previous.sourceRect.Max.Y
	start := previous.contentTop
	if start >= prevBottom {
		// previous repeated its predecessor entirely and was swallowed as
		// header; its rows are still valid overlap candidates.
		start = 0
	}
	for offset := start; offset < prevBottom; offset++ {
		run := min(prevBottom-offset, height)
		if matchRows(previous.hashes[offset:offset+run], s.hashes[top:top+run]) {
			s.sourceRect.Min.Y += run
			return
		}
	}
}

func matchRows(a, b []uint32) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return len(a) > 0
}

// RemoveTrailingLines drops rows at the bottom that repeat the last row,
// keeping one of them. Capturing past the end of a document repeats its last
// visible line.
func (s *StitchInfo) RemoveTrailingLines() {
	if s.sourceRect.Dy() <= 0 {
		return
	}
	last := s.sourceRect.Max.Y - 1
	y := last
	for y > s.sourceRect.Min.Y && s.hashes[y-1] == s.hashes[last] {
		y--
	}
	s.sourceRect.Max.Y = y + 1
}

// DrawTo copies the source rectangle into dst with its top-left corner at
// (0, y).
func (s *StitchInfo) DrawTo(dst draw.Image, y int) {
	src := s.sourceRect
	if src.Empty() {
		return
	}
	target := image.Rect(0, y, src.Dx(), y+src.Dy())
	if out, ok := dst.(*Bitmap); ok && out.Format == s.bitmap.Format && target.In(out.Bounds()) {
		n := target.Dx() * out.Format.BytesPerPixel()
		for row := 0; row < target.Dy(); row++ {
			from := s.bitmap.PixOffset(src.Min.X, src.Min.Y+row)
			to := out.PixOffset(target.Min.X, target.Min.Y+row)
			copy(out.Pix[to:to+n], s.bitmap.Pix[from:from+n])
		}
		return
	}
	draw.Draw(dst, target, s.bitmap, src.Min, draw.Src)
}

// Dispose releases the owned bitmap.
func (s *StitchInfo) Dispose() {
	if s.bitmap != nil {
		s.bitmap.Dispose()
		s.bitmap = nil
	}
}
