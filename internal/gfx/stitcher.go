package gfx

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNoBitmaps is returned by Result when nothing was added.
	ErrNoBitmaps = errors.New("stitch: at least one bitmap is required")
	// ErrEmptyResult is returned by Result when every source rectangle was
	// trimmed away.
	ErrEmptyResult = errors.New("stitch: result has no rows")
	// ErrWidthMismatch is returned by Add for a bitmap whose width differs
	// from the first one.
	ErrWidthMismatch = errors.New("stitch: bitmap width differs from the first bitmap")
)

// Option configures a Stitcher.
type Option func(*Stitcher)

// WithRemoveHeader toggles stripping of the shared header rows.
func WithRemoveHeader(v bool) Option { return func(s *Stitcher) { s.removeHeader = v } }

// WithRemoveFooter is accepted for configuration compatibility. Footer
// detection is not implemented; the flag is stored and otherwise ignored.
func WithRemoveFooter(v bool) Option { return func(s *Stitcher) { s.removeFooter = v } }

// WithRemoveEnd toggles trimming of repeated rows at the end of the last image.
func WithRemoveEnd(v bool) Option { return func(s *Stitcher) { s.removeEnd = v } }

// WithLogger sets the logger used for debug output. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option { return func(s *Stitcher) { s.log = l } }

// Stitcher combines a sequence of vertically scrolled captures into a single
// tall bitmap. It owns every bitmap passed to Add; Close releases them all.
// A Stitcher is not safe for concurrent use.
type Stitcher struct {
	removeHeader bool
	removeFooter bool
	removeEnd    bool
	log          *slog.Logger

	infos  []*StitchInfo
	format PixelFormat
	width  int
}

// NewStitcher returns a Stitcher with every removal step enabled.
func NewStitcher(opts ...Option) *Stitcher {
	s := &Stitcher{
		removeHeader: true,
		removeFooter: true,
		removeEnd:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// RemoveHeader reports whether header stripping is enabled.
func (s *Stitcher) RemoveHeader() bool { return s.removeHeader }

// RemoveFooter reports the reserved footer flag.
func (s *Stitcher) RemoveFooter() bool { return s.removeFooter }

// RemoveEnd reports whether trailing line trimming is enabled.
func (s *Stitcher) RemoveEnd() bool { return s.removeEnd }

// Len returns the number of bitmaps added so far.
func (s *Stitcher) Len() int { return len(s.infos) }

// Infos returns the stitch sequence in capture order. The entries stay owned
// by the Stitcher.
func (s *Stitcher) Infos() []*StitchInfo {
	out := make([]*StitchInfo, len(s.infos))
	copy(out, s.infos)
	return out
}

// Add appends b to the sequence and takes ownership of it. The first bitmap
// fixes the width and pixel format of the result; later bitmaps must have
// the same width and are converted to that format when needed. On error the
// caller keeps ownership of b.
func (s *Stitcher) Add(b *Bitmap) error {
	if b == nil || b.Disposed() {
		return fmt.Errorf("stitch add: bitmap is nil or disposed")
	}
	if !b.Format.Valid() {
		return fmt.Errorf("stitch add: %w: %v", ErrUnsupportedFormat, b.Format)
	}
	if len(s.infos) == 0 {
		s.format = b.Format
		s.width = b.Width()
		s.infos = append(s.infos, NewStitchInfo(b))
		s.log.Debug("stitch: first bitmap", "width", s.width, "height", b.Height(), "format", s.format)
		return nil
	}
	if b.Width() != s.width {
		return fmt.Errorf("stitch add #%d: width %d, want %d: %w", len(s.infos), b.Width(), s.width, ErrWidthMismatch)
	}
	if b.Format != s.format {
		converted, err := b.Convert(s.format)
		if err != nil {
			return fmt.Errorf("stitch add #%d: %w", len(s.infos), err)
		}
		b.Dispose()
		b = converted
	}
	info := NewStitchInfo(b)
	if s.removeHeader {
		info.ScanForHeader(s.infos[0])
	}
	info.FindTargetLocation(s.infos[len(s.infos)-1])
	s.infos = append(s.infos, info)
	s.log.Debug("stitch: added bitmap",
		"index", len(s.infos)-1,
		"source_top", info.sourceRect.Min.Y,
		"source_height", info.sourceRect.Dy(),
	)
	return nil
}

// Result trims the last image when configured to and draws every source
// rectangle below the previous one. The returned bitmap belongs to the
// caller; the Stitcher keeps its inputs until Close.
func (s *Stitcher) Result() (*Bitmap, error) {
	if len(s.infos) == 0 {
		return nil, ErrNoBitmaps
	}
	if s.removeEnd {
		s.infos[len(s.infos)-1].RemoveTrailingLines()
	}
	if s.removeFooter {
		s.log.Debug("stitch: footer removal requested, nothing to do")
	}
	height := 0
	for _, info := range s.infos {
		height += info.sourceRect.Dy()
	}
	if height == 0 {
		return nil, ErrEmptyResult
	}
	out, err := NewBitmap(s.width, height, s.format)
	if err != nil {
		return nil, fmt.Errorf("stitch result: %w", err)
	}
	y := 0
	for _, info := range s.infos {
		info.DrawTo(out, y)
		y += info.sourceRect.Dy()
	}
	s.log.Debug("stitch: result", "images", len(s.infos), "width", s.width, "height", height)
	return out, nil
}

// Close disposes every bitmap held by the Stitcher and empties the sequence.
func (s *Stitcher) Close() error {
	for _, info := range s.infos {
		info.Dispose()
	}
	s.infos = nil
	return nil
}
